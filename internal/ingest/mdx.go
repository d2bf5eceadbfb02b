package ingest

import (
	"bufio"
	"bytes"
	"strings"
)

// StripMDX drops top-level ESM lines (import/export) from an MDX body so
// the rest can be treated as Markdown. JSX elements are left in place and
// pass through as raw HTML.
func StripMDX(body []byte) []byte {
	if !bytes.Contains(body, []byte("import ")) && !bytes.Contains(body, []byte("export ")) {
		return body
	}
	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	inFence := false
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence && (strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ")) {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes()
}
