package ingest

import (
	"bytes"
	"errors"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errNoFrontMatter = errors.New("no front matter found")

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseFrontMatter splits raw into its YAML header and body. The header is
// decoded untyped; a file without one yields an empty map and
// errNoFrontMatter. On a malformed header the whole input is returned as
// the body together with the decode error.
func ParseFrontMatter(raw []byte) (map[string]any, []byte, error) {
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))
	norm = bytes.TrimLeft(norm, "\uFEFF \t\n")

	fm := map[string]any{}
	if !bytes.HasPrefix(norm, []byte("---")) {
		return fm, bytes.TrimSpace(norm), errNoFrontMatter
	}

	body, err := frontmatter.Parse(bytes.NewReader(norm), &fm, yamlFormat)
	if err != nil {
		return map[string]any{}, bytes.TrimSpace(norm), err
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, bytes.TrimSpace(body), nil
}

// slugify lowercases ASCII letters and collapses every run of separators
// or punctuation into one dash.
func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var out []rune
	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if 'A' <= r && r <= 'Z' {
				r = r + ('a' - 'A')
			}
			out = append(out, r)
			lastDash = false
		case r == '_' && !lastDash:
			out = append(out, r)
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
