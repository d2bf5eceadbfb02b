package ingest

import (
	"io/fs"
	"kadmeia/internal/domain/content"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type SourceFile struct {
	Path string
	Kind content.Kind
}

// kindFolders lists the folders under the content root holding each kind.
// Cases accept the English folder name as well.
var kindFolders = map[content.Kind][]string{
	content.KindPost: {"blog"},
	content.KindCase: {"casos", "cases"},
}

var sourceExts = []string{".md", ".mdx", ".markdown"}

// DiscoverSource finds every content file under root, grouped by kind and
// sorted by path so that later stages see a stable order.
func DiscoverSource(root string) ([]SourceFile, error) {
	var out []SourceFile

	for _, kind := range content.Kinds {
		for _, folder := range kindFolders[kind] {
			dir := filepath.Join(root, folder)
			if st, err := os.Stat(dir); err != nil || !st.IsDir() {
				continue
			}
			err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if isSourceFile(d.Name()) {
					out = append(out, SourceFile{Path: path, Kind: kind})
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := kindRank(out[i].Kind), kindRank(out[j].Kind); ri != rj {
			return ri < rj
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func kindRank(k content.Kind) int {
	for i, kk := range content.Kinds {
		if kk == k {
			return i
		}
	}
	return len(content.Kinds)
}

func isSourceFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") || strings.HasPrefix(lower, "_") {
		return false
	}
	for _, ext := range sourceExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isKindFolder(seg string) bool {
	for _, folders := range kindFolders {
		for _, f := range folders {
			if f == seg {
				return true
			}
		}
	}
	return false
}
