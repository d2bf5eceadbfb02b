package build

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Fingerprint identifies the inputs of one static build. Two builds with
// the same RenderHash produce the same public tree.
type Fingerprint struct {
	ContentHash string
	ThemeHash   string
	ConfigHash  string
	RenderHash  string
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte(f.ThemeHash))
	h.Write([]byte(f.ConfigHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

// HashSet folds a set of per-file hashes into one, independent of order.
func HashSet(hashes []string) string {
	sorted := append([]string(nil), hashes...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, s := range sorted {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
