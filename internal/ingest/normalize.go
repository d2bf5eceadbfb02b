package ingest

import (
	"fmt"
	"github.com/araddon/dateparse"
	"github.com/karlseguin/typed"
	stripmd "github.com/writeas/go-strip-markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"kadmeia/internal/domain/content"
	pathpkg "path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	titleKeys   = []string{"title", "Title", "titulo", "name"}
	excerptKeys = []string{"excerpt", "summary", "resumen"}
)

const wordsPerMinute = 200

// Report names the fields of one entry that fell back to a default.
type Report struct {
	Path      string
	Defaulted []string
}

func (r Report) Has(field string) bool {
	for _, f := range r.Defaulted {
		if f == field {
			return true
		}
	}
	return false
}

// Normalize turns a raw frontmatter map into an entry. It never fails:
// every missing or malformed field degrades to its default and is named
// in the report.
func Normalize(kind content.Kind, path string, raw map[string]any, body []byte) (content.Entry, Report) {
	if raw == nil {
		raw = map[string]any{}
	}
	rep := Report{Path: path}
	fm := typed.New(raw)

	slug := ResolveSlug(raw, path)
	if strings.TrimSpace(scalarString(raw["slug"])) == "" {
		rep.Defaulted = append(rep.Defaulted, "slug")
	}

	title := DeriveTitle(raw, slug)
	if firstString(raw, titleKeys) == "" {
		rep.Defaulted = append(rep.Defaulted, "title")
	}

	date := ParseTime(raw["date"])
	if date.IsZero() {
		rep.Defaulted = append(rep.Defaulted, "date")
	}

	excerpt := DeriveExcerpt(raw)
	if excerpt == "" {
		rep.Defaulted = append(rep.Defaulted, "excerpt")
	}

	if scalarString(raw["cover"]) == "" {
		rep.Defaulted = append(rep.Defaulted, "cover")
	}
	cover := NormalizeCover(raw["cover"], kind, slug)

	var lang content.Lang
	if l, ok := fm.StringIf("lang"); ok && strings.TrimSpace(l) != "" {
		lang = content.ParseLang(l)
	} else {
		lang = DeriveLocale(path)
		rep.Defaulted = append(rep.Defaulted, "lang")
	}

	if _, ok := raw["tags"]; !ok || hasNilTag(raw["tags"]) {
		rep.Defaulted = append(rep.Defaulted, "tags")
	}

	words := countWords(body)
	e := content.Entry{
		Kind:      kind,
		Slug:      slug,
		Title:     title,
		Date:      date,
		Excerpt:   excerpt,
		Cover:     cover,
		Lang:      lang,
		Tags:      NormalizeTags(raw["tags"]),
		Draft:     parseDraft(fm),
		WordCount: words,
		ReadMin:   readMinutes(words),
	}
	return e, rep
}

// ResolveSlug prefers an explicit frontmatter slug over the file name.
// An explicit slug that would not survive as a path segment is slugified;
// dot-only slugs such as ".." slugify to "" and the entry is skipped.
func ResolveSlug(raw map[string]any, path string) string {
	if s := strings.TrimSpace(scalarString(raw["slug"])); s != "" {
		if strings.ContainsAny(s, "/\\ \t") || strings.Trim(s, ".") == "" || pathpkg.Clean(s) != s {
			return slugify(s)
		}
		return s
	}
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func DeriveTitle(raw map[string]any, slug string) string {
	if t := firstString(raw, titleKeys); t != "" {
		return t
	}
	return humanize(slug)
}

func DeriveExcerpt(raw map[string]any) string {
	return firstString(raw, excerptKeys)
}

// NormalizeTags accepts a list or a comma separated string. Anything else
// counts as absent. Duplicates are kept; null list items are dropped and
// Normalize reports the tags as defaulted.
func NormalizeTags(raw any) []string {
	out := []string{}
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
	case []string:
		out = append(out, v...)
	case string:
		for _, piece := range strings.Split(v, ",") {
			if piece = strings.TrimSpace(piece); piece != "" {
				out = append(out, piece)
			}
		}
	}
	return out
}

func hasNilTag(raw any) bool {
	list, ok := raw.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if item == nil {
			return true
		}
	}
	return false
}

// NormalizeCover resolves the cover image path. Without one the
// conventional /images/<kind>/<slug>.webp is used.
func NormalizeCover(raw any, kind content.Kind, slug string) string {
	s := strings.TrimSpace(scalarString(raw))
	switch {
	case s == "":
		return "/images/" + kind.ImageDir() + "/" + slug + ".webp"
	case strings.HasPrefix(s, "http"), strings.HasPrefix(s, "/"):
		return s
	default:
		return "/images/" + s
	}
}

// DeriveLocale reads the locale from the folder after the kind folder,
// e.g. content/blog/en/x.mdx. Anything but "en" is Spanish.
func DeriveLocale(path string) content.Lang {
	segs := strings.Split(filepath.ToSlash(path), "/")
	for i := len(segs) - 2; i >= 0; i-- {
		if isKindFolder(segs[i]) {
			return content.ParseLang(segs[i+1])
		}
	}
	return content.DefaultLang
}

// ParseTime accepts a decoded YAML value. Unparseable input gives the
// zero time.
func ParseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}
		}
		if d, err := dateparse.ParseIn(s, time.UTC); err == nil {
			return d
		}
	}
	return time.Time{}
}

func parseDraft(fm typed.Typed) bool {
	if b, ok := fm.BoolIf("draft"); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(scalarString(fm["draft"]))) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(scalarString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

// scalarString renders YAML scalars as text; collections yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return ""
}

func humanize(slug string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Spanish, cases.NoLower).String(s)
}

func countWords(body []byte) int {
	if len(body) == 0 {
		return 0
	}
	return len(strings.Fields(stripmd.Strip(string(StripMDX(body)))))
}

func readMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
