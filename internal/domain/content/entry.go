package content

import (
	"strings"
	"time"
)

// Kind is the content family an entry belongs to.
type Kind string

const (
	KindPost Kind = "post"
	KindCase Kind = "case"
)

// Kinds lists every content family in catalog order.
var Kinds = []Kind{KindPost, KindCase}

// Dir is the plural route segment and content folder of the kind.
func (k Kind) Dir() string {
	if k == KindCase {
		return "casos"
	}
	return "blog"
}

// ImageDir is the folder under /images/ holding conventional covers.
func (k Kind) ImageDir() string {
	if k == KindCase {
		return "cases"
	}
	return "blog"
}

func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "post", "posts", "blog":
		return KindPost, true
	case "case", "cases", "casos":
		return KindCase, true
	}
	return "", false
}

type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
)

// DefaultLang is the locale served without a path prefix.
const DefaultLang = LangES

var Langs = []Lang{LangES, LangEN}

// ParseLang maps anything that is not "en" to the default locale. The
// comparison is case sensitive.
func ParseLang(s string) Lang {
	if strings.TrimSpace(s) == string(LangEN) {
		return LangEN
	}
	return LangES
}

type Entry struct {
	Kind    Kind
	Slug    string
	Title   string
	Date    time.Time
	Excerpt string
	Cover   string
	Lang    Lang
	Tags    []string
	Draft   bool

	// filled by ingest
	WordCount   int
	ReadMin     int
	SourcePath  string
	ContentHash string
}

// Post and CaseStudy are the two entry families; they share one shape.
type (
	Post      = Entry
	CaseStudy = Entry
)

// HasDate reports whether the entry carried a usable date. Undated
// entries sort after every dated one.
func (e *Entry) HasDate() bool {
	return !e.Date.IsZero()
}

// Key is the locale-qualified catalog key, e.g. /en/blog/my-post.
func (e *Entry) Key() string {
	return QualifiedKey(e.Kind, e.Lang, e.Slug)
}

// URL is the public path: unprefixed for the default locale.
func (e *Entry) URL() string {
	if e.Lang == DefaultLang {
		return ShortcutKey(e.Kind, e.Slug)
	}
	return e.Key()
}

func QualifiedKey(k Kind, lang Lang, slug string) string {
	return "/" + string(lang) + "/" + k.Dir() + "/" + slug
}

func ShortcutKey(k Kind, slug string) string {
	return "/" + k.Dir() + "/" + slug
}

// ListURL is the public path of the kind's index page for lang.
func ListURL(k Kind, lang Lang) string {
	if lang == DefaultLang {
		return "/" + k.Dir()
	}
	return "/" + string(lang) + "/" + k.Dir()
}

type RelatedItem struct {
	*Entry
	Score int
}

// PrevNext holds the neighbours of an entry in its date-descending list.
// Prev sits one position earlier (newer), Next one position later.
type PrevNext struct {
	Prev *Entry
	Next *Entry
}
