package ingest

import (
	"kadmeia/internal/domain/content"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeCover(t *testing.T) {
	tests := []struct {
		raw  any
		kind content.Kind
		want string
	}{
		{nil, content.KindCase, "/images/cases/foo.webp"},
		{"", content.KindPost, "/images/blog/foo.webp"},
		{"bar.jpg", content.KindCase, "/images/bar.jpg"},
		{"/assets/bar.jpg", content.KindCase, "/assets/bar.jpg"},
		{"https://x.com/y.jpg", content.KindCase, "https://x.com/y.jpg"},
		{map[string]any{"src": "x"}, content.KindCase, "/images/cases/foo.webp"},
	}
	for _, tt := range tests {
		if got := NormalizeCover(tt.raw, tt.kind, "foo"); got != tt.want {
			t.Errorf("NormalizeCover(%v, %s) = %q, want %q", tt.raw, tt.kind, got, tt.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		raw  any
		want []string
	}{
		{"a, b ,c", []string{"a", "b", "c"}},
		{"a,,b, ", []string{"a", "b"}},
		{[]any{"a", "b"}, []string{"a", "b"}},
		{[]any{"a", 2, nil, "a"}, []string{"a", "2", "a"}},
		{[]string{"x"}, []string{"x"}},
		{nil, []string{}},
		{map[string]any{"a": 1}, []string{}},
		{42, []string{}},
	}
	for _, tt := range tests {
		got := NormalizeTags(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeTags(%#v) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		raw  map[string]any
		want string
	}{
		{map[string]any{"title": "Hola"}, "Hola"},
		{map[string]any{"title": "  ", "Title": "Upper"}, "Upper"},
		{map[string]any{"titulo": "Título"}, "Título"},
		{map[string]any{"name": "Named"}, "Named"},
		{map[string]any{"title": 1984}, "1984"},
		{map[string]any{}, "Bienestar Animal En Granjas"},
	}
	if got := DeriveTitle(map[string]any{}, "covid-19-in-UK_farms"); got != "Covid 19 In UK Farms" {
		t.Errorf("DeriveTitle kept casing = %q", got)
	}
	for _, tt := range tests {
		if got := DeriveTitle(tt.raw, "bienestar-animal_en-granjas"); got != tt.want {
			t.Errorf("DeriveTitle(%v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDeriveExcerpt(t *testing.T) {
	tests := []struct {
		raw  map[string]any
		want string
	}{
		{map[string]any{"excerpt": "e", "summary": "s"}, "e"},
		{map[string]any{"excerpt": "", "summary": "s"}, "s"},
		{map[string]any{"resumen": "r"}, "r"},
		{map[string]any{}, ""},
	}
	for _, tt := range tests {
		if got := DeriveExcerpt(tt.raw); got != tt.want {
			t.Errorf("DeriveExcerpt(%v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDeriveLocale(t *testing.T) {
	tests := []struct {
		path string
		want content.Lang
	}{
		{"content/blog/en/post.mdx", content.LangEN},
		{"content/blog/es/post.mdx", content.LangES},
		{"content/casos/en/farm.mdx", content.LangEN},
		{"content/cases/en/farm.mdx", content.LangEN},
		{"content/blog/fr/post.mdx", content.LangES},
		{"content/blog/post.mdx", content.LangES},
		{"/srv/blog/site/content/blog/en/post.mdx", content.LangEN},
		{"elsewhere/post.mdx", content.LangES},
	}
	for _, tt := range tests {
		if got := DeriveLocale(tt.path); got != tt.want {
			t.Errorf("DeriveLocale(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestResolveSlug(t *testing.T) {
	tests := []struct {
		raw  map[string]any
		path string
		want string
	}{
		{map[string]any{}, "content/blog/es/mi-post.mdx", "mi-post"},
		{map[string]any{"slug": "otro"}, "content/blog/es/mi-post.mdx", "otro"},
		{map[string]any{"slug": "Caso Granja Norte"}, "x.md", "caso-granja-norte"},
		{map[string]any{"slug": "  "}, "content/blog/es/a.md", "a"},
		{map[string]any{"slug": ".."}, "content/blog/es/x.mdx", ""},
		{map[string]any{"slug": "."}, "content/blog/es/x.mdx", ""},
		{map[string]any{"slug": "v1.2"}, "content/blog/es/x.mdx", "v1.2"},
	}
	for _, tt := range tests {
		if got := ResolveSlug(tt.raw, tt.path); got != tt.want {
			t.Errorf("ResolveSlug(%v, %q) = %q, want %q", tt.raw, tt.path, got, tt.want)
		}
	}
}

func TestNormalizeNilTagReported(t *testing.T) {
	raw := map[string]any{"tags": []any{"a", nil}}
	e, rep := Normalize(content.KindPost, "content/blog/es/x.mdx", raw, nil)
	if !reflect.DeepEqual(e.Tags, []string{"a"}) {
		t.Errorf("tags = %v", e.Tags)
	}
	if !rep.Has("tags") {
		t.Errorf("null tag item should be reported: %v", rep.Defaulted)
	}

	_, rep = Normalize(content.KindPost, "content/blog/es/x.mdx", map[string]any{"tags": []any{"a"}}, nil)
	if rep.Has("tags") {
		t.Errorf("clean tags reported as defaulted: %v", rep.Defaulted)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTime("2024-03-01"); !got.Equal(want) {
		t.Errorf("ParseTime(date) = %v", got)
	}
	if got := ParseTime(want); !got.Equal(want) {
		t.Errorf("ParseTime(time.Time) = %v", got)
	}
	for _, bad := range []any{nil, "", "someday", 2024} {
		if got := ParseTime(bad); !got.IsZero() {
			t.Errorf("ParseTime(%v) = %v, want zero", bad, got)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	e, rep := Normalize(content.KindCase, "content/casos/en/dairy-herd.mdx", nil, nil)
	if e.Slug != "dairy-herd" || e.Title != "Dairy Herd" {
		t.Errorf("slug/title = %q/%q", e.Slug, e.Title)
	}
	if e.Lang != content.LangEN {
		t.Errorf("lang = %q", e.Lang)
	}
	if e.Cover != "/images/cases/dairy-herd.webp" {
		t.Errorf("cover = %q", e.Cover)
	}
	if e.Draft || e.HasDate() || e.Excerpt != "" || len(e.Tags) != 0 {
		t.Errorf("unexpected non-defaults: %+v", e)
	}
	for _, f := range []string{"slug", "title", "date", "excerpt", "cover", "lang", "tags"} {
		if !rep.Has(f) {
			t.Errorf("report should list %q as defaulted: %v", f, rep.Defaulted)
		}
	}
}

func TestNormalizeExplicit(t *testing.T) {
	raw := map[string]any{
		"title":   "Bioseguridad",
		"slug":    "bioseguridad-porcina",
		"date":    "2024-05-02",
		"summary": "Resumen corto",
		"cover":   "porcino.jpg",
		"lang":    "es",
		"tags":    "bioseguridad, porcino",
		"draft":   "yes",
	}
	e, rep := Normalize(content.KindPost, "content/blog/en/x.mdx", raw, []byte("uno dos tres cuatro"))
	if e.Slug != "bioseguridad-porcina" || e.Lang != content.LangES {
		t.Errorf("slug/lang = %q/%q", e.Slug, e.Lang)
	}
	if e.Excerpt != "Resumen corto" || e.Cover != "/images/porcino.jpg" {
		t.Errorf("excerpt/cover = %q/%q", e.Excerpt, e.Cover)
	}
	if !e.Draft {
		t.Error("draft: yes should be a draft")
	}
	if !reflect.DeepEqual(e.Tags, []string{"bioseguridad", "porcino"}) {
		t.Errorf("tags = %v", e.Tags)
	}
	if e.WordCount != 4 || e.ReadMin != 1 {
		t.Errorf("words/read = %d/%d", e.WordCount, e.ReadMin)
	}
	if len(rep.Defaulted) != 0 {
		t.Errorf("nothing should be defaulted, got %v", rep.Defaulted)
	}
}
