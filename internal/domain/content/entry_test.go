package content

import "testing"

func TestKeys(t *testing.T) {
	es := Entry{Kind: KindCase, Lang: LangES, Slug: "granja-norte"}
	if got := es.Key(); got != "/es/casos/granja-norte" {
		t.Errorf("Key() = %q", got)
	}
	if got := es.URL(); got != "/casos/granja-norte" {
		t.Errorf("URL() = %q", got)
	}

	en := Entry{Kind: KindPost, Lang: LangEN, Slug: "biosecurity"}
	if got := en.URL(); got != "/en/blog/biosecurity" {
		t.Errorf("URL() = %q", got)
	}
	if got := ListURL(KindPost, LangEN); got != "/en/blog" {
		t.Errorf("ListURL() = %q", got)
	}
}

func TestParseLang(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
	}{
		{"en", LangEN},
		{" en ", LangEN},
		{"EN", LangES},
		{"es", LangES},
		{"fr", LangES},
		{"", LangES},
	}
	for _, tt := range tests {
		if got := ParseLang(tt.in); got != tt.want {
			t.Errorf("ParseLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"post", "blog", "Posts"} {
		if k, ok := ParseKind(in); !ok || k != KindPost {
			t.Errorf("ParseKind(%q) = %q, %v", in, k, ok)
		}
	}
	for _, in := range []string{"case", "casos", "cases"} {
		if k, ok := ParseKind(in); !ok || k != KindCase {
			t.Errorf("ParseKind(%q) = %q, %v", in, k, ok)
		}
	}
	if _, ok := ParseKind("page"); ok {
		t.Error("ParseKind(page) should fail")
	}
}
