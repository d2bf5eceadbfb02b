package main

import (
	"bytes"
	"kadmeia/internal/domain/content"
	"kadmeia/internal/index"
	"strings"
	"testing"
	"time"
)

func TestResolveListQuery(t *testing.T) {
	tests := []struct {
		kind, lang string
		wantKind   content.Kind
		wantLang   content.Lang
		err        bool
	}{
		{"post", "es", content.KindPost, content.LangES, false},
		{"casos", "en", content.KindCase, content.LangEN, false},
		{"blog", "en", content.KindPost, content.LangEN, false},
		{"page", "es", "", "", true},
		{"post", "fr", "", "", true},
	}
	for _, tt := range tests {
		k, l, err := resolveListQuery(tt.kind, tt.lang)
		if tt.err {
			if err == nil {
				t.Errorf("resolveListQuery(%q, %q): expected error", tt.kind, tt.lang)
			}
			continue
		}
		if err != nil || k != tt.wantKind || l != tt.wantLang {
			t.Errorf("resolveListQuery(%q, %q) = %q, %q, %v", tt.kind, tt.lang, k, l, err)
		}
	}
}

func TestPrintEntries(t *testing.T) {
	var buf bytes.Buffer
	err := printEntries(&buf, []content.Entry{
		{Kind: content.KindPost, Slug: "vacunas", Lang: content.LangES, Title: "Vacunas", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Kind: content.KindCase, Slug: "farm", Lang: content.LangEN, Title: "Farm"},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"2024-03-01", "/blog/vacunas", "/en/casos/farm", "Farm"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	if err := printSummaries(&buf, []index.Summary{{Kind: content.KindCase, Lang: content.LangEN, Count: 2}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "case") || !strings.Contains(buf.String(), "-") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(buf.String(), "kadmeia dev") {
		t.Errorf("version = %q", buf.String())
	}
}
