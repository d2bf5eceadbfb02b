package render

import (
	"context"
	"kadmeia/internal/domain/config"
	"kadmeia/internal/domain/content"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMarkdownRender(t *testing.T) {
	md := NewMarkdownRenderer()
	res, err := md.Render([]byte("# Hola *mundo*\n\n## Sección `dos`\n\n<Chart data={x} />\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Headings) != 2 {
		t.Fatalf("got %d headings", len(res.Headings))
	}
	if res.Headings[0].Text != "Hola mundo" || res.Headings[0].Level != 1 {
		t.Errorf("heading 0 = %+v", res.Headings[0])
	}
	if res.Headings[1].Text != "Sección dos" || res.Headings[1].ID == "" {
		t.Errorf("heading 1 = %+v", res.Headings[1])
	}
	if !strings.Contains(string(res.HTML), "<Chart") {
		t.Errorf("raw JSX should pass through: %s", res.HTML)
	}
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "x")
	if err != nil || m["a"] != 1 || m["b"] != "x" {
		t.Errorf("dict = %v, %v", m, err)
	}
	if _, err := dict("a"); err == nil {
		t.Error("odd args should fail")
	}
	if _, err := dict(1, 2); err == nil {
		t.Error("non-string key should fail")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(content.LangEN, "casos"); got != "Case studies" {
		t.Errorf("Label(en, casos) = %q", got)
	}
	if got := Label(content.LangES, "unknown"); got != "unknown" {
		t.Errorf("Label fallback = %q", got)
	}
}

func TestMissingTemplates(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewTemplateRenderer(dir, "none"); err == nil {
		t.Fatal("expected missing template error")
	}
}

// The bundled theme must parse and render every page type.
func TestDefaultTheme(t *testing.T) {
	themeDir := filepath.Join("..", "..", "themes")
	if _, err := os.Stat(filepath.Join(themeDir, "default")); err != nil {
		t.Skip("default theme not present")
	}
	tpl, err := NewTemplateRenderer(themeDir, "default")
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	ctx := context.Background()
	site := config.SiteConfig{Title: "Kadmeia"}
	e := &content.Entry{
		Kind: content.KindCase, Slug: "granja", Title: "Granja Norte", Lang: content.LangES,
		Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Cover: "/images/cases/granja.webp",
		Tags: []string{"porcino"}, ReadMin: 3,
	}
	other := &content.Entry{Kind: content.KindCase, Slug: "otra", Title: "Otra", Lang: content.LangES}

	out, err := tpl.RenderHome(ctx, HomePage{Site: site, Lang: content.LangES, Cases: []*content.Entry{e}})
	if err != nil || !strings.Contains(string(out), `href="/casos/granja"`) {
		t.Errorf("home: %v\n%s", err, out)
	}
	out, err = tpl.RenderList(ctx, ListPage{Site: site, Lang: content.LangEN, Kind: content.KindPost, Title: "Blog"})
	if err != nil || !strings.Contains(string(out), `<html lang="en">`) {
		t.Errorf("list: %v\n%s", err, out)
	}
	out, err = tpl.RenderEntry(ctx, EntryPage{
		Site: site, Entry: e, HTML: "<p>cuerpo</p>", Title: e.Title,
		Related: []content.RelatedItem{{Entry: other, Score: 1}},
		Nav:     content.PrevNext{Next: other},
	})
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	for _, want := range []string{"<p>cuerpo</p>", "3 min de lectura", "Siguiente: Otra", "Contenido relacionado"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("entry page missing %q", want)
		}
	}
	out, err = tpl.RenderNotFound(ctx, NotFoundPage{Site: site, Lang: content.LangEN, Path: "/x"})
	if err != nil || !strings.Contains(string(out), "Page not found") {
		t.Errorf("404: %v\n%s", err, out)
	}
}
