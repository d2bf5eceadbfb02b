package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"kadmeia/internal/domain/content"
	"os"
	"path/filepath"
	"time"
)

var requiredTemplates = []string{
	"home.tmpl",
	"list.tmpl",
	"entry.tmpl",
	"404.tmpl",
}

type TemplateRenderer struct {
	tpl *template.Template
}

func NewTemplateRenderer(themeDir, themeName string) (*TemplateRenderer, error) {
	dir := filepath.Join(themeDir, themeName, "templates")
	if err := CheckThemeTemplates(dir); err != nil {
		return nil, err
	}
	tpl, err := template.New("").Funcs(templateFuncs()).ParseGlob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

// labels holds the few UI strings templates need in both locales.
var labels = map[content.Lang]map[string]string{
	content.LangES: {
		"blog":     "Blog",
		"casos":    "Casos de éxito",
		"related":  "Contenido relacionado",
		"prev":     "Anterior",
		"next":     "Siguiente",
		"notfound": "Página no encontrada",
		"read":     "min de lectura",
	},
	content.LangEN: {
		"blog":     "Blog",
		"casos":    "Case studies",
		"related":  "Related content",
		"prev":     "Previous",
		"next":     "Next",
		"notfound": "Page not found",
		"read":     "min read",
	},
}

func Label(lang content.Lang, key string) string {
	if l, ok := labels[lang][key]; ok {
		return l
	}
	return key
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"nowYear": func() int {
			return time.Now().Year()
		},
		"homeURL": func(lang content.Lang) string {
			if lang == content.DefaultLang {
				return "/"
			}
			return "/" + string(lang) + "/"
		},
		"listURL": content.ListURL,
		"label":   Label,
		"dict":    dict,
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
	}
}

// dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func dict(kv ...interface{}) (map[string]interface{}, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderList(ctx context.Context, page ListPage) ([]byte, error) {
	return r.exec("list.tmpl", page)
}

func (r *TemplateRenderer) RenderEntry(ctx context.Context, page EntryPage) ([]byte, error) {
	return r.exec("entry.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(dir string) error {
	for _, name := range requiredTemplates {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}
