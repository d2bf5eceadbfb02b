package serve

import (
	"io"
	"kadmeia/internal/domain/config"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, api http.Handler) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"blog/vacunas.md":     "---\ntitle: Vacunas\ndate: 2024-03-01\n---\nHola.\n",
		"blog/en/vaccines.md": "---\ntitle: Vaccines\ndate: 2024-03-01\n---\nHello.\n",
		"casos/granja.md":     "---\ntitle: Granja\n---\nCaso.\n",
	}
	for rel, body := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Build.ContentDir = dir
	cfg.Build.ThemeDir = filepath.Join("..", "..", "themes")
	cfg.Serve.Watch = false

	s, err := New(cfg, api)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return s, dir
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestServerRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	tests := []struct {
		path string
		code int
		want string
	}{
		{"/", http.StatusOK, "Vacunas"},
		{"/en/", http.StatusOK, "Vaccines"},
		{"/blog", http.StatusOK, "/blog/vacunas"},
		{"/en/casos", http.StatusOK, "Case studies"},
		{"/blog/vacunas", http.StatusOK, "Hola."},
		{"/es/blog/vacunas", http.StatusOK, "Hola."},
		{"/en/blog/vaccines", http.StatusOK, "Hello."},
		{"/casos/granja", http.StatusOK, "Caso."},
		{"/en/blog/vacunas", http.StatusNotFound, "Page not found"},
		{"/blog/missing", http.StatusNotFound, "Página no encontrada"},
		{"/nope/a/b", http.StatusNotFound, ""},
		{"/css/site.css", http.StatusOK, ""},
	}
	for _, tt := range tests {
		code, body := get(t, h, tt.path)
		if code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, code, tt.code)
			continue
		}
		if tt.want != "" && !strings.Contains(body, tt.want) {
			t.Errorf("GET %s body missing %q", tt.path, tt.want)
		}
	}
}

func TestServerRebuildSwapsCatalog(t *testing.T) {
	s, dir := newTestServer(t, nil)
	h := s.Handler()

	if code, _ := get(t, h, "/blog/nuevo"); code != http.StatusNotFound {
		t.Fatalf("before rebuild: %d", code)
	}
	if err := os.WriteFile(filepath.Join(dir, "blog", "nuevo.md"), []byte("---\ntitle: Nuevo\n---\nNuevo.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if code, _ := get(t, h, "/blog/nuevo"); code != http.StatusOK {
		t.Errorf("after rebuild: %d", code)
	}
}

func TestServerMountsAPI(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s, _ := newTestServer(t, api)
	if code, _ := get(t, s.Handler(), "/api/newsletter"); code != http.StatusTeapot {
		t.Errorf("api mount = %d", code)
	}
}

func TestServerRejectsPost(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST / = %d", rec.Code)
	}
}
