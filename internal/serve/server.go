package serve

import (
	"context"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"kadmeia/internal/build"
	"kadmeia/internal/catalog"
	"kadmeia/internal/domain/config"
	"kadmeia/internal/domain/content"
	"kadmeia/internal/domain/site"
	"kadmeia/internal/render"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const debounceDelay = 200 * time.Millisecond

// Server renders the catalog on request. A rebuild swaps in a whole new
// catalog; handlers never see a half built one.
type Server struct {
	cfg config.Config
	md  *render.MarkdownRenderer
	tpl render.Renderer
	api http.Handler

	mu  sync.RWMutex
	cat *catalog.Catalog

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

// New prepares a server. api, when non-nil, is mounted under /api/.
func New(cfg config.Config, api http.Handler) (*Server, error) {
	tpl, err := render.NewTemplateRenderer(cfg.Build.ThemeDir, cfg.Site.Theme)
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
	}
	return &Server{
		cfg:      cfg,
		md:       render.NewMarkdownRenderer(),
		tpl:      tpl,
		api:      api,
		sseConns: make(map[chan string]struct{}),
	}, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Rebuild(); err != nil {
		return err
	}
	if s.cfg.Serve.Watch {
		if err := s.startWatch(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("[serve] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/dev/events", s.handleSSE)

	staticDir := filepath.Join(s.cfg.Build.ThemeDir, s.cfg.Site.Theme, "static")
	fileServer := http.FileServer(http.Dir(staticDir))
	mux.Handle("/css/", fileServer)
	mux.Handle("/js/", fileServer)
	mux.Handle("/images/", fileServer)
	mux.Handle("/favicon.ico", fileServer)

	if s.api != nil {
		mux.Handle("/api/", s.api)
	}
	return mux
}

// Rebuild reloads the catalog from disk. Duplicate slugs only warn here,
// so a half edited tree stays browsable.
func (s *Server) Rebuild() error {
	contentDir := s.cfg.Build.ContentDir
	log.Printf("[serve] ingest from %s ...", contentDir)
	cat, _, warns, err := catalog.Load(contentDir, catalog.Options{})
	for _, w := range warns {
		log.Printf("[warn] %s: %s", w.Path, w.Msg)
	}
	if err != nil {
		return err
	}
	st := cat.Stats()
	log.Printf("[serve] loaded %d posts, %d cases (%d drafts skipped)", st.Posts, st.Cases, st.Drafts)

	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()

	s.broadcastSSE("reload")
	return nil
}

func (s *Server) current() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.Walk(s.cfg.Build.ContentDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	log.Printf("[serve] watching for file changes ...")
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				// new folders (e.g. a fresh locale) need their own watch
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = s.watcher.Add(ev.Name)
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(debounceDelay)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			if err := s.Rebuild(); err != nil {
				log.Printf("[serve] rebuild error: %v", err)
			}
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cat := s.current()
	if cat == nil {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}

	route := site.ParsePath(r.URL.Path)
	switch route.Kind {
	case site.RouteHome:
		page := build.HomePage(s.cfg.Site, cat, route.Lang)
		page.Generated = time.Now()
		s.render(w, r, "home", func() ([]byte, error) { return s.tpl.RenderHome(r.Context(), page) })
	case site.RouteList:
		page := build.ListPage(s.cfg.Site, cat, route.Content, route.Lang)
		page.Generated = time.Now()
		s.render(w, r, "list", func() ([]byte, error) { return s.tpl.RenderList(r.Context(), page) })
	case site.RouteEntry:
		e, ok := cat.Lookup(route.Key)
		if !ok {
			s.handleNotFound(w, r, route.Lang)
			return
		}
		s.render(w, r, "entry", func() ([]byte, error) {
			return build.RenderEntry(r.Context(), s.cfg.Site, cat, s.md, s.tpl, e)
		})
	default:
		s.handleNotFound(w, r, langOfPath(r.URL.Path))
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, what string, fn func() ([]byte, error)) {
	htmlBytes, err := fn()
	if err != nil {
		log.Printf("[serve] render %s %s: %v", what, r.URL.Path, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, htmlBytes)
}

// handleNotFound answers a lookup miss. Misses are routine and not logged.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request, lang content.Lang) {
	page := render.NotFoundPage{
		Site: s.cfg.Site,
		Lang: lang,
		Path: r.URL.Path,
	}
	htmlBytes, err := s.tpl.RenderNotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, htmlBytes)
}

func langOfPath(p string) content.Lang {
	if strings.HasPrefix(p, "/"+string(content.LangEN)+"/") || p == "/"+string(content.LangEN) {
		return content.LangEN
	}
	return content.DefaultLang
}

func writeHTML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
