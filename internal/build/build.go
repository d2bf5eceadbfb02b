package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/andybalholm/brotli"
	"gopkg.in/yaml.v3"
	"html/template"
	"io/fs"
	"kadmeia/internal/app"
	"kadmeia/internal/catalog"
	domainbuild "kadmeia/internal/domain/build"
	"kadmeia/internal/domain/config"
	"kadmeia/internal/domain/content"
	"kadmeia/internal/domain/site"
	"kadmeia/internal/index"
	"kadmeia/internal/ingest"
	"kadmeia/internal/render"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type Builder struct {
	Cfg config.Config

	// Force renders even when the stored fingerprint matches.
	Force bool
}

type Result struct {
	Posts    int
	Cases    int
	Pages    int
	Skipped  bool
	Warnings []ingest.Warning
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	cat, _, warns, err := catalog.Load(b.Cfg.Build.ContentDir, catalog.Options{
		Strict: b.Cfg.Build.StrictSlugs,
	})
	for _, w := range warns {
		log.Printf("[warn] %s: %s", w.Path, w.Msg)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	stats := cat.Stats()
	res := &Result{Posts: stats.Posts, Cases: stats.Cases, Warnings: warns}

	fp, err := b.fingerprint(cat)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	if !b.Force && b.upToDate(st, fp) {
		log.Printf("[build] nothing changed since last build, skipping")
		res.Skipped = true
		return res, nil
	}

	md := render.NewMarkdownRenderer()
	tpl, err := render.NewTemplateRenderer(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme)
	if err != nil {
		return nil, fmt.Errorf("load themes(%s): %w", b.Cfg.Build.ThemeDir, err)
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	pages, err := b.buildAll(ctx, cat, md, tpl, outDir)
	if err != nil {
		return nil, err
	}
	res.Pages = pages

	if err := st.Rebuild(cat, fp); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	log.Printf("[build] %d posts, %d cases, %d pages written to %s", res.Posts, res.Cases, res.Pages, outDir)
	return res, nil
}

func (b *Builder) upToDate(st *index.Store, fp domainbuild.Fingerprint) bool {
	prev, err := st.Fingerprint()
	if err != nil {
		return false
	}
	if prev.RenderHash != fp.RenderHash {
		return false
	}
	_, err = os.Stat(filepath.Join(b.Cfg.Build.PublicDir, "index.html"))
	return err == nil
}

func (b *Builder) fingerprint(cat *catalog.Catalog) (domainbuild.Fingerprint, error) {
	fp := domainbuild.Fingerprint{ContentHash: domainbuild.HashSet(cat.ContentHashes())}

	themeRoot := filepath.Join(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme)
	var themeHashes []string
	err := filepath.WalkDir(themeRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(themeRoot, path)
		themeHashes = append(themeHashes, filepath.ToSlash(rel)+":"+ingest.HashBytes(data))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fp, err
	}
	fp.ThemeHash = domainbuild.HashSet(themeHashes)

	cfgBytes, err := yaml.Marshal(struct {
		Site  config.SiteConfig  `yaml:"site"`
		Build config.BuildConfig `yaml:"build"`
	}{b.Cfg.Site, b.Cfg.Build})
	if err != nil {
		return fp, err
	}
	fp.ConfigHash = ingest.HashBytes(cfgBytes)
	fp.ComputeRenderHash()
	return fp, nil
}

func (b *Builder) buildAll(
	ctx context.Context,
	cat *catalog.Catalog,
	md *render.MarkdownRenderer,
	tpl render.Renderer,
	outDir string,
) (int, error) {
	rb := &app.RouteBuilder{Catalog: cat}
	pages := 0

	for _, r := range rb.BuildHomeRoutes() {
		if err := b.buildHome(ctx, cat, tpl, outDir, r); err != nil {
			return pages, fmt.Errorf("build home(%s): %w", r.Lang, err)
		}
		pages++
	}

	for _, r := range rb.BuildListRoutes() {
		if err := b.buildList(ctx, cat, tpl, outDir, r); err != nil {
			return pages, fmt.Errorf("build list(%s): %w", r.Key, err)
		}
		pages++
	}

	// es entries are reachable under two keys; render each once
	rendered := make(map[*content.Entry][]byte)
	for _, r := range rb.BuildEntryRoutes() {
		e, ok := cat.Lookup(r.Key)
		if !ok {
			continue
		}
		htmlBytes, ok := rendered[e]
		if !ok {
			var err error
			htmlBytes, err = RenderEntry(ctx, b.Cfg.Site, cat, md, tpl, e)
			if err != nil {
				return pages, fmt.Errorf("build entry(%s): %w", r.Key, err)
			}
			rendered[e] = htmlBytes
		}
		if err := b.writeFile(outDir, r.OutPath, htmlBytes); err != nil {
			return pages, err
		}
		pages++
	}

	if err := b.buildNotFound(ctx, tpl, outDir); err != nil {
		return pages, fmt.Errorf("build 404: %w", err)
	}
	pages++

	if err := b.copyStaticAssets(outDir); err != nil {
		return pages, fmt.Errorf("copy static assets: %w", err)
	}
	return pages, nil
}

// HomePage assembles the landing page of lang.
func HomePage(s config.SiteConfig, cat *catalog.Catalog, lang content.Lang) render.HomePage {
	return render.HomePage{
		Site:  s,
		Lang:  lang,
		Posts: cat.AllPosts(lang),
		Cases: cat.AllCases(lang),
		Title: s.Title,
	}
}

// ListPage assembles the index page of kind in lang.
func ListPage(s config.SiteConfig, cat *catalog.Catalog, kind content.Kind, lang content.Lang) render.ListPage {
	return render.ListPage{
		Site:  s,
		Lang:  lang,
		Kind:  kind,
		Title: render.Label(lang, kind.Dir()),
		Items: cat.All(kind, lang),
	}
}

// RenderEntry renders the detail page of e, with its related entries and
// neighbours in the same kind and locale.
func RenderEntry(
	ctx context.Context,
	s config.SiteConfig,
	cat *catalog.Catalog,
	md *render.MarkdownRenderer,
	tpl render.Renderer,
	e *content.Entry,
) ([]byte, error) {
	body, err := ingest.Body(e.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source(%s): %w", e.SourcePath, err)
	}
	mdResult, err := md.Render(body)
	if err != nil {
		return nil, fmt.Errorf("markdown render(%s): %w", e.Slug, err)
	}
	page := render.EntryPage{
		Site:    s,
		Entry:   e,
		HTML:    template.HTML(mdResult.HTML),
		TOC:     mdResult.Headings,
		Related: cat.Related(e.Kind, e.Slug, e.Tags, e.Lang, catalog.DefaultRelatedLimit),
		Nav:     cat.PrevNext(e.Kind, e.Slug, e.Lang),
		Title:   e.Title,
	}
	return tpl.RenderEntry(ctx, page)
}

func (b *Builder) buildHome(ctx context.Context, cat *catalog.Catalog, tpl render.Renderer, outDir string, r site.Route) error {
	page := HomePage(b.Cfg.Site, cat, r.Lang)
	page.Generated = b.Cfg.Build.Now
	htmlBytes, err := tpl.RenderHome(ctx, page)
	if err != nil {
		return err
	}
	return b.writeFile(outDir, r.OutPath, htmlBytes)
}

func (b *Builder) buildList(ctx context.Context, cat *catalog.Catalog, tpl render.Renderer, outDir string, r site.Route) error {
	page := ListPage(b.Cfg.Site, cat, r.Content, r.Lang)
	page.Generated = b.Cfg.Build.Now
	htmlBytes, err := tpl.RenderList(ctx, page)
	if err != nil {
		return err
	}
	return b.writeFile(outDir, r.OutPath, htmlBytes)
}

func (b *Builder) buildNotFound(ctx context.Context, tpl render.Renderer, outDir string) error {
	htmlBytes, err := tpl.RenderNotFound(ctx, render.NotFoundPage{
		Site: b.Cfg.Site,
		Lang: content.DefaultLang,
	})
	if err != nil {
		return err
	}
	return b.writeFile(outDir, "404.html", htmlBytes)
}

func (b *Builder) writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return err
	}
	if b.Cfg.Build.Precompress && compressible(full) {
		return writeBrotli(full+".br", data)
	}
	return nil
}

var compressibleExt = map[string]bool{
	".html": true,
	".css":  true,
	".js":   true,
	".svg":  true,
	".json": true,
	".xml":  true,
}

func compressible(path string) bool {
	return compressibleExt[strings.ToLower(filepath.Ext(path))]
}

func writeBrotli(path string, data []byte) error {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (b *Builder) copyStaticAssets(outDir string) error {
	src := filepath.Join(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme, "static")
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return b.writeFile(outDir, rel, in)
	})
}
