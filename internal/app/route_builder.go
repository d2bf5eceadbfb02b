package app

import (
	"kadmeia/internal/catalog"
	"kadmeia/internal/domain/content"
	"kadmeia/internal/domain/site"
	"path/filepath"
	"strings"
)

type RouteBuilder struct {
	Catalog *catalog.Catalog
}

// BuildHomeRoutes returns one home page per locale: / and /en/.
func (rb *RouteBuilder) BuildHomeRoutes() []site.Route {
	var routes []site.Route
	for _, lang := range content.Langs {
		routes = append(routes, site.Route{
			Kind:    site.RouteHome,
			Lang:    lang,
			OutPath: outPathFor(homeKey(lang)),
		})
	}
	return routes
}

// BuildListRoutes returns the index page of every kind in every locale.
func (rb *RouteBuilder) BuildListRoutes() []site.Route {
	var routes []site.Route
	for _, k := range content.Kinds {
		for _, lang := range content.Langs {
			key := content.ListURL(k, lang)
			routes = append(routes, site.Route{
				Kind:    site.RouteList,
				Lang:    lang,
				Content: k,
				Key:     key,
				OutPath: outPathFor(key),
			})
		}
	}
	return routes
}

// BuildEntryRoutes returns a route for every catalog key, so Spanish
// entries are written under both their prefixed and unprefixed paths.
func (rb *RouteBuilder) BuildEntryRoutes() []site.Route {
	var routes []site.Route
	for _, k := range content.Kinds {
		for _, key := range rb.Catalog.Keys(k) {
			e, ok := rb.Catalog.Lookup(key)
			if !ok {
				continue
			}
			routes = append(routes, site.Route{
				Kind:    site.RouteEntry,
				Lang:    e.Lang,
				Content: k,
				Slug:    e.Slug,
				Key:     key,
				OutPath: outPathFor(key),
			})
		}
	}
	return routes
}

func (rb *RouteBuilder) BuildAll() []site.Route {
	var routes []site.Route
	routes = append(routes, rb.BuildHomeRoutes()...)
	routes = append(routes, rb.BuildListRoutes()...)
	routes = append(routes, rb.BuildEntryRoutes()...)
	return routes
}

func homeKey(lang content.Lang) string {
	if lang == content.DefaultLang {
		return "/"
	}
	return "/" + string(lang) + "/"
}

// outPathFor maps a route key to its file: /en/blog/x -> en/blog/x/index.html.
func outPathFor(key string) string {
	rel := strings.Trim(key, "/")
	return filepath.Join(filepath.FromSlash(rel), "index.html")
}
