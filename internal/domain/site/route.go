package site

import (
	"kadmeia/internal/domain/content"
	"path"
	"strings"
)

type RouteKind string

const (
	RouteHome     RouteKind = "home"
	RouteList     RouteKind = "list"
	RouteEntry    RouteKind = "entry"
	RouteNotFound RouteKind = "404"
)

type Route struct {
	Kind    RouteKind
	Lang    content.Lang
	Content content.Kind
	Slug    string
	Key     string
	OutPath string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Lang != "" {
		parts = append(parts, "lang="+string(r.Lang))
	}
	if r.Content != "" {
		parts = append(parts, "content="+string(r.Content))
	}
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// ParsePath classifies a request path. Entry routes carry the catalog key
// to look up; whether the entry exists is the caller's concern.
//
//	/            home (es)      /en          home (en)
//	/blog        list (es)      /en/blog     list (en)
//	/blog/x      entry /blog/x  /en/blog/x   entry /en/blog/x
func ParsePath(p string) Route {
	p = path.Clean("/" + strings.TrimSpace(p))
	segs := strings.Split(strings.Trim(p, "/"), "/")
	if len(segs) == 1 && segs[0] == "" {
		segs = nil
	}

	lang := content.DefaultLang
	if len(segs) > 0 && (segs[0] == string(content.LangEN) || segs[0] == string(content.LangES)) {
		lang = content.Lang(segs[0])
		segs = segs[1:]
	}

	switch len(segs) {
	case 0:
		return Route{Kind: RouteHome, Lang: lang}
	case 1, 2:
		k, ok := kindForDir(segs[0])
		if !ok {
			break
		}
		if len(segs) == 1 {
			return Route{Kind: RouteList, Lang: lang, Content: k}
		}
		return Route{Kind: RouteEntry, Lang: lang, Content: k, Slug: segs[1], Key: p}
	}
	return Route{Kind: RouteNotFound, Key: p}
}

func kindForDir(seg string) (content.Kind, bool) {
	for _, k := range content.Kinds {
		if k.Dir() == seg {
			return k, true
		}
	}
	return "", false
}
