package catalog

import (
	"fmt"
	"kadmeia/internal/domain/content"
	domainerr "kadmeia/internal/domain/errors"
	"kadmeia/internal/ingest"
	"sort"
)

type Options struct {
	// Strict turns a duplicate (kind, lang, slug) into a build error
	// instead of a warning. Static builds use it; the dev server does not.
	Strict bool
}

type Stats struct {
	Posts      int
	Cases      int
	Drafts     int
	Duplicates int
}

// Catalog holds every published entry, addressable by route key. It is
// built once and never mutated, so concurrent readers need no locking.
type Catalog struct {
	maps  map[content.Kind]map[string]*content.Entry
	lists map[content.Kind][]*content.Entry
	stats Stats
}

// Load ingests contentDir and builds a catalog from it.
func Load(contentDir string, opt Options) (*Catalog, *ingest.Batch, []ingest.Warning, error) {
	batch, err := ingest.Ingest(contentDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ingest: %w", err)
	}
	cat, warns, err := Build(batch.Entries, opt)
	warns = append(batch.Warnings, warns...)
	if err != nil {
		return nil, batch, warns, err
	}
	return cat, batch, warns, nil
}

// Build indexes entries in the given order. Drafts are dropped. Each entry
// is stored under /<lang>/<dir>/<slug>, and Spanish entries also under the
// unprefixed /<dir>/<slug>. A later entry with the same key replaces an
// earlier one and a warning is returned.
func Build(entries []content.Entry, opt Options) (*Catalog, []ingest.Warning, error) {
	c := &Catalog{
		maps:  make(map[content.Kind]map[string]*content.Entry, len(content.Kinds)),
		lists: make(map[content.Kind][]*content.Entry, len(content.Kinds)),
	}
	for _, k := range content.Kinds {
		c.maps[k] = make(map[string]*content.Entry)
	}

	var warns []ingest.Warning
	order := make(map[content.Kind][]string, len(content.Kinds))

	for i := range entries {
		e := entries[i]
		if e.Draft {
			c.stats.Drafts++
			continue
		}
		m, ok := c.maps[e.Kind]
		if !ok {
			warns = append(warns, ingest.Warning{Path: e.SourcePath, Msg: "unknown content kind: " + string(e.Kind)})
			continue
		}
		e.Tags = append([]string(nil), e.Tags...)

		key := e.Key()
		if prev, dup := m[key]; dup {
			c.stats.Duplicates++
			msg := fmt.Sprintf("duplicate slug %q for %s/%s, replaces %s", e.Slug, e.Kind, e.Lang, prev.SourcePath)
			if opt.Strict {
				return nil, warns, fmt.Errorf("%w: %s: %s", domainerr.ErrDuplicate, e.SourcePath, msg)
			}
			warns = append(warns, ingest.Warning{Path: e.SourcePath, Msg: msg})
		} else {
			order[e.Kind] = append(order[e.Kind], key)
		}

		m[key] = &e
		if e.Lang == content.DefaultLang {
			m[content.ShortcutKey(e.Kind, e.Slug)] = &e
		}
	}

	for _, k := range content.Kinds {
		list := make([]*content.Entry, 0, len(order[k]))
		for _, key := range order[k] {
			list = append(list, c.maps[k][key])
		}
		c.lists[k] = list
	}
	c.stats.Posts = len(c.lists[content.KindPost])
	c.stats.Cases = len(c.lists[content.KindCase])
	return c, warns, nil
}

func (c *Catalog) Stats() Stats {
	return c.stats
}

// All returns the published entries of kind in lang, newest first.
// Undated entries come last, keeping their build order.
func (c *Catalog) All(kind content.Kind, lang content.Lang) []*content.Entry {
	var out []*content.Entry
	for _, e := range c.lists[kind] {
		if e.Lang == lang {
			out = append(out, e)
		}
	}
	SortByDateDesc(out)
	return out
}

func (c *Catalog) AllPosts(lang content.Lang) []*content.Post {
	return c.All(content.KindPost, lang)
}

func (c *Catalog) AllCases(lang content.Lang) []*content.CaseStudy {
	return c.All(content.KindCase, lang)
}

// BySlug looks an entry up the way the site routes it: Spanish through
// the unprefixed key, English through the qualified one.
func (c *Catalog) BySlug(kind content.Kind, lang content.Lang, slug string) (*content.Entry, bool) {
	key := content.QualifiedKey(kind, lang, slug)
	if lang == content.DefaultLang {
		key = content.ShortcutKey(kind, slug)
	}
	e, ok := c.maps[kind][key]
	return e, ok
}

func (c *Catalog) PostBySlug(lang content.Lang, slug string) (*content.Post, bool) {
	return c.BySlug(content.KindPost, lang, slug)
}

func (c *Catalog) CaseBySlug(lang content.Lang, slug string) (*content.CaseStudy, bool) {
	return c.BySlug(content.KindCase, lang, slug)
}

// Lookup resolves a raw route key such as /en/casos/x or /blog/y.
func (c *Catalog) Lookup(key string) (*content.Entry, bool) {
	for _, k := range content.Kinds {
		if e, ok := c.maps[k][key]; ok {
			return e, true
		}
	}
	return nil, false
}

// Keys returns every route key of kind, sorted.
func (c *Catalog) Keys(kind content.Kind) []string {
	keys := make([]string, 0, len(c.maps[kind]))
	for k := range c.maps[kind] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContentHashes lists the source hash of every published entry.
func (c *Catalog) ContentHashes() []string {
	var out []string
	for _, k := range content.Kinds {
		for _, e := range c.lists[k] {
			out = append(out, e.ContentHash)
		}
	}
	return out
}

// SortByDateDesc orders entries newest first, undated last, stable.
func SortByDateDesc(items []*content.Entry) {
	sort.SliceStable(items, func(i, j int) bool {
		return newer(items[i], items[j])
	})
}

func newer(a, b *content.Entry) bool {
	if a.HasDate() != b.HasDate() {
		return a.HasDate()
	}
	return a.Date.After(b.Date)
}
