package catalog

import (
	"kadmeia/internal/domain/content"
	"log"
	"sort"
)

const DefaultRelatedLimit = 3

// Related ranks the other entries of kind in lang by how many distinct
// tags they share with tags. Entries sharing none are dropped; ties go to the newer
// entry. It never fails: a panic is logged and yields no results.
func (c *Catalog) Related(kind content.Kind, currentSlug string, tags []string, lang content.Lang, limit int) (out []content.RelatedItem) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[catalog] related content for %s/%s failed: %v", kind, currentSlug, r)
			out = nil
		}
	}()

	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	for _, e := range c.All(kind, lang) {
		if e.Slug == currentSlug {
			continue
		}
		score := 0
		seen := make(map[string]struct{}, len(e.Tags))
		for _, t := range e.Tags {
			if _, ok := want[t]; !ok {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			score++
		}
		if score == 0 {
			continue
		}
		out = append(out, content.RelatedItem{Entry: e, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return newer(out[i].Entry, out[j].Entry)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PrevNext finds the neighbours of currentSlug in the newest-first list of
// kind in lang. The relation is purely positional: Prev is the entry one
// position earlier (newer), Next one position later. Entries with equal or
// missing dates keep their build order, which decides adjacency.
func (c *Catalog) PrevNext(kind content.Kind, currentSlug string, lang content.Lang) (pn content.PrevNext) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[catalog] prev/next for %s/%s failed: %v", kind, currentSlug, r)
			pn = content.PrevNext{}
		}
	}()

	items := c.All(kind, lang)
	idx := -1
	for i, e := range items {
		if e.Slug == currentSlug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return content.PrevNext{}
	}
	if idx > 0 {
		pn.Prev = items[idx-1]
	}
	if idx+1 < len(items) {
		pn.Next = items[idx+1]
	}
	return pn
}
