package index

import (
	"errors"
	"kadmeia/internal/catalog"
	"kadmeia/internal/domain/build"
	"kadmeia/internal/domain/content"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(OpenOptions{Path: filepath.Join(t.TempDir(), "idx", "index.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func entry(kind content.Kind, slug string, lang content.Lang, d int) content.Entry {
	e := content.Entry{Kind: kind, Slug: slug, Title: slug, Lang: lang}
	if d > 0 {
		e.Date = time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, _, err := catalog.Build([]content.Entry{
		entry(content.KindPost, "undated", content.LangES, 0),
		entry(content.KindPost, "old", content.LangES, 1),
		entry(content.KindPost, "new", content.LangES, 9),
		entry(content.KindPost, "tie-a", content.LangES, 5),
		entry(content.KindPost, "tie-b", content.LangES, 5),
		entry(content.KindPost, "english", content.LangEN, 3),
		entry(content.KindCase, "granja", content.LangES, 2),
	}, catalog.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRebuildAndList(t *testing.T) {
	st := openTemp(t)
	cat := buildCatalog(t)
	if err := st.Rebuild(cat, build.Fingerprint{RenderHash: "abc"}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	got, err := st.List(content.KindPost, content.LangES, ListOptions{Size: 100})
	if err != nil {
		t.Fatal(err)
	}
	want := cat.AllPosts(content.LangES)
	if len(got) != len(want) {
		t.Fatalf("List returned %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Slug != want[i].Slug {
			t.Errorf("List[%d] = %q, catalog has %q", i, got[i].Slug, want[i].Slug)
		}
	}

	page2, err := st.List(content.KindPost, content.LangES, ListOptions{Page: 2, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 2 || page2[0].Slug != want[2].Slug {
		t.Errorf("page 2 = %v", page2)
	}

	if none, _ := st.List(content.KindCase, content.LangEN, ListOptions{}); len(none) != 0 {
		t.Errorf("expected no English cases, got %v", none)
	}
}

func TestGetResolvesShortcut(t *testing.T) {
	st := openTemp(t)
	if err := st.Rebuild(buildCatalog(t), build.Fingerprint{}); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"/casos/granja", "/es/casos/granja"} {
		e, err := st.Get(key)
		if err != nil || e.Slug != "granja" {
			t.Errorf("Get(%q) = %+v, %v", key, e, err)
		}
	}
	if _, err := st.Get("/blog/english"); !errors.Is(err, ErrNotFound) {
		t.Errorf("English entry reachable without prefix: %v", err)
	}
	if _, err := st.Get(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(\"\") = %v", err)
	}
}

func TestFingerprintAndSummaries(t *testing.T) {
	st := openTemp(t)
	if _, err := st.Fingerprint(); !errors.Is(err, ErrNotFound) {
		t.Errorf("fresh store fingerprint: %v", err)
	}
	if err := st.Rebuild(buildCatalog(t), build.Fingerprint{RenderHash: "abc"}); err != nil {
		t.Fatal(err)
	}
	fp, err := st.Fingerprint()
	if err != nil || fp.RenderHash != "abc" {
		t.Errorf("Fingerprint = %+v, %v", fp, err)
	}

	sums, err := st.Summaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 3 {
		t.Fatalf("got %d summaries, want 3", len(sums))
	}
	if sums[0].Kind != content.KindPost || sums[0].Lang != content.LangES || sums[0].Count != 5 {
		t.Errorf("first summary = %+v", sums[0])
	}
	if sums[0].Latest.Day() != 9 {
		t.Errorf("latest = %v", sums[0].Latest)
	}
}

func TestRebuildReplaces(t *testing.T) {
	st := openTemp(t)
	if err := st.Rebuild(buildCatalog(t), build.Fingerprint{}); err != nil {
		t.Fatal(err)
	}
	empty, _, _ := catalog.Build(nil, catalog.Options{})
	if err := st.Rebuild(empty, build.Fingerprint{}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get("/blog/new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale entry survived rebuild: %v", err)
	}
}

func TestDateSlugKey(t *testing.T) {
	newer := makeDateSlugKey(true, 200, 0, "b")
	older := makeDateSlugKey(true, 100, 1, "a")
	undated := makeDateSlugKey(false, 0, 2, "c")
	if string(newer) >= string(older) || string(older) >= string(undated) {
		t.Error("keys do not sort newest first, undated last")
	}
	pre1970 := makeDateSlugKey(true, time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano(), 0, "old")
	post1970 := makeDateSlugKey(true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano(), 1, "new")
	if string(post1970) >= string(pre1970) || string(pre1970) >= string(undated) {
		t.Error("pre-1970 date does not sort after later dates")
	}
	if got := slugFromDateSlugKey(undated); got != "c" {
		t.Errorf("slug = %q", got)
	}
	if got := slugFromDateSlugKey([]byte{1, 2}); got != "" {
		t.Errorf("short key slug = %q", got)
	}
}
