package ingest

import (
	"kadmeia/internal/domain/content"
	"os"
	"runtime"
	"strings"
	"sync"
)

type Warning struct {
	Path string
	Msg  string
}

// Batch is everything one ingest pass produced, in discovery order.
type Batch struct {
	Entries  []content.Entry
	Reports  []Report
	Warnings []Warning
}

type fileResult struct {
	Entry  content.Entry
	Report Report
	Warns  []Warning
	Skip   bool
	Err    error
}

// Ingest reads and normalizes every content file under contentDir. Files
// are parsed concurrently, but the batch keeps discovery order so that
// repeated runs over the same tree are identical. Drafts are returned too;
// filtering them is the catalog's job.
func Ingest(contentDir string) (*Batch, error) {
	files, err := DiscoverSource(contentDir)
	if err != nil {
		return nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}
	jobs := make(chan int)
	results := make([]fileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = ingestFile(files[idx])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	b := &Batch{}
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		b.Warnings = append(b.Warnings, r.Warns...)
		if r.Skip {
			continue
		}
		b.Entries = append(b.Entries, r.Entry)
		b.Reports = append(b.Reports, r.Report)
	}
	return b, nil
}

func ingestFile(sf SourceFile) fileResult {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return fileResult{Err: err}
	}

	var warns []Warning
	fm, body, fmErr := ParseFrontMatter(raw)
	switch {
	case fmErr == errNoFrontMatter:
		warns = append(warns, Warning{Path: sf.Path, Msg: "no front matter, using defaults"})
	case fmErr != nil:
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "failed to parse front matter, using defaults: " + fmErr.Error(),
		})
	}

	entry, rep := Normalize(sf.Kind, sf.Path, fm, body)
	if strings.TrimSpace(entry.Slug) == "" {
		warns = append(warns, Warning{Path: sf.Path, Msg: "empty slug"})
		return fileResult{Warns: warns, Skip: true}
	}
	entry.SourcePath = sf.Path
	entry.ContentHash = HashBytes(raw)

	return fileResult{Entry: entry, Report: rep, Warns: warns}
}

// Body returns the Markdown body of a source file, frontmatter and MDX
// module lines removed.
func Body(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, body, _ := ParseFrontMatter(raw)
	return StripMDX(body), nil
}
