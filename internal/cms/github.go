package cms

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/go-github/v66/github"
	"kadmeia/internal/domain/config"
	domainerr "kadmeia/internal/domain/errors"
	"kadmeia/internal/httpx"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type File struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Content string `json:"content,omitempty"`
}

type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size,omitempty"`
}

// Contents is the subset of the GitHub Contents API the editor needs.
// Writes carry the SHA last read; a stale SHA fails with ErrConflict.
type Contents interface {
	GetFile(ctx context.Context, p string) (File, error)
	CreateFile(ctx context.Context, p, content, message string) (File, error)
	UpdateFile(ctx context.Context, p, content, sha, message string) (File, error)
	DeleteFile(ctx context.Context, p, sha, message string) error
	GetTree(ctx context.Context, prefix string) ([]TreeEntry, error)
}

// GitHubClient talks to one repository and branch.
type GitHubClient struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
}

func NewGitHubClient(cfg config.CMSConfig) (*GitHubClient, error) {
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	// a retried write could land twice; only retry when GitHub says so
	write := httpx.DefaultRetryConfig()
	write.Retry5xx = false

	hc := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &httpx.Transport{
			Retry:      httpx.DefaultRetryConfig(),
			WriteRetry: write,
		},
	}
	gh := github.NewClient(hc)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if base := strings.TrimRight(cfg.APIURL, "/"); base != "" && base != "https://api.github.com" {
		u, err := url.Parse(base + "/")
		if err != nil {
			return nil, fmt.Errorf("cms api_url: %w", err)
		}
		gh.BaseURL = u
	}

	return &GitHubClient{gh: gh, owner: cfg.Owner, repo: cfg.Repo, branch: branch}, nil
}

func (g *GitHubClient) GetFile(ctx context.Context, p string) (File, error) {
	p, err := CleanPath(p)
	if err != nil {
		return File{}, err
	}
	opts := &github.RepositoryContentGetOptions{Ref: g.branch}
	file, dir, _, err := g.gh.Repositories.GetContents(ctx, g.owner, g.repo, p, opts)
	if err != nil {
		return File{}, fmt.Errorf("get %s: %w", p, mapStatus(err))
	}
	if file == nil || dir != nil || (file.GetType() != "" && file.GetType() != "file") {
		return File{}, fmt.Errorf("get %s: %w: not a file", p, domainerr.ErrInvalid)
	}
	text, err := file.GetContent()
	if err != nil {
		return File{}, fmt.Errorf("get %s: decode content: %w", p, err)
	}
	return File{Path: file.GetPath(), SHA: file.GetSHA(), Content: text}, nil
}

func (g *GitHubClient) CreateFile(ctx context.Context, p, content, message string) (File, error) {
	p, err := CleanPath(p)
	if err != nil {
		return File{}, err
	}
	res, _, err := g.gh.Repositories.CreateFile(ctx, g.owner, g.repo, p, g.fileOptions(content, "", message))
	if err != nil {
		return File{}, fmt.Errorf("create %s: %w", p, mapStatus(err))
	}
	return writtenFile(res, p), nil
}

func (g *GitHubClient) UpdateFile(ctx context.Context, p, content, sha, message string) (File, error) {
	p, err := CleanPath(p)
	if err != nil {
		return File{}, err
	}
	if strings.TrimSpace(sha) == "" {
		return File{}, fmt.Errorf("update %s: %w: missing sha", p, domainerr.ErrInvalid)
	}
	res, _, err := g.gh.Repositories.UpdateFile(ctx, g.owner, g.repo, p, g.fileOptions(content, sha, message))
	if err != nil {
		return File{}, fmt.Errorf("update %s: %w", p, mapStatus(err))
	}
	return writtenFile(res, p), nil
}

func (g *GitHubClient) DeleteFile(ctx context.Context, p, sha, message string) error {
	p, err := CleanPath(p)
	if err != nil {
		return err
	}
	if strings.TrimSpace(sha) == "" {
		return fmt.Errorf("delete %s: %w: missing sha", p, domainerr.ErrInvalid)
	}
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(sha),
		Branch:  github.String(g.branch),
	}
	if _, _, err := g.gh.Repositories.DeleteFile(ctx, g.owner, g.repo, p, opts); err != nil {
		return fmt.Errorf("delete %s: %w", p, mapStatus(err))
	}
	return nil
}

// GetTree lists the blobs of the branch under prefix ("" for all).
func (g *GitHubClient) GetTree(ctx context.Context, prefix string) ([]TreeEntry, error) {
	if prefix != "" {
		var err error
		if prefix, err = CleanPath(prefix); err != nil {
			return nil, err
		}
	}
	tree, _, err := g.gh.Git.GetTree(ctx, g.owner, g.repo, g.branch, true)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", mapStatus(err))
	}
	if tree.GetTruncated() {
		log.Printf("[cms] tree of %s/%s@%s truncated by GitHub", g.owner, g.repo, g.branch)
	}
	out := make([]TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		p := e.GetPath()
		if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		out = append(out, TreeEntry{Path: p, Type: e.GetType(), SHA: e.GetSHA(), Size: e.GetSize()})
	}
	return out, nil
}

func (g *GitHubClient) fileOptions(content, sha, message string) *github.RepositoryContentFileOptions {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  github.String(g.branch),
	}
	if sha != "" {
		opts.SHA = github.String(sha)
	}
	return opts
}

func writtenFile(res *github.RepositoryContentResponse, p string) File {
	if res == nil || res.Content == nil {
		return File{Path: p}
	}
	return File{Path: res.Content.GetPath(), SHA: res.Content.GetSHA()}
}

// mapStatus turns GitHub statuses into domain errors. GitHub answers a
// stale or missing SHA with 409 or 422.
func mapStatus(err error) error {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return err
	}
	switch ghErr.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", domainerr.ErrNotFound, err)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %v", domainerr.ErrConflict, err)
	}
	return err
}

// CleanPath normalizes a repository path and rejects anything escaping
// the repository root.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: path %q", domainerr.ErrInvalid, p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: path %q", domainerr.ErrInvalid, p)
	}
	return c, nil
}
