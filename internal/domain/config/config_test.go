package config

import (
	"errors"
	domainerr "kadmeia/internal/domain/errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Kadmeia Vet
  site_url: https://kadmeia.com
build:
  strict_slugs: true
newsletter:
  rate_window: 30m
cms:
  owner: kadmeia
  repo: site
  admin_tokens:
    secret: admin
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Title != "Kadmeia Vet" {
		t.Errorf("title = %q", cfg.Site.Title)
	}
	if cfg.Build.ContentDir != "content" {
		t.Errorf("content_dir default lost: %q", cfg.Build.ContentDir)
	}
	if !cfg.Build.StrictSlugs {
		t.Error("strict_slugs not applied")
	}
	if cfg.Newsletter.RateWindow != 30*time.Minute {
		t.Errorf("rate_window = %v", cfg.Newsletter.RateWindow)
	}
	if cfg.Newsletter.RateLimit != 5 {
		t.Errorf("rate_limit default lost: %d", cfg.Newsletter.RateLimit)
	}
	if cfg.CMS.Branch != "main" {
		t.Errorf("branch = %q", cfg.CMS.Branch)
	}
	if cfg.Build.Now.IsZero() {
		t.Error("Now should be set")
	}
}

func TestLoadEnvSecrets(t *testing.T) {
	t.Setenv(envGitHubToken, "ghp_test")
	t.Setenv(envDeployPass, "hunter2")
	path := writeConfig(t, "site:\n  site_url: https://kadmeia.com\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CMS.Token != "ghp_test" {
		t.Errorf("token = %q", cfg.CMS.Token)
	}
	if cfg.Deploy.Pass != "hunter2" {
		t.Errorf("pass = %q", cfg.Deploy.Pass)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Site.SiteURL = "kadmeia.com"
	cfg.Site.DefaultLang = "en"
	cfg.CMS.Owner = "kadmeia"
	cfg.Newsletter.RateLimit = -1

	err := cfg.Validate()
	if !errors.Is(err, domainerr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var ve domainerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := map[string]bool{
		"site.site_url":         true,
		"site.default_lang":     true,
		"cms.repo":              true,
		"newsletter.rate_limit": true,
	}
	for _, f := range ve.Fields() {
		delete(want, f)
	}
	if len(want) != 0 {
		t.Errorf("missing field errors: %v (got %v)", want, ve.Fields())
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	// the default config has no site_url
	if !errors.Is(err, domainerr.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCMSEnabled(t *testing.T) {
	c := CMSConfig{Owner: "o", Repo: "r"}
	if c.Enabled() {
		t.Error("no token should disable the proxy")
	}
	c.Token = "t"
	if !c.Enabled() {
		t.Error("expected enabled")
	}
}
