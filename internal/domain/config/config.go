package config

import (
	"gopkg.in/yaml.v3"
	"kadmeia/internal/domain/content"
	domainerr "kadmeia/internal/domain/errors"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Build      BuildConfig      `yaml:"build"`
	Serve      ServeConfig      `yaml:"serve"`
	CMS        CMSConfig        `yaml:"cms"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Deploy     DeployConfig     `yaml:"deploy"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	SiteURL     string `yaml:"site_url"`
	Theme       string `yaml:"theme"`
	DefaultLang string `yaml:"default_lang"`
	Description string `yaml:"description"`
}

type BuildConfig struct {
	ContentDir  string    `yaml:"content_dir"`
	PublicDir   string    `yaml:"public_dir"`
	ThemeDir    string    `yaml:"theme_dir"`
	IndexPath   string    `yaml:"index_path"`
	StrictSlugs bool      `yaml:"strict_slugs"`
	Precompress bool      `yaml:"precompress"`
	Now         time.Time `yaml:"-"`
}

type ServeConfig struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

type CMSConfig struct {
	APIURL string `yaml:"api_url"`
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Token  string `yaml:"token"`

	// AdminTokens maps bearer tokens to roles; only "admin" may edit.
	AdminTokens map[string]string `yaml:"admin_tokens"`
}

// Enabled reports whether the GitHub proxy has enough to talk upstream.
func (c CMSConfig) Enabled() bool {
	return c.Owner != "" && c.Repo != "" && c.Token != ""
}

type NewsletterConfig struct {
	DBPath     string        `yaml:"db_path"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type DeployConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Pass                  string `yaml:"pass"`
	KeyPath               string `yaml:"key_path"`
	RemoteDir             string `yaml:"remote_dir"`
	KnownHosts            string `yaml:"known_hosts"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
}

const (
	envGitHubToken = "KADMEIA_GITHUB_TOKEN"
	envDeployPass  = "KADMEIA_DEPLOY_PASS"
)

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:       "Kadmeia",
			Theme:       "default",
			DefaultLang: string(content.DefaultLang),
		},
		Build: BuildConfig{
			ContentDir: "content",
			PublicDir:  "public",
			ThemeDir:   "themes",
			IndexPath:  ".kadmeia/index.db",
			Now:        time.Now(),
		},
		Serve: ServeConfig{
			Addr:  ":8080",
			Watch: true,
		},
		CMS: CMSConfig{
			APIURL: "https://api.github.com",
			Branch: "main",
		},
		Newsletter: NewsletterConfig{
			DBPath:     ".kadmeia/newsletter.db",
			RateLimit:  5,
			RateWindow: time.Hour,
		},
		Deploy: DeployConfig{
			Port:      22,
			RemoteDir: "/var/www/html",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.theme", "must not be empty")
	}

	switch c.Site.DefaultLang {
	case "", string(content.LangES):
	default:
		// unprefixed routes are reserved for Spanish content
		ve.Add("site.default_lang", "only 'es' is supported")
	}

	if strings.TrimSpace(c.Build.ContentDir) == "" {
		ve.Add("build.content_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ThemeDir) == "" {
		ve.Add("build.theme_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}

	if c.CMS.APIURL != "" && !isValidAbsURL(c.CMS.APIURL) {
		ve.Add("cms.api_url", "must be a valid absolute URL")
	}
	if (c.CMS.Owner == "") != (c.CMS.Repo == "") {
		ve.Add("cms.repo", "owner and repo must be set together")
	}
	for tok, role := range c.CMS.AdminTokens {
		if strings.TrimSpace(tok) == "" {
			ve.Add("cms.admin_tokens", "token must not be empty")
		}
		if strings.TrimSpace(role) == "" {
			ve.Add("cms.admin_tokens", "role must not be empty")
		}
	}

	if c.Newsletter.RateLimit < 0 {
		ve.Add("newsletter.rate_limit", "must not be negative")
	}
	if c.Newsletter.RateWindow < 0 {
		ve.Add("newsletter.rate_window", "must not be negative")
	}

	if c.Deploy.InsecureIgnoreHostKey && c.Deploy.KnownHosts != "" {
		ve.Add("deploy.known_hosts", "cannot be combined with insecure_ignore_host_key")
	}
	if c.Deploy.Port < 0 || c.Deploy.Port > 65535 {
		ve.Add("deploy.port", "must be between 0 and 65535")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return decode(cfg, data)
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return cfg, err
	}
	return decode(cfg, data)
}

func decode(cfg Config, data []byte) (Config, error) {
	// fields present in the file override Default, the rest stay
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envGitHubToken); v != "" {
		c.CMS.Token = v
	}
	if v := os.Getenv(envDeployPass); v != "" {
		c.Deploy.Pass = v
	}
}
