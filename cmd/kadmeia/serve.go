package main

import (
	"github.com/spf13/cobra"
	"kadmeia/internal/cms"
	"kadmeia/internal/domain/config"
	"kadmeia/internal/newsletter"
	"kadmeia/internal/serve"
	"log"
)

var (
	flagAddr    string
	flagNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site with live reload and the editorial API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagAddr != "" {
			cfg.Serve.Addr = flagAddr
		}
		if flagNoWatch {
			cfg.Serve.Watch = false
		}

		store, err := newsletter.Open(cfg.Newsletter.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		deps, err := apiDeps(cfg, store)
		if err != nil {
			return err
		}
		api := cms.NewRouter(deps)

		s, err := serve.New(cfg, api)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
	},
}

func apiDeps(cfg config.Config, store *newsletter.Store) (cms.Deps, error) {
	d := cms.Deps{
		Admins: cfg.CMS.AdminTokens,
		Newsletter: &newsletter.Service{
			Store:   store,
			Limiter: newsletter.NewLimiter(cfg.Newsletter.RateLimit, cfg.Newsletter.RateWindow),
		},
	}
	if cfg.CMS.Enabled() {
		gh, err := cms.NewGitHubClient(cfg.CMS)
		if err != nil {
			return cms.Deps{}, err
		}
		d.Contents = gh
	} else {
		log.Printf("[serve] cms.owner/repo/token not set, github proxy disabled")
	}
	return d, nil
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides serve.addr)")
	serveCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "disable rebuild on content changes")
}
