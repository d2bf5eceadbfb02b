package main

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"kadmeia/internal/domain/config"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "kadmeia",
	Short:         "Bilingual content site engine",
	Long:          "kadmeia builds and serves the bilingual (es/en) blog and case study site from MDX content.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "site.yaml", "path to config file")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kadmeia %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		stop()
		os.Exit(1)
	}
}

// loadConfig reads --config over the defaults and validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", flagConfig, err)
	}
	return cfg, nil
}
