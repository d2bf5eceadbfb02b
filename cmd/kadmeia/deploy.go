package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"kadmeia/internal/build"
	"kadmeia/internal/deploy"
)

var flagSkipBuild bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build the site and upload it over SFTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		up, err := deploy.NewUploader(cfg.Deploy)
		if err != nil {
			return err
		}

		if !flagSkipBuild {
			// published output must never carry ambiguous slugs
			cfg.Build.StrictSlugs = true
			if _, err := (&build.Builder{Cfg: cfg}).Run(cmd.Context()); err != nil {
				return err
			}
		}

		res, err := up.Upload(cmd.Context(), cfg.Build.PublicDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d files (%d bytes)\n", res.Files, res.Bytes)
		return nil
	},
}

func init() {
	deployCmd.Flags().BoolVar(&flagSkipBuild, "skip-build", false, "upload the public directory as is")
}
