package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"kadmeia/internal/build"
)

var flagForce bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the static site into the public directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := &build.Builder{Cfg: cfg, Force: flagForce}
		res, err := b.Run(cmd.Context())
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "up to date")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d posts, %d cases, %d pages, %d warnings\n",
			res.Posts, res.Cases, res.Pages, len(res.Warnings))
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&flagForce, "force", false, "render even if nothing changed")
}
