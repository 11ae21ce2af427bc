package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dhamidi/tsgen/artifact"
)

func newFetchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <config-file>",
		Short: "Download the configured Maven artifacts into the plugins folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, args[0])
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), cfg.MavenRepository, cfg.PluginsDir(), cfg.Artifacts)
		},
	}
}

func runFetch(ctx context.Context, repo, dir string, coords []string) error {
	if len(coords) == 0 {
		pterm.Info.Println("No artifacts configured")
		return nil
	}
	f := artifact.NewFetcher(repo, dir)
	for _, raw := range coords {
		c, err := artifact.ParseCoordinate(raw)
		if err != nil {
			return err
		}
		path, downloaded, err := f.Fetch(ctx, c)
		if err != nil {
			return err
		}
		if downloaded {
			pterm.Success.Printfln("%s -> %s", c, path)
		} else {
			pterm.Info.Printfln("%s already present", c)
		}
	}
	return nil
}
