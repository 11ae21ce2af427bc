package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/tsgen/config"
)

func main() {
	v := newViper()

	rootCmd := &cobra.Command{
		Use:          "tsgen",
		Short:        "Generate TypeScript declarations for JVM classes",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP(keyDebug, "d", false, "verbose logging and class list dump")
	flags.String(keyLogFile, "", "write log output to this file")
	flags.String(config.KeyExportFolder, "", "override exportFolder")
	flags.String(config.KeyPluginsFolder, "", "override pluginsFolder")
	flags.Bool(config.KeyCommentTypes, true, "override commentTypes")
	flags.String(config.KeyMavenRepository, "", "override mavenRepository")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		configureLogging(v)
		return nil
	}

	rootCmd.AddCommand(newGenerateCmd(v))
	rootCmd.AddCommand(newListCmd(v))
	rootCmd.AddCommand(newFetchCmd(v))
	rootCmd.AddCommand(newGraphCmd(v))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
