package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list <config-file>",
		Short: "Resolve and print the class list without writing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := openGenerator(v, args[0])
			if err != nil {
				return err
			}
			defer gen.Close()

			stats, err := gen.BuildClassList()
			if err != nil {
				return err
			}
			entries, err := gen.ClassList()
			if err != nil {
				return err
			}
			data := pterm.TableData{{"Package", "Name"}}
			for _, e := range entries {
				data = append(data, []string{e.Package, e.Name})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			printStats(gen.Graph(), stats)
			return nil
		},
	}
}
