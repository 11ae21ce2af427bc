package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type generateOptions struct {
	clean                bool
	skipBuildClassList   bool
	skipExportClassList  bool
	skipExportTypeScript bool
	skipExportJavaScript bool
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <config-file>",
		Short: "Write the class index, declarations and bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(v, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.clean, "clean", false, "empty the export folder first")
	cmd.Flags().BoolVarP(&opts.skipBuildClassList, "skip-build-class-list", "b", false, "do not resolve the class list")
	cmd.Flags().BoolVarP(&opts.skipExportClassList, "skip-export-class-list", "c", false, "do not write the class index")
	cmd.Flags().BoolVarP(&opts.skipExportTypeScript, "skip-export-type-script", "t", false, "do not write .d.ts files")
	cmd.Flags().BoolVarP(&opts.skipExportJavaScript, "skip-export-java-script", "j", false, "do not write .js files")

	return cmd
}

func runGenerate(v *viper.Viper, path string, opts generateOptions) error {
	gen, err := openGenerator(v, path)
	if err != nil {
		return err
	}
	defer gen.Close()

	if err := gen.Mkdirs(); err != nil {
		return err
	}
	if opts.clean {
		if err := gen.Clean(); err != nil {
			return err
		}
	}

	if opts.skipBuildClassList {
		pterm.Warning.Println("Class list not built; nothing to export")
		return nil
	}
	stats, err := gen.BuildClassList()
	if err != nil {
		return err
	}
	printStats(gen.Graph(), stats)
	if v.GetBool(keyDebug) {
		if err := gen.DebugClassList(os.Stdout); err != nil {
			return err
		}
	}

	if !opts.skipExportClassList {
		if err := gen.ExportClassList(); err != nil {
			return err
		}
		pterm.Info.Printfln("Wrote class index %s", gen.Config().IndexPath())
	}
	if !opts.skipExportTypeScript {
		n, err := gen.ExportTypeScript()
		if err != nil {
			return err
		}
		pterm.Info.Printfln("Wrote %d declaration files", n)
	}
	if !opts.skipExportJavaScript {
		n, err := gen.ExportJavaScript()
		if err != nil {
			return err
		}
		pterm.Info.Printfln("Wrote %d binding files", n)
	}

	pterm.Success.Printfln("Successfully generated %d classes.", gen.Graph().Len())
	return nil
}
