package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/tsgen/config"
	"github.com/dhamidi/tsgen/generator"
	"github.com/dhamidi/tsgen/graph"
)

const (
	keyDebug   = "debug"
	keyLogFile = "log-file"
)

// newViper layers TSGEN_* environment variables under command flags.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TSGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func configureLogging(v *viper.Viper) {
	verbosity := 0
	if v.GetBool(keyDebug) {
		verbosity = 2
	}
	var path *string
	if p := v.GetString(keyLogFile); p != "" {
		path = &p
	}
	commonlog.Configure(verbosity, path)
}

func loadConfig(v *viper.Viper, path string) (*config.Configuration, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(v)
	return cfg, cfg.Validate()
}

func openGenerator(v *viper.Viper, path string) (*generator.Generator, error) {
	cfg, err := loadConfig(v, path)
	if err != nil {
		return nil, err
	}
	return generator.New(cfg)
}

func printStats(g *graph.Graph, stats graph.Stats) {
	pterm.Info.Printfln("Resolved %d types from %d seed classes", g.Len(), stats.Seeds)
	if stats.Failed() > 0 {
		pterm.Warning.Printfln("%d types skipped: %d not found, %d incompatible, %d unexpected",
			stats.Failed(), stats.NotFound, stats.Incompatible, stats.Unexpected)
	}
}
