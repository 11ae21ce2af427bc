package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dhamidi/tsgen/graphdb"
)

const (
	keyNeo4jURI  = "neo4j-uri"
	keyNeo4jUser = "neo4j-user"
	keyNeo4jPass = "neo4j-pass"
)

func newGraphCmd(v *viper.Viper) *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "graph <config-file>",
		Short: "Export the resolved type graph to Neo4j",
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
			printStats(gen.Graph(), stats)

			ctx := cmd.Context()
			db, err := graphdb.Connect(ctx, v.GetString(keyNeo4jURI), v.GetString(keyNeo4jUser), v.GetString(keyNeo4jPass))
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			exp := graphdb.NewExporter(db, gen.Blacklist())
			if clean {
				if err := exp.Clean(ctx); err != nil {
					return err
				}
			}
			summary, err := exp.Export(ctx, gen.Graph())
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Exported %d types, %d extends, %d implements, %d references",
				summary.Nodes, summary.Edges[graphdb.Extends], summary.Edges[graphdb.Implements], summary.Edges[graphdb.References])
			return nil
		},
	}

	cmd.Flags().String(keyNeo4jURI, "bolt://localhost:7687", "Neo4j connection URI")
	cmd.Flags().String(keyNeo4jUser, "neo4j", "Neo4j user")
	cmd.Flags().String(keyNeo4jPass, "", "Neo4j password")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove existing JavaType nodes first")

	return cmd
}
