// Package graphdb exports a resolved type graph to Neo4j.
package graphdb

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/graph"
)

var log = commonlog.GetLogger("tsgen.graphdb")

const DefaultBatchSize = 500

// Runner executes one Cypher statement.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// Neo4j runs statements through a driver.
type Neo4j struct {
	driver neo4j.DriverWithContext
}

func Connect(ctx context.Context, uri, user, password string) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrapf(err, "connect to %s", uri)
	}
	return &Neo4j{driver: driver}, nil
}

func (n *Neo4j) Run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, n.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

type Exporter struct {
	runner    Runner
	blacklist *filter.Blacklist
	BatchSize int
}

func NewExporter(runner Runner, blacklist *filter.Blacklist) *Exporter {
	return &Exporter{runner: runner, blacklist: blacklist, BatchSize: DefaultBatchSize}
}

const (
	cleanQuery = "MATCH (n:JavaType) DETACH DELETE n"
	indexQuery = "CREATE INDEX java_type_name IF NOT EXISTS FOR (n:JavaType) ON (n.name)"
	nodeQuery  = `UNWIND $batch AS row
 MERGE (n:JavaType {name: row.name})
 SET n.package = row.package, n.simpleName = row.simpleName, n.kind = row.kind,
     n.final = row.final, n.abstract = row.abstract`
	edgeQuery = `UNWIND $batch AS row
 MATCH (a:JavaType {name: row.from})
 MATCH (b:JavaType {name: row.to})
 MERGE (a)-[:%s]->(b)`
)

// Edge labels.
const (
	References = "REFERENCES"
	Extends    = "EXTENDS"
	Implements = "IMPLEMENTS"
)

type Summary struct {
	Nodes int
	Edges map[string]int
}

// Clean removes every JavaType node and its relationships.
func (e *Exporter) Clean(ctx context.Context) error {
	log.Info("removing existing type graph")
	return errors.Wrap(e.runner.Run(ctx, cleanQuery, nil), "clean graph")
}

// Export upserts one node per type in g and the edges between them.
// Edges to types outside g are left out.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph) (Summary, error) {
	summary := Summary{Edges: map[string]int{}}
	if err := e.runner.Run(ctx, indexQuery, nil); err != nil {
		return summary, errors.Wrap(err, "create index")
	}

	types := g.Sorted()
	nodes := make([]map[string]any, 0, len(types))
	edges := map[string][]map[string]any{}
	addEdge := func(label, from, to string) {
		if from == to || !g.Contains(to) {
			return
		}
		edges[label] = append(edges[label], map[string]any{"from": from, "to": to})
	}

	for _, td := range types {
		nodes = append(nodes, map[string]any{
			"name":       td.Name,
			"package":    td.Package,
			"simpleName": td.SimpleName,
			"kind":       string(td.Kind),
			"final":      td.IsFinal,
			"abstract":   td.IsAbstract,
		})
		if td.SuperClass != nil {
			addEdge(Extends, td.Name, td.SuperClass.Name)
		}
		for _, iface := range td.Interfaces {
			addEdge(Implements, td.Name, iface.Name)
		}
		for _, ref := range graph.DirectReferences(td, e.blacklist) {
			addEdge(References, td.Name, ref)
		}
	}

	if err := e.batched(ctx, nodeQuery, nodes); err != nil {
		return summary, errors.Wrap(err, "load types")
	}
	summary.Nodes = len(nodes)
	log.Infof("loaded %d types", len(nodes))

	for _, label := range []string{Extends, Implements, References} {
		query := fmt.Sprintf(edgeQuery, label)
		if err := e.batched(ctx, query, edges[label]); err != nil {
			return summary, errors.Wrapf(err, "load %s edges", label)
		}
		summary.Edges[label] = len(edges[label])
		log.Infof("loaded %d %s edges", len(edges[label]), label)
	}
	return summary, nil
}

func (e *Exporter) batched(ctx context.Context, query string, rows []map[string]any) error {
	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		if err := e.runner.Run(ctx, query, map[string]any{"batch": rows[start:end]}); err != nil {
			return err
		}
	}
	return nil
}
