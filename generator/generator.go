// Package generator runs the generation phases over a configuration:
// loading archives, resolving the type graph and writing the class index,
// declarations and bindings.
package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/config"
	"github.com/dhamidi/tsgen/emit"
	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/graph"
	"github.com/dhamidi/tsgen/loader"
	"github.com/dhamidi/tsgen/tsmap"
)

var log = commonlog.GetLogger("tsgen.generator")

var ErrNoClassList = errors.New("class list has not been built")

type Generator struct {
	cfg       *config.Configuration
	admit     *filter.Filter
	blacklist *filter.Blacklist
	mapper    *tsmap.Mapper

	archives *loader.Archives
	graph    *graph.Graph
	stats    graph.Stats
}

// New compiles the patterns of cfg. Archives are opened lazily by the
// first phase that needs them.
func New(cfg *config.Configuration) (*Generator, error) {
	admit, err := filter.New(cfg.IncludeTypes, cfg.ExcludeTypes)
	if err != nil {
		return nil, err
	}
	blacklist, err := filter.NewBlacklist(cfg.FunctionBlacklist)
	if err != nil {
		return nil, err
	}
	return &Generator{
		cfg:       cfg,
		admit:     admit,
		blacklist: blacklist,
		mapper: tsmap.New(admit, tsmap.Options{
			CommentTypes:   cfg.CommentTypes,
			SafeClassNames: cfg.SafeClassNames,
		}),
	}, nil
}

func (g *Generator) Config() *config.Configuration { return g.cfg }

func (g *Generator) Blacklist() *filter.Blacklist { return g.blacklist }

// Graph is the resolved class list, or nil before BuildClassList.
func (g *Generator) Graph() *graph.Graph { return g.graph }

func (g *Generator) Stats() graph.Stats { return g.stats }

// SeedArchives lists the configured archives followed by every archive
// in the plugins folder.
func (g *Generator) SeedArchives() ([]string, error) {
	var paths []string
	for _, p := range g.cfg.Archives {
		paths = append(paths, g.cfg.Resolve(p))
	}
	dir := g.cfg.PluginsDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warningf("plugins folder %s does not exist", dir)
		return paths, nil
	}
	found, err := loader.FindArchives(dir)
	if err != nil {
		return nil, err
	}
	return append(paths, found...), nil
}

func (g *Generator) open() (*loader.Archives, error) {
	if g.archives != nil {
		return g.archives, nil
	}
	seeds, err := g.SeedArchives()
	if err != nil {
		return nil, err
	}
	platform := make([]string, len(g.cfg.PlatformArchives))
	for i, p := range g.cfg.PlatformArchives {
		platform[i] = g.cfg.Resolve(p)
	}
	archives, err := loader.Open(seeds, platform, loader.Options{
		PlatformPackages: g.cfg.PlatformPackages,
		MaxClassVersion:  g.cfg.MaxClassVersion,
	})
	if err != nil {
		return nil, err
	}
	g.archives = archives
	return archives, nil
}

func (g *Generator) Close() error {
	if g.archives == nil {
		return nil
	}
	err := g.archives.Close()
	g.archives = nil
	return err
}

// Mkdirs creates the export and plugins folders.
func (g *Generator) Mkdirs() error {
	for _, dir := range []string{g.cfg.ExportDir(), g.cfg.PluginsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

// Clean removes everything inside the export folder, keeping the folder.
func (g *Generator) Clean() error {
	dir := g.cfg.ExportDir()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrapf(err, "clean %s", dir)
		}
	}
	log.Infof("cleaned %s", dir)
	return nil
}

// BuildClassList resolves the transitive closure of admitted types.
// Per-type failures are counted in the returned stats, not returned.
func (g *Generator) BuildClassList() (graph.Stats, error) {
	archives, err := g.open()
	if err != nil {
		return graph.Stats{}, err
	}
	g.graph, g.stats = graph.Resolve(archives, g.admit, g.blacklist)
	log.Infof("class list: %d types, %d failures", g.graph.Len(), g.stats.Failed())
	return g.stats, nil
}

func (g *Generator) emitter() (*emit.Emitter, error) {
	if g.graph == nil {
		return nil, ErrNoClassList
	}
	return emit.New(g.graph, g.mapper, g.blacklist, emit.Options{
		ExportDir: g.cfg.ExportDir(),
		SafeNames: g.cfg.SafeNames,
	}), nil
}

// ClassList is the index of emitted types in fully-qualified name order.
func (g *Generator) ClassList() ([]config.IndexEntry, error) {
	e, err := g.emitter()
	if err != nil {
		return nil, err
	}
	types := g.graph.Sorted()
	entries := make([]config.IndexEntry, len(types))
	for i, td := range types {
		entries[i] = config.IndexEntry{Package: td.Package, Name: e.FileName(td)}
	}
	return entries, nil
}

// DebugClassList prints every fully-qualified name and the total.
func (g *Generator) DebugClassList(w io.Writer) error {
	if g.graph == nil {
		return ErrNoClassList
	}
	for _, td := range g.graph.Sorted() {
		fmt.Fprintln(w, td.Name)
	}
	fmt.Fprintf(w, "%d classes\n", g.graph.Len())
	return nil
}

func (g *Generator) ExportClassList() error {
	entries, err := g.ClassList()
	if err != nil {
		return err
	}
	path := g.cfg.IndexPath()
	if err := config.WriteIndex(path, entries); err != nil {
		return err
	}
	log.Infof("wrote %d entries to %s", len(entries), path)
	return nil
}

func (g *Generator) ExportTypeScript() (int, error) {
	e, err := g.emitter()
	if err != nil {
		return 0, err
	}
	return e.WriteDeclarations()
}

func (g *Generator) ExportJavaScript() (int, error) {
	e, err := g.emitter()
	if err != nil {
		return 0, err
	}
	return e.WriteBindings()
}

// ExportAll runs every phase in order.
func (g *Generator) ExportAll() error {
	if err := g.Mkdirs(); err != nil {
		return err
	}
	if _, err := g.BuildClassList(); err != nil {
		return err
	}
	if err := g.ExportClassList(); err != nil {
		return err
	}
	if _, err := g.ExportTypeScript(); err != nil {
		return err
	}
	_, err := g.ExportJavaScript()
	return err
}
