// Package graph computes the closure of types reachable from the admitted
// seed set through their public signatures.
package graph

import (
	"iter"
	"slices"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/java"
)

var log = commonlog.GetLogger("tsgen.graph")

// Source supplies type metadata. The archive loader is the production
// implementation.
type Source interface {
	Enumerate() iter.Seq[java.ClassName]
	Load(name string) (*java.TypeDescriptor, error)
}

type Admitter interface {
	Admits(name string) bool
}

// Graph is the append-only set of admitted types keyed by fully-qualified
// name. It is not safe for concurrent mutation.
type Graph struct {
	types map[string]*java.TypeDescriptor
}

func New() *Graph {
	return &Graph{types: make(map[string]*java.TypeDescriptor)}
}

// Add inserts td and reports whether it was new.
func (g *Graph) Add(td *java.TypeDescriptor) bool {
	if _, ok := g.types[td.Name]; ok {
		return false
	}
	g.types[td.Name] = td
	return true
}

func (g *Graph) Contains(name string) bool {
	_, ok := g.types[name]
	return ok
}

func (g *Graph) Get(name string) *java.TypeDescriptor {
	return g.types[name]
}

func (g *Graph) Len() int {
	return len(g.types)
}

// Sorted returns the types ordered by fully-qualified name.
func (g *Graph) Sorted() []*java.TypeDescriptor {
	out := make([]*java.TypeDescriptor, 0, len(g.types))
	for _, td := range g.types {
		out = append(out, td)
	}
	slices.SortFunc(out, func(a, b *java.TypeDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Stats counts what happened to every name the resolver attempted.
type Stats struct {
	Seeds        int
	Added        int
	Skipped      int
	NotFound     int
	Incompatible int
	Unexpected   int
}

func (s *Stats) Failed() int {
	return s.NotFound + s.Incompatible + s.Unexpected
}

func (s *Stats) record(kind java.FailureKind) {
	switch kind {
	case java.FailureNotFound:
		s.NotFound++
	case java.FailureIncompatible:
		s.Incompatible++
	default:
		s.Unexpected++
	}
}

// Resolve seeds a worklist with every enumerated name the filter admits
// and expands each type once. Load failures are logged and the type is
// left out; nothing aborts the walk.
func Resolve(src Source, admit Admitter, blacklist *filter.Blacklist) (*Graph, Stats) {
	g := New()
	var stats Stats
	attempted := make(map[string]bool)
	var frontier []string

	for cn := range src.Enumerate() {
		name := cn.String()
		if !admit.Admits(name) {
			continue
		}
		stats.Seeds++
		frontier = append(frontier, name)
	}

	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		if attempted[name] {
			continue
		}
		attempted[name] = true

		td, err := src.Load(name)
		if err != nil {
			kind := java.Classify(err)
			stats.record(kind)
			if kind == java.FailureUnexpected {
				log.Errorf("%s: %s", name, err)
			} else {
				log.Warningf("%s: %s: %s", kind, name, err)
			}
			continue
		}
		if td.IsCompanion || td.IsSynthetic {
			stats.Skipped++
			continue
		}

		g.Add(td)
		stats.Added++
		log.Debugf("added %s", name)

		for _, ref := range DirectReferences(td, blacklist) {
			if !attempted[ref] && admit.Admits(ref) {
				frontier = append(frontier, ref)
			}
		}
	}

	return g, stats
}

// DirectReferences lists the types td's public surface points to: its
// supertypes, the parameter and return types of its exported constructors
// and methods that the blacklist lets through, its public field types, and
// the exported methods of its companion. Array element types are included,
// as is the type argument of a List, Set, Collection or Class. Arguments of
// other generic types are not. Primitives and default-package names never
// appear. The result is sorted.
func DirectReferences(td *java.TypeDescriptor, blacklist *filter.Blacklist) []string {
	set := make(map[string]bool)
	add := func(ref java.TypeRef) {
		addReference(set, ref)
		if arg, ok := ref.WrappedType(); ok {
			addReference(set, arg)
		}
	}
	addMembers := func(members []java.MemberSignature) {
		for _, m := range members {
			if blacklist.Matches(m.Name) {
				continue
			}
			for _, p := range m.Parameters {
				add(p.Type)
			}
			if m.ReturnType != nil {
				add(*m.ReturnType)
			}
		}
	}

	if td.SuperClass != nil {
		add(*td.SuperClass)
	}
	for _, iface := range td.Interfaces {
		add(iface)
	}
	addMembers(td.PublicConstructors())
	addMembers(td.PublicMethods())
	for _, f := range td.PublicFields() {
		add(f.Type)
	}
	if td.Companion != nil {
		addMembers(td.Companion.PublicMethods())
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func addReference(set map[string]bool, ref java.TypeRef) {
	if ref.IsPrimitive() || !strings.Contains(ref.Name, ".") {
		return
	}
	set[ref.Name] = true
}
