package graph_test

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/graph"
	"github.com/dhamidi/tsgen/java"
)

type fakeSource struct {
	order []string
	types map[string]*java.TypeDescriptor
	errs  map[string]error
	loads map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		types: map[string]*java.TypeDescriptor{},
		errs:  map[string]error{},
		loads: map[string]int{},
	}
}

func (s *fakeSource) add(td *java.TypeDescriptor, seed bool) {
	td.Package, td.SimpleName = java.SplitClassName(td.Name)
	s.types[td.Name] = td
	if seed {
		s.order = append(s.order, td.Name)
	}
}

func (s *fakeSource) Enumerate() iter.Seq[java.ClassName] {
	return func(yield func(java.ClassName) bool) {
		for _, name := range s.order {
			if !yield(java.ParseClassName(name)) {
				return
			}
		}
	}
}

func (s *fakeSource) Load(name string) (*java.TypeDescriptor, error) {
	s.loads[name]++
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	if td, ok := s.types[name]; ok {
		return td, nil
	}
	return nil, java.NotFoundf("%s", name)
}

func ref(name string, args ...string) java.TypeRef {
	r := java.TypeRef{Name: name}
	for _, a := range args {
		r.TypeArgs = append(r.TypeArgs, java.TypeRef{Name: a})
	}
	return r
}

func refp(name string, args ...string) *java.TypeRef {
	r := ref(name, args...)
	return &r
}

func method(name string, ret *java.TypeRef, params ...java.TypeRef) java.MemberSignature {
	m := java.MemberSignature{Name: name, Visibility: java.VisibilityPublic, ReturnType: ret}
	for _, p := range params {
		m.Parameters = append(m.Parameters, java.Parameter{Name: "p", Type: p})
	}
	return m
}

func mustFilter(t *testing.T, include, exclude []string) *filter.Filter {
	t.Helper()
	f, err := filter.New(include, exclude)
	require.NoError(t, err)
	return f
}

func mustBlacklist(t *testing.T, patterns ...string) *filter.Blacklist {
	t.Helper()
	b, err := filter.NewBlacklist(patterns)
	require.NoError(t, err)
	return b
}

func TestResolveClosureAndCycles(t *testing.T) {
	src := newFakeSource()
	src.add(&java.TypeDescriptor{
		Name:    "com.example.A",
		Methods: []java.MemberSignature{method("b", refp("com.example.B"))},
	}, true)
	src.add(&java.TypeDescriptor{
		Name:    "com.example.B",
		Methods: []java.MemberSignature{method("a", refp("void"), ref("com.example.A"))},
		Fields:  []java.FieldSignature{{Name: "c", Type: ref("java.util.List", "com.example.C"), Visibility: java.VisibilityPublic}},
	}, false)
	src.add(&java.TypeDescriptor{Name: "com.example.C"}, false)
	src.add(&java.TypeDescriptor{Name: "com.example.Internal"}, true)

	g, stats := graph.Resolve(src, mustFilter(t, []string{"com.example.*"}, []string{"com.example.Internal"}), mustBlacklist(t))

	var names []string
	for _, td := range g.Sorted() {
		names = append(names, td.Name)
	}
	assert.Equal(t, []string{"com.example.A", "com.example.B", "com.example.C"}, names)
	assert.Equal(t, 1, src.loads["com.example.A"], "each type is expanded once")
	assert.Equal(t, 1, src.loads["com.example.B"])
	assert.Zero(t, src.loads["com.example.Internal"])
	assert.Equal(t, 1, stats.Seeds)
	assert.Equal(t, 3, stats.Added)
}

func TestResolveLogsAndSkipsFailures(t *testing.T) {
	src := newFakeSource()
	src.add(&java.TypeDescriptor{
		Name: "com.example.Root",
		Methods: []java.MemberSignature{
			method("missing", refp("com.example.Missing")),
			method("broken", refp("com.example.Broken")),
			method("odd", refp("com.example.Odd")),
		},
	}, true)
	src.errs["com.example.Broken"] = java.Incompatiblef("broken")
	src.errs["com.example.Odd"] = assert.AnError

	g, stats := graph.Resolve(src, mustFilter(t, []string{"*"}, nil), mustBlacklist(t))

	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Contains("com.example.Root"))
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Incompatible)
	assert.Equal(t, 1, stats.Unexpected)
	assert.Equal(t, 3, stats.Failed())
}

func TestResolveSkipsCompanionsAndSynthetic(t *testing.T) {
	src := newFakeSource()
	companion := &java.TypeDescriptor{
		Name:        "com.example.Host$Companion",
		IsCompanion: true,
		Methods:     []java.MemberSignature{method("make", refp("com.example.Made"))},
	}
	src.add(companion, true)
	src.add(&java.TypeDescriptor{Name: "com.example.Host", Companion: companion}, true)
	src.add(&java.TypeDescriptor{Name: "com.example.Gen", IsSynthetic: true}, true)
	src.add(&java.TypeDescriptor{Name: "com.example.Made"}, false)

	g, stats := graph.Resolve(src, mustFilter(t, []string{"*"}, nil), mustBlacklist(t))

	assert.True(t, g.Contains("com.example.Host"))
	assert.True(t, g.Contains("com.example.Made"), "companion members are followed through the host")
	assert.False(t, g.Contains("com.example.Host$Companion"))
	assert.False(t, g.Contains("com.example.Gen"))
	assert.Equal(t, 2, stats.Skipped)
}

func TestDirectReferences(t *testing.T) {
	td := &java.TypeDescriptor{
		Name:       "com.example.Widget",
		SuperClass: refp("com.example.Base", "com.example.Arg"),
		Interfaces: []java.TypeRef{ref("com.example.Named")},
		Constructors: []java.MemberSignature{
			{Name: "<init>", Visibility: java.VisibilityPublic, Parameters: []java.Parameter{{Type: java.TypeRef{Name: "com.example.Seed", ArrayDepth: 2}}}},
			{Name: "<init>", Visibility: java.VisibilityPrivate, Parameters: []java.Parameter{{Type: ref("com.example.Hidden")}}},
		},
		Methods: []java.MemberSignature{
			method("items", refp("java.util.List", "com.example.Item"), ref("int"), ref("Default")),
			method("toString", refp("com.example.Blacklisted")),
			{Name: "bridge", Visibility: java.VisibilityPublic, IsBridge: true, ReturnType: refp("com.example.Bridge")},
		},
		Inherited: []java.MemberSignature{method("parent", refp("com.example.FromParent"))},
		Fields: []java.FieldSignature{
			{Name: "shown", Type: ref("com.example.Field"), Visibility: java.VisibilityPublic},
			{Name: "hidden", Type: ref("com.example.Private"), Visibility: java.VisibilityPrivate},
		},
		Companion: &java.TypeDescriptor{
			Methods: []java.MemberSignature{method("create", refp("com.example.Created"))},
		},
	}

	got := graph.DirectReferences(td, mustBlacklist(t, "toString"))
	assert.Equal(t, []string{
		"com.example.Base",
		"com.example.Created",
		"com.example.Field",
		"com.example.FromParent",
		"com.example.Item",
		"com.example.Named",
		"com.example.Seed",
		"java.util.List",
	}, got)
}

func TestDirectReferencesFollowOnlyWrapperArguments(t *testing.T) {
	td := &java.TypeDescriptor{
		Name: "com.example.A",
		Methods: []java.MemberSignature{
			method("get", refp("java.util.Map", "java.lang.String", "org.lib.B")),
			method("find", refp("java.util.Optional", "org.lib.C")),
			method("all", refp("java.util.Collection", "org.lib.D")),
			method("kind", refp("java.lang.Class", "org.lib.E")),
			method("pairs", refp("java.util.Set", "org.lib.F", "org.lib.G")),
		},
	}

	got := graph.DirectReferences(td, nil)
	assert.Equal(t, []string{
		"java.lang.Class",
		"java.util.Collection",
		"java.util.Map",
		"java.util.Optional",
		"java.util.Set",
		"org.lib.D",
		"org.lib.E",
		"org.lib.F",
	}, got)
	assert.NotContains(t, got, "org.lib.B")
}

func TestResolveIgnoresMapArguments(t *testing.T) {
	src := newFakeSource()
	src.add(&java.TypeDescriptor{
		Name:    "com.example.A",
		Methods: []java.MemberSignature{method("get", refp("java.util.Map", "java.lang.String", "org.lib.B"))},
	}, true)
	src.add(&java.TypeDescriptor{Name: "org.lib.B"}, false)

	g, _ := graph.Resolve(src, mustFilter(t, []string{"com.example.*", "org.lib.*"}, nil), nil)
	assert.True(t, g.Contains("com.example.A"))
	assert.False(t, g.Contains("org.lib.B"))
	assert.Zero(t, src.loads["org.lib.B"])
}

func TestSortedIsDeterministic(t *testing.T) {
	g := graph.New()
	for _, name := range []string{"b.B", "a.Z", "a.A", "b.A"} {
		assert.True(t, g.Add(&java.TypeDescriptor{Name: name}))
	}
	assert.False(t, g.Add(&java.TypeDescriptor{Name: "a.A"}))

	var names []string
	for _, td := range g.Sorted() {
		names = append(names, td.Name)
	}
	assert.Equal(t, []string{"a.A", "a.Z", "b.A", "b.B"}, names)
	assert.NotNil(t, g.Get("b.A"))
	assert.Nil(t, g.Get("c.C"))
}
