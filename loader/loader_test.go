package loader_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/tsgen/classfile"
	"github.com/dhamidi/tsgen/classfile/classfiletest"
	"github.com/dhamidi/tsgen/java"
	"github.com/dhamidi/tsgen/loader"
)

const public = classfile.AccPublic

func method(name, desc string) classfiletest.Method {
	return classfiletest.Method{Name: name, Descriptor: desc, Access: public}
}

func fixture(t *testing.T) (seed, second, platform string) {
	t.Helper()
	dir := t.TempDir()

	iface := classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract
	classes := []*classfiletest.Class{
		{Name: "com/example/Base", Access: public, Methods: []classfiletest.Method{
			method("name", "()Ljava/lang/String;"),
			method("size", "()I"),
		}},
		{Name: "com/example/Foo", Super: "com/example/Base", Access: public, Methods: []classfiletest.Method{
			method("<init>", "()V"),
			method("size", "()I"),
		}},
		{Name: "com/example/Foo$1", Access: 0},
		{Name: "com/example/Api", Access: iface, Methods: []classfiletest.Method{
			{Name: "run", Descriptor: "()V", Access: public | classfile.AccAbstract},
			{Name: "of", Descriptor: "()Lcom/example/Api;", Access: public | classfile.AccStatic},
		}},
		{Name: "com/example/Impl", Access: public, Interfaces: []string{"com/example/Api"}},
		{Name: "com/example/Orphan", Super: "com/missing/Gone", Access: public},
		{Name: "com/example/Plain", Super: "java/lang/Object", Access: public},
		{Name: "com/example/Sealed", Access: public | classfile.AccFinal},
		{Name: "com/example/Sub", Super: "com/example/Sealed", Access: public},
		{Name: "com/example/BadSuper", Super: "com/example/Api", Access: public},
		{Name: "com/example/BadIface", Interfaces: []string{"com/example/Base"}, Access: public},
		{Name: "com/example/CycleA", Super: "com/example/CycleB", Access: public},
		{Name: "com/example/CycleB", Super: "com/example/CycleA", Access: public},
		{Name: "com/example/Modern", Access: public, Major: 61},
		{Name: "com/example/Host", Access: public},
		{Name: "com/example/Host$Companion", Access: public | classfile.AccFinal, Methods: []classfiletest.Method{
			method("create", "()Lcom/example/Host;"),
		}},
	}
	extra := map[string][]byte{
		"com/example/Wrong.class":   (&classfiletest.Class{Name: "com/example/Right", Access: public}).Bytes(),
		"com/example/Corrupt.class": []byte("not a class"),
		"com/example/readme.txt":    []byte("hello"),
	}

	seed = filepath.Join(dir, "a.jar")
	require.NoError(t, classfiletest.WriteJar(seed, classes, extra))

	second = filepath.Join(dir, "b.jar")
	require.NoError(t, classfiletest.WriteJar(second, []*classfiletest.Class{
		{Name: "com/example/Foo", Access: public | classfile.AccFinal},
		{Name: "com/other/Extra", Access: public},
	}, nil))

	platform = filepath.Join(dir, "platform.jmod")
	require.NoError(t, classfiletest.WriteJmod(platform, []*classfiletest.Class{
		{Name: "com/platform/Thing", Access: public},
	}))
	return seed, second, platform
}

func open(t *testing.T, opts loader.Options) *loader.Archives {
	t.Helper()
	seed, second, platform := fixture(t)
	a, err := loader.Open([]string{seed, second}, []string{platform}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestEnumerate(t *testing.T) {
	a := open(t, loader.Options{})

	var names []string
	for cn := range a.Enumerate() {
		names = append(names, cn.String())
	}

	assert.Contains(t, names, "com.example.Foo")
	assert.Contains(t, names, "com.example.Host$Companion")
	assert.Contains(t, names, "com.other.Extra")
	assert.NotContains(t, names, "com.example.Foo$1")
	assert.NotContains(t, names, "com.platform.Thing")
	assert.NotContains(t, names, "com.example.readme.txt")

	foo := 0
	for _, n := range names {
		if n == "com.example.Foo" {
			foo++
		}
	}
	assert.Equal(t, 1, foo, "duplicate entries are yielded once")

	var again []string
	for cn := range a.Enumerate() {
		again = append(again, cn.String())
	}
	assert.Equal(t, names, again, "enumeration is restartable")

	var first []java.ClassName
	for cn := range a.Enumerate() {
		first = append(first, cn)
		break
	}
	assert.Len(t, first, 1)
}

func TestLoad(t *testing.T) {
	a := open(t, loader.Options{})

	foo, err := a.Load("com.example.Foo")
	require.NoError(t, err)
	assert.False(t, foo.IsFinal, "first archive wins")
	require.Len(t, foo.Inherited, 1)
	assert.Equal(t, "name", foo.Inherited[0].Name)
	assert.Equal(t, "com.example.Base", foo.Inherited[0].Owner)

	again, err := a.Load("com.example.Foo")
	require.NoError(t, err)
	assert.Same(t, foo, again, "results are cached")

	impl, err := a.Load("com.example.Impl")
	require.NoError(t, err)
	var inherited []string
	for _, m := range impl.Inherited {
		inherited = append(inherited, m.Name)
	}
	assert.Equal(t, []string{"run"}, inherited, "static interface methods are not inherited")

	plain, err := a.Load("com.example.Plain")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Object", plain.SuperClass.Name)

	thing, err := a.Load("com.platform.Thing")
	require.NoError(t, err)
	assert.Equal(t, "Thing", thing.SimpleName)

	host, err := a.Load("com.example.Host")
	require.NoError(t, err)
	require.NotNil(t, host.Companion)
	assert.Equal(t, "create", host.Companion.Methods[0].Name)
}

func TestLoadFailures(t *testing.T) {
	a := open(t, loader.Options{MaxClassVersion: 52})

	tests := []struct {
		name string
		want java.FailureKind
	}{
		{"com.example.Missing", java.FailureNotFound},
		{"com.example.Orphan", java.FailureNotFound},
		{"com.example.Wrong", java.FailureNotFound},
		{"com.example.Sub", java.FailureIncompatible},
		{"com.example.BadSuper", java.FailureIncompatible},
		{"com.example.BadIface", java.FailureIncompatible},
		{"com.example.CycleA", java.FailureIncompatible},
		{"com.example.CycleB", java.FailureIncompatible},
		{"com.example.Corrupt", java.FailureUnexpected},
		{"com.example.Modern", java.FailureUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td, err := a.Load(tt.name)
			assert.Nil(t, td)
			require.Error(t, err)
			assert.Equal(t, tt.want, java.Classify(err), "got %v", err)

			_, again := a.Load(tt.name)
			assert.Equal(t, err, again, "failures are cached")
		})
	}
}

func TestFindArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jar", "a.JAR", "c.jmod", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jar"), 0o755))

	paths, err := loader.FindArchives(dir)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.True(t, slices.IsSorted(names))
	assert.Equal(t, []string{"a.JAR", "b.jar", "c.jmod"}, names)

	_, err = loader.FindArchives(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestOpenRejectsBadArchives(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jar")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err := loader.Open([]string{bad}, nil, loader.Options{})
	assert.Error(t, err)

	badJmod := filepath.Join(dir, "bad.jmod")
	require.NoError(t, os.WriteFile(badJmod, []byte("PK\x03\x04"), 0o644))
	_, err = loader.Open(nil, []string{badJmod}, loader.Options{})
	assert.Error(t, err)
}
