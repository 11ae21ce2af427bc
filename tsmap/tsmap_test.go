package tsmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/tsgen/filter"
	"github.com/dhamidi/tsgen/java"
	"github.com/dhamidi/tsgen/tsmap"
)

type members map[string]bool

func (m members) Contains(name string) bool { return m[name] }

func newMapper(t *testing.T, commentTypes bool) *tsmap.Mapper {
	t.Helper()
	f, err := filter.New([]string{"com.example.*"}, []string{"com.example.Internal"})
	require.NoError(t, err)
	return tsmap.New(f, tsmap.Options{
		CommentTypes:   commentTypes,
		SafeClassNames: map[string]string{"Array": "_Array"},
	})
}

func ref(name string, args ...java.TypeRef) java.TypeRef {
	return java.TypeRef{Name: name, TypeArgs: args}
}

func array(name string, depth int) java.TypeRef {
	return java.TypeRef{Name: name, ArrayDepth: depth}
}

func TestMap(t *testing.T) {
	m := newMapper(t, true)

	tests := []struct {
		name string
		ref  java.TypeRef
		want string
	}{
		{"object", ref("java.lang.Object"), "any"},
		{"void", ref("void"), "void"},
		{"unit", ref("kotlin.Unit"), "void"},
		{"boolean", ref("boolean"), "boolean"},
		{"boxed boolean", ref("java.lang.Boolean"), "boolean"},
		{"string", ref("java.lang.String"), "string"},
		{"byte", ref("byte"), "number/*(Byte)*/"},
		{"short", ref("short"), "number/*(Short)*/"},
		{"int", ref("int"), "number/*(Int)*/"},
		{"boxed int", ref("java.lang.Integer"), "number/*(Int)*/"},
		{"long", ref("long"), "number/*(Long)*/"},
		{"float", ref("float"), "number/*(Float)*/"},
		{"double", ref("double"), "number/*(Double)*/"},
		{"char", ref("char"), "string/*(Char)*/"},
		{"int array", array("int", 1), "Array<number/*(Int)*/>"},
		{"nested array", array("java.lang.String", 2), "Array<Array<string>>"},
		{"list", ref("java.util.List", ref("com.example.Item")), "Array<Item>"},
		{"raw set", ref("java.util.Set"), "Array<any>"},
		{"class literal", ref("java.lang.Class", ref("com.example.Item")), "{ new (...args: any[]): Item; }"},
		{"raw class literal", ref("java.lang.Class"), "{ new (...args: any[]): any; }"},
		{"admitted", ref("com.example.Widget"), "Widget"},
		{"nested class", ref("com.example.Outer$Inner"), "Outer$Inner"},
		{"renamed", ref("com.example.Array"), "_Array"},
		{"excluded", ref("com.example.Internal"), "any/*(com.example.Internal)*/"},
		{"unknown", ref("org.other.Thing"), "any/*(org.other.Thing)*/"},
		{"array of excluded", array("org.other.Thing", 1), "Array<any/*(org.other.Thing)*/>"},
		{"list of excluded", ref("java.util.List", ref("org.other.Thing")), "Array<any/*(org.other.Thing)*/>"},
		{"map drops arguments", ref("java.util.Map", ref("java.lang.String"), ref("com.example.Item")), "any/*(java.util.Map)*/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.ref))
		})
	}
}

func TestMapWithoutCommentTypes(t *testing.T) {
	m := newMapper(t, false)
	assert.Equal(t, "number", m.Map(ref("long")))
	assert.Equal(t, "string", m.Map(ref("char")))
	assert.Equal(t, "any", m.Map(ref("org.other.Thing")))
	assert.Equal(t, "Array<number>", m.Map(array("int", 1)))
}

func TestMapWithGraph(t *testing.T) {
	m := newMapper(t, true).WithGraph(members{"com.example.Widget": true})
	assert.Equal(t, "Widget", m.Map(ref("com.example.Widget")))
	assert.Equal(t, "any/*(com.example.Missing)*/", m.Map(ref("com.example.Missing")))
	assert.True(t, m.IsAdmitted("com.example.Widget"))
	assert.False(t, m.IsAdmitted("com.example.Missing"))
}
