package classfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/tsgen/classfile"
)

func TestParseClassSignature(t *testing.T) {
	cs, err := classfile.ParseClassSignature(
		"<K:Ljava/lang/Object;V::Ljava/lang/Comparable<TV;>;>Ljava/util/AbstractMap<TK;TV;>;Ljava/util/Map<TK;TV;>;")
	require.NoError(t, err)

	require.NotNil(t, cs.SuperClass)
	assert.Equal(t, "java/util/AbstractMap", cs.SuperClass.ClassName)
	require.Len(t, cs.SuperClass.TypeArgs, 2)
	assert.Equal(t, "K", cs.SuperClass.TypeArgs[0].Type.TypeVariable)

	require.Len(t, cs.Interfaces, 1)
	assert.Equal(t, "java/util/Map", cs.Interfaces[0].ClassName)
}

func TestParseMethodSignature(t *testing.T) {
	ms, err := classfile.ParseMethodSignature(
		"<T:Ljava/lang/Object;>(Ljava/util/List<+Ljava/lang/Number;>;[TT;Ljava/util/Map<*-Ljava/lang/String;>;I)Ljava/lang/Class<TT;>;^Ljava/io/IOException;")
	require.NoError(t, err)
	require.Len(t, ms.Parameters, 4)

	list := ms.Parameters[0]
	assert.Equal(t, "java/util/List", list.ClassName)
	require.Len(t, list.TypeArgs, 1)
	assert.Equal(t, classfile.WildcardExtends, list.TypeArgs[0].Wildcard)
	assert.Equal(t, "java/lang/Number", list.TypeArgs[0].Type.ClassName)

	arr := ms.Parameters[1]
	assert.Equal(t, "T", arr.TypeVariable)
	assert.Equal(t, 1, arr.ArrayDepth)

	m := ms.Parameters[2]
	require.Len(t, m.TypeArgs, 2)
	assert.Equal(t, classfile.WildcardAny, m.TypeArgs[0].Wildcard)
	assert.Nil(t, m.TypeArgs[0].Type)
	assert.Equal(t, classfile.WildcardSuper, m.TypeArgs[1].Wildcard)

	assert.Equal(t, "int", ms.Parameters[3].BaseType)

	require.NotNil(t, ms.ReturnType)
	assert.Equal(t, "java/lang/Class", ms.ReturnType.ClassName)
}

func TestParseMethodSignatureVoid(t *testing.T) {
	ms, err := classfile.ParseMethodSignature("(Ljava/util/Set<Ljava/lang/String;>;)V")
	require.NoError(t, err)
	assert.Nil(t, ms.ReturnType)
	require.Len(t, ms.Parameters, 1)
}

func TestParseInnerClassSignature(t *testing.T) {
	ts, err := classfile.ParseFieldSignature("Lcom/example/Outer<Ljava/lang/String;>.Inner<Ljava/lang/Integer;>;")
	require.NoError(t, err)
	assert.Equal(t, "com/example/Outer$Inner", ts.ClassName)
	require.Len(t, ts.TypeArgs, 1)
	assert.Equal(t, "java/lang/Integer", ts.TypeArgs[0].Type.ClassName)
}

func TestParseSignatureErrors(t *testing.T) {
	for _, sig := range []string{"Ljava/util/List<", "Ljava/lang/String", "Q", "(I"} {
		t.Run(sig, func(t *testing.T) {
			_, err := classfile.ParseFieldSignature(sig)
			if sig == "(I" {
				_, err = classfile.ParseMethodSignature(sig)
			}
			assert.Error(t, err)
		})
	}
}
