// Package tsmap turns JVM type references into TypeScript type
// expressions.
package tsmap

import (
	"github.com/dhamidi/tsgen/java"
)

type Admitter interface {
	Admits(name string) bool
}

// Membership narrows admission to types that were actually emitted.
type Membership interface {
	Contains(name string) bool
}

type Options struct {
	CommentTypes   bool
	SafeClassNames map[string]string
}

// Mapper is a total function from TypeRef to a TypeScript expression.
type Mapper struct {
	admit   Admitter
	members Membership
	opts    Options
}

func New(admit Admitter, opts Options) *Mapper {
	return &Mapper{admit: admit, opts: opts}
}

// WithGraph returns a copy of m that only names types contained in g.
func (m *Mapper) WithGraph(g Membership) *Mapper {
	c := *m
	c.members = g
	return &c
}

// numberComment names the JVM numeric type behind a TypeScript number.
func numberComment(name string) (string, bool) {
	switch name {
	case "byte", "java.lang.Byte":
		return "Byte", true
	case "short", "java.lang.Short":
		return "Short", true
	case "int", "java.lang.Integer":
		return "Int", true
	case "long", "java.lang.Long":
		return "Long", true
	case "float", "java.lang.Float":
		return "Float", true
	case "double", "java.lang.Double":
		return "Double", true
	}
	return "", false
}

// Map follows a fixed precedence: intrinsic value types, arrays and
// sequence wrappers, class literals, admitted types by simple name, and
// finally any.
func (m *Mapper) Map(ref java.TypeRef) string {
	if ref.ArrayDepth > 0 {
		ref.ArrayDepth--
		return "Array<" + m.Map(ref) + ">"
	}

	switch ref.Name {
	case java.ObjectType, "kotlin.Any":
		return "any"
	case "void", "java.lang.Void", "kotlin.Unit":
		return "void"
	case "boolean", "java.lang.Boolean":
		return "boolean"
	case "java.lang.String":
		return "string"
	case "char", "java.lang.Character", "kotlin.Char":
		return m.commented("string", "Char")
	}
	if comment, ok := numberComment(ref.Name); ok {
		return m.commented("number", comment)
	}

	if java.IsSequence(ref.Name) {
		return "Array<" + m.wrapped(ref) + ">"
	}
	if ref.Name == java.ClassType {
		return "{ new (...args: any[]): " + m.wrapped(ref) + "; }"
	}

	if m.IsAdmitted(ref.Name) {
		_, simple := java.SplitClassName(ref.Name)
		return m.ClassName(simple)
	}
	if m.opts.CommentTypes {
		return "any/*(" + ref.Name + ")*/"
	}
	return "any"
}

func (m *Mapper) wrapped(ref java.TypeRef) string {
	if arg, ok := ref.WrappedType(); ok {
		return m.Map(arg)
	}
	return "any"
}

func (m *Mapper) commented(base, comment string) string {
	if m.opts.CommentTypes {
		return base + "/*(" + comment + ")*/"
	}
	return base
}

// IsAdmitted reports whether name may be referred to by its simple name.
func (m *Mapper) IsAdmitted(name string) bool {
	if !m.admit.Admits(name) {
		return false
	}
	return m.members == nil || m.members.Contains(name)
}

// ClassName applies the class rename table to a simple name.
func (m *Mapper) ClassName(simple string) string {
	if renamed, ok := m.opts.SafeClassNames[simple]; ok {
		return renamed
	}
	return simple
}
