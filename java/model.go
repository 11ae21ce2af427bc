package java

import (
	"strings"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

// Kind is the closed set of type kinds the emitter distinguishes.
type Kind string

const (
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindEnum       Kind = "enum"
	KindAnnotation Kind = "annotation"
)

const ObjectType = "java.lang.Object"

// ClassName is a (package, simple name) pair as produced by enumeration.
// Nested classes keep their '$' separated simple name.
type ClassName struct {
	Package string
	Name    string
}

func ParseClassName(fqn string) ClassName {
	pkg, simple := SplitClassName(fqn)
	return ClassName{Package: pkg, Name: simple}
}

// String returns the fully-qualified name, or "" when either part is
// missing. Types in the default package therefore never match a filter.
func (c ClassName) String() string {
	if c.Package == "" || c.Name == "" {
		return ""
	}
	return c.Package + "." + c.Name
}

func SplitClassName(fqn string) (pkg, simpleName string) {
	lastDot := strings.LastIndex(fqn, ".")
	if lastDot == -1 {
		return "", fqn
	}
	return fqn[:lastDot], fqn[lastDot+1:]
}

// TypeRef is a reference to a type by name. Only one level of type
// arguments is kept; arguments never carry arguments of their own.
type TypeRef struct {
	Name       string
	ArrayDepth int
	TypeArgs   []TypeRef
}

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"void":    true,
}

// IsPrimitive reports whether the element type is a primitive keyword or
// void. Arrays of primitives report true as well.
func (t TypeRef) IsPrimitive() bool {
	return primitives[t.Name]
}

const ClassType = "java.lang.Class"

var sequenceTypes = map[string]bool{
	"java.util.List":       true,
	"java.util.Set":        true,
	"java.util.Collection": true,
}

// IsSequence reports whether name is rendered as an array of its first
// type argument.
func IsSequence(name string) bool {
	return sequenceTypes[name]
}

// WrappedType returns the type argument a sequence or class literal
// exposes. Type arguments of any other generic type are not part of the
// rendered type.
func (t TypeRef) WrappedType() (TypeRef, bool) {
	if !IsSequence(t.Name) && t.Name != ClassType {
		return TypeRef{}, false
	}
	if len(t.TypeArgs) == 0 {
		return TypeRef{}, false
	}
	return t.TypeArgs[0], true
}

func (t TypeRef) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.TypeArgs) > 0 {
		sb.WriteString("<")
		for i, arg := range t.TypeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteString(">")
	}
	sb.WriteString(strings.Repeat("[]", t.ArrayDepth))
	return sb.String()
}

type Parameter struct {
	Name     string
	Type     TypeRef
	Optional bool
}

// MemberSignature describes a constructor or method. ReturnType is nil for
// constructors.
type MemberSignature struct {
	Owner       string
	Name        string
	Descriptor  string
	Parameters  []Parameter
	ReturnType  *TypeRef
	Visibility  Visibility
	IsStatic    bool
	IsAbstract  bool
	IsSynthetic bool
	IsBridge    bool
	IsVarargs   bool
}

// IsExported reports whether the member belongs to the public surface.
func (m MemberSignature) IsExported() bool {
	return m.Visibility == VisibilityPublic && !m.IsSynthetic && !m.IsBridge
}

// OverrideKey identifies the member for override resolution: name plus
// erased parameter types.
func (m MemberSignature) OverrideKey() string {
	if i := strings.IndexByte(m.Descriptor, ')'); i >= 0 {
		return m.Name + m.Descriptor[:i+1]
	}
	return m.Name + m.Descriptor
}

type FieldSignature struct {
	Owner          string
	Name           string
	Type           TypeRef
	Visibility     Visibility
	IsStatic       bool
	IsSynthetic    bool
	IsEnumConstant bool
}

// TypeDescriptor is the metadata of one loaded type. It is never mutated
// once the loader hands it out.
type TypeDescriptor struct {
	Name          string
	Package       string
	SimpleName    string
	Kind          Kind
	Visibility    Visibility
	IsFinal       bool
	IsAbstract    bool
	IsSynthetic   bool
	IsCompanion   bool
	MajorVersion  uint16
	SuperClass    *TypeRef
	Interfaces    []TypeRef
	Constructors  []MemberSignature
	Methods       []MemberSignature
	Inherited     []MemberSignature
	Fields        []FieldSignature
	EnumConstants []string
	Companion     *TypeDescriptor
}

func (td *TypeDescriptor) ClassName() ClassName {
	return ClassName{Package: td.Package, Name: td.SimpleName}
}

func (td *TypeDescriptor) IsInterface() bool {
	return td.Kind == KindInterface || td.Kind == KindAnnotation
}

// PublicConstructors returns the exported constructors in declaration order.
func (td *TypeDescriptor) PublicConstructors() []MemberSignature {
	return exported(td.Constructors)
}

// PublicMethods returns the exported declared methods followed by the
// exported inherited ones.
func (td *TypeDescriptor) PublicMethods() []MemberSignature {
	return append(exported(td.Methods), exported(td.Inherited)...)
}

func (td *TypeDescriptor) PublicFields() []FieldSignature {
	var out []FieldSignature
	for _, f := range td.Fields {
		if f.Visibility == VisibilityPublic && !f.IsSynthetic {
			out = append(out, f)
		}
	}
	return out
}

func exported(members []MemberSignature) []MemberSignature {
	var out []MemberSignature
	for _, m := range members {
		if m.IsExported() {
			out = append(out, m)
		}
	}
	return out
}
