package classfile

import "strings"

// FieldType is an erased JVM type as it appears in a descriptor.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// SourceName returns the dotted element name: a primitive keyword or a
// fully-qualified class name. Array brackets are not included.
func (ft *FieldType) SourceName() string {
	if ft.BaseType != "" {
		return ft.BaseType
	}
	return InternalToSourceName(ft.ClassName)
}

func (ft *FieldType) String() string {
	return ft.SourceName() + strings.Repeat("[]", ft.ArrayDepth)
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

// Slots is the number of local variable slots a value of this type takes.
func (ft *FieldType) Slots() int {
	if ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double") {
		return 2
	}
	return 1
}

type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType // nil for void
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(md.Parameters[i].String())
	}
	sb.WriteString(") ")
	if md.ReturnType != nil {
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString("void")
	}
	return sb.String()
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

func ParseFieldDescriptor(desc string) *FieldType {
	ft, n := parseFieldType(desc, 0)
	if ft == nil || n != len(desc) {
		return nil
	}
	return ft
}

func ParseMethodDescriptor(desc string) *MethodDescriptor {
	if len(desc) == 0 || desc[0] != '(' {
		return nil
	}

	md := &MethodDescriptor{}
	i := 1

	for i < len(desc) && desc[i] != ')' {
		ft, consumed := parseFieldType(desc, i)
		if ft == nil {
			return nil
		}
		md.Parameters = append(md.Parameters, *ft)
		i += consumed
	}

	if i >= len(desc) {
		return nil
	}
	i++

	switch {
	case i >= len(desc):
		return nil
	case desc[i] == 'V' && i == len(desc)-1:
		md.ReturnType = nil
	default:
		ret, consumed := parseFieldType(desc, i)
		if ret == nil || i+consumed != len(desc) {
			return nil
		}
		md.ReturnType = ret
	}

	return md
}

func parseFieldType(desc string, start int) (*FieldType, int) {
	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0
	}

	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i - start + 1
	}
	if desc[i] != 'L' {
		return nil, 0
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon < 2 {
		return nil, 0
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i - start + semicolon + 1
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
