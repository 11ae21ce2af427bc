package classfile

import (
	"encoding/binary"
)

type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    any
}

type CodeAttribute struct {
	MaxStack   uint16
	MaxLocals  uint16
	Attributes []AttributeInfo
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

// ParameterAnnotationsAttribute holds either the visible or the invisible
// parameter annotation table; both share one layout.
type ParameterAnnotationsAttribute struct {
	Visible              bool
	ParameterAnnotations [][]Annotation
}

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

// TypeName returns the annotation's field descriptor, e.g.
// "Lorg/jetbrains/annotations/Nullable;".
func (a Annotation) TypeName(cp ConstantPool) string {
	return cp.GetUtf8(a.TypeIndex)
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

type ElementValue struct {
	Tag   byte
	Value any
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ArrayValue struct {
	Values []ElementValue
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	if a == nil {
		return nil
	}
	if code, ok := a.Parsed.(*CodeAttribute); ok {
		return code
	}
	return nil
}

func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	if a == nil {
		return nil
	}
	if lvt, ok := a.Parsed.(*LocalVariableTableAttribute); ok {
		return lvt
	}
	return nil
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	if a == nil {
		return nil
	}
	if sig, ok := a.Parsed.(*SignatureAttribute); ok {
		return sig
	}
	return nil
}

func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	if a == nil {
		return nil
	}
	if mp, ok := a.Parsed.(*MethodParametersAttribute); ok {
		return mp
	}
	return nil
}

func (a *AttributeInfo) AsParameterAnnotations() *ParameterAnnotationsAttribute {
	if a == nil {
		return nil
	}
	if pa, ok := a.Parsed.(*ParameterAnnotationsAttribute); ok {
		return pa
	}
	return nil
}

// parseAttribute decodes the attributes the generator reads. Everything
// else keeps only its raw bytes.
func parseAttribute(name string, info []byte, cp ConstantPool) any {
	switch name {
	case "Code":
		return parseCodeAttribute(info, cp)
	case "LocalVariableTable":
		return parseLocalVariableTableAttribute(info)
	case "Signature":
		return parseSignatureAttribute(info)
	case "MethodParameters":
		return parseMethodParametersAttribute(info)
	case "RuntimeVisibleParameterAnnotations":
		return parseParameterAnnotationsAttribute(info, true)
	case "RuntimeInvisibleParameterAnnotations":
		return parseParameterAnnotationsAttribute(info, false)
	}
	return nil
}

func parseCodeAttribute(info []byte, cp ConstantPool) *CodeAttribute {
	if len(info) < 8 {
		return nil
	}

	code := &CodeAttribute{
		MaxStack:  binary.BigEndian.Uint16(info[0:2]),
		MaxLocals: binary.BigEndian.Uint16(info[2:4]),
	}

	codeLength := binary.BigEndian.Uint32(info[4:8])
	offset := 8 + int(codeLength)
	if len(info) < offset+2 {
		return nil
	}

	exceptionTableLength := int(binary.BigEndian.Uint16(info[offset : offset+2]))
	offset += 2 + exceptionTableLength*8

	if len(info) < offset+2 {
		return nil
	}
	attributesCount := binary.BigEndian.Uint16(info[offset : offset+2])
	offset += 2

	code.Attributes = make([]AttributeInfo, 0, attributesCount)
	for i := uint16(0); i < attributesCount; i++ {
		if len(info) < offset+6 {
			return nil
		}
		nameIndex := binary.BigEndian.Uint16(info[offset : offset+2])
		attrLength := binary.BigEndian.Uint32(info[offset+2 : offset+6])
		offset += 6

		if len(info) < offset+int(attrLength) {
			return nil
		}
		attrInfo := info[offset : offset+int(attrLength)]
		offset += int(attrLength)

		attr := AttributeInfo{
			NameIndex: nameIndex,
			Info:      attrInfo,
		}
		if cp.GetUtf8(nameIndex) == "LocalVariableTable" {
			attr.Parsed = parseLocalVariableTableAttribute(attrInfo)
		}
		code.Attributes = append(code.Attributes, attr)
	}

	return code
}

func parseLocalVariableTableAttribute(info []byte) *LocalVariableTableAttribute {
	if len(info) < 2 {
		return nil
	}

	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*10 {
		return nil
	}

	lvt := &LocalVariableTableAttribute{
		LocalVariableTable: make([]LocalVariableEntry, count),
	}

	offset := 2
	for i := uint16(0); i < count; i++ {
		lvt.LocalVariableTable[i] = LocalVariableEntry{
			StartPC:         binary.BigEndian.Uint16(info[offset : offset+2]),
			Length:          binary.BigEndian.Uint16(info[offset+2 : offset+4]),
			NameIndex:       binary.BigEndian.Uint16(info[offset+4 : offset+6]),
			DescriptorIndex: binary.BigEndian.Uint16(info[offset+6 : offset+8]),
			Index:           binary.BigEndian.Uint16(info[offset+8 : offset+10]),
		}
		offset += 10
	}

	return lvt
}

func parseSignatureAttribute(info []byte) *SignatureAttribute {
	if len(info) < 2 {
		return nil
	}
	return &SignatureAttribute{
		SignatureIndex: binary.BigEndian.Uint16(info[0:2]),
	}
}

func parseMethodParametersAttribute(info []byte) *MethodParametersAttribute {
	if len(info) < 1 {
		return nil
	}

	count := uint8(info[0])
	if len(info) < 1+int(count)*4 {
		return nil
	}

	mp := &MethodParametersAttribute{
		Parameters: make([]MethodParameter, count),
	}

	offset := 1
	for i := uint8(0); i < count; i++ {
		mp.Parameters[i] = MethodParameter{
			NameIndex:   binary.BigEndian.Uint16(info[offset : offset+2]),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(info[offset+2 : offset+4])),
		}
		offset += 4
	}

	return mp
}

func parseParameterAnnotationsAttribute(info []byte, visible bool) *ParameterAnnotationsAttribute {
	if len(info) < 1 {
		return nil
	}

	numParameters := uint8(info[0])
	pa := &ParameterAnnotationsAttribute{
		Visible:              visible,
		ParameterAnnotations: make([][]Annotation, numParameters),
	}

	offset := 1
	for i := uint8(0); i < numParameters; i++ {
		if len(info) < offset+2 {
			return nil
		}
		numAnnotations := binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2

		annotations := make([]Annotation, numAnnotations)
		for j := uint16(0); j < numAnnotations; j++ {
			annotations[j], offset = parseAnnotation(info, offset)
		}
		pa.ParameterAnnotations[i] = annotations
	}

	return pa
}

func parseAnnotation(info []byte, offset int) (Annotation, int) {
	ann := Annotation{}
	if len(info) < offset+4 {
		return ann, len(info)
	}

	ann.TypeIndex = binary.BigEndian.Uint16(info[offset : offset+2])
	numPairs := binary.BigEndian.Uint16(info[offset+2 : offset+4])
	offset += 4

	ann.ElementValuePairs = make([]ElementValuePair, 0, numPairs)
	for i := uint16(0); i < numPairs; i++ {
		if len(info) < offset+2 {
			return ann, len(info)
		}
		pair := ElementValuePair{
			ElementNameIndex: binary.BigEndian.Uint16(info[offset : offset+2]),
		}
		offset += 2
		pair.Value, offset = parseElementValue(info, offset)
		ann.ElementValuePairs = append(ann.ElementValuePairs, pair)
	}

	return ann, offset
}

func parseElementValue(info []byte, offset int) (ElementValue, int) {
	if len(info) <= offset {
		return ElementValue{}, len(info)
	}

	tag := info[offset]
	offset++

	ev := ElementValue{Tag: tag}

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		if len(info) < offset+2 {
			return ev, len(info)
		}
		ev.Value = binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2

	case 'e':
		if len(info) < offset+4 {
			return ev, len(info)
		}
		ev.Value = EnumConstValue{
			TypeNameIndex:  binary.BigEndian.Uint16(info[offset : offset+2]),
			ConstNameIndex: binary.BigEndian.Uint16(info[offset+2 : offset+4]),
		}
		offset += 4

	case '@':
		var ann Annotation
		ann, offset = parseAnnotation(info, offset)
		ev.Value = ann

	case '[':
		if len(info) < offset+2 {
			return ev, len(info)
		}
		numValues := binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2
		values := make([]ElementValue, 0, numValues)
		for i := uint16(0); i < numValues; i++ {
			var v ElementValue
			v, offset = parseElementValue(info, offset)
			values = append(values, v)
		}
		ev.Value = ArrayValue{Values: values}

	default:
		return ev, len(info)
	}

	return ev, offset
}
