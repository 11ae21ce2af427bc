package java

import (
	"fmt"
	"strings"

	"github.com/dhamidi/tsgen/classfile"
)

// populateParameters fills in names and optionality. Names come from
// MethodParameters when present, then from the LocalVariableTable, and
// default to argN.
func populateParameters(params []Parameter, desc *classfile.MethodDescriptor, m *classfile.MethodInfo, cp classfile.ConstantPool) {
	for i := range params {
		params[i].Name = fmt.Sprintf("arg%d", i)
	}

	if mp := m.MethodParameters(cp); mp != nil && len(mp.Parameters) == len(params) {
		for i, p := range mp.Parameters {
			if name := cp.GetUtf8(p.NameIndex); name != "" {
				params[i].Name = name
			}
		}
	} else if lvt := m.LocalVariableTable(cp); lvt != nil {
		bySlot := make(map[uint16]string, len(lvt.LocalVariableTable))
		for _, entry := range lvt.LocalVariableTable {
			if entry.StartPC != 0 {
				continue
			}
			bySlot[entry.Index] = cp.GetUtf8(entry.NameIndex)
		}
		slot := uint16(0)
		if !m.IsStatic() {
			slot = 1
		}
		for i := range params {
			if name := bySlot[slot]; name != "" {
				params[i].Name = name
			}
			slot += uint16(desc.Parameters[i].Slots())
		}
	}

	// javac may omit synthetic leading parameters from the annotation
	// table, so align it to the end of the list.
	anns := m.ParameterAnnotations(cp)
	offset := len(params) - len(anns)
	if offset < 0 {
		return
	}
	for i, list := range anns {
		for _, ann := range list {
			if isNullable(ann.TypeName(cp)) {
				params[offset+i].Optional = true
			}
		}
	}
}

// isNullable matches any annotation whose simple name is Nullable,
// whatever package it comes from.
func isNullable(descriptor string) bool {
	name := strings.TrimSuffix(strings.TrimPrefix(descriptor, "L"), ";")
	if i := strings.LastIndexAny(name, "/$"); i >= 0 {
		name = name[i+1:]
	}
	return name == "Nullable"
}
