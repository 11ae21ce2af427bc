package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) Signature(cp ConstantPool) string {
	return signatureOf(m.Attributes, cp)
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(m.Attributes, cp, name)
}

// LocalVariableTable returns the debug table nested in the Code attribute,
// if the class was compiled with -g.
func (m *MethodInfo) LocalVariableTable(cp ConstantPool) *LocalVariableTableAttribute {
	attr := m.GetAttribute(cp, "Code")
	if attr == nil {
		return nil
	}
	code := attr.AsCode()
	if code == nil {
		return nil
	}
	for i := range code.Attributes {
		if lvt := code.Attributes[i].AsLocalVariableTable(); lvt != nil {
			return lvt
		}
	}
	return nil
}

func (m *MethodInfo) MethodParameters(cp ConstantPool) *MethodParametersAttribute {
	attr := m.GetAttribute(cp, "MethodParameters")
	if attr == nil {
		return nil
	}
	return attr.AsMethodParameters()
}

// ParameterAnnotations merges the visible and invisible parameter
// annotation tables. The result is indexed by parameter position.
func (m *MethodInfo) ParameterAnnotations(cp ConstantPool) [][]Annotation {
	var merged [][]Annotation
	for _, name := range []string{"RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations"} {
		attr := m.GetAttribute(cp, name)
		if attr == nil {
			continue
		}
		pa := attr.AsParameterAnnotations()
		if pa == nil {
			continue
		}
		for len(merged) < len(pa.ParameterAnnotations) {
			merged = append(merged, nil)
		}
		for i, anns := range pa.ParameterAnnotations {
			merged[i] = append(merged[i], anns...)
		}
	}
	return merged
}

func (m *MethodInfo) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *MethodInfo) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsBridge() bool    { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool   { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsSynthetic() bool { return m.AccessFlags.IsSynthetic() }

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

func (m *MethodInfo) ParsedDescriptor(cp ConstantPool) *MethodDescriptor {
	return ParseMethodDescriptor(m.Descriptor(cp))
}
