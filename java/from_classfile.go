package java

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tsgen/classfile"
)

var log = commonlog.GetLogger("tsgen.java")

func DescriptorFromReader(r io.Reader) (*TypeDescriptor, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return DescriptorFromClassFile(cf)
}

// DescriptorFromClassFile builds the declared view of a class file.
// Inherited members and the companion are left for the loader to fill in.
func DescriptorFromClassFile(cf *classfile.ClassFile) (*TypeDescriptor, error) {
	internal := cf.ClassName()
	if internal == "" {
		return nil, errors.Mark(errors.New("class file has no this_class name"), classfile.ErrMalformed)
	}
	if cf.IsModule() {
		return nil, errors.Mark(errors.Newf("%s is a module descriptor", internal), classfile.ErrMalformed)
	}

	name := classfile.InternalToSourceName(internal)
	pkg, simpleName := SplitClassName(name)

	td := &TypeDescriptor{
		Name:         name,
		Package:      pkg,
		SimpleName:   simpleName,
		Kind:         kindFromClassFile(cf),
		Visibility:   visibilityFromAccessFlags(cf.AccessFlags),
		IsFinal:      cf.AccessFlags.IsFinal(),
		IsAbstract:   cf.AccessFlags.IsAbstract(),
		IsSynthetic:  cf.AccessFlags.IsSynthetic(),
		IsCompanion:  strings.HasSuffix(simpleName, "$Companion"),
		MajorVersion: cf.MajorVersion,
	}

	var sig *classfile.ClassSignature
	if raw := cf.Signature(); raw != "" {
		parsed, err := classfile.ParseClassSignature(raw)
		if err != nil {
			log.Debugf("%s: ignoring class signature: %s", name, err)
		} else {
			sig = parsed
		}
	}

	if super := cf.SuperClassName(); super != "" && !cf.AccessFlags.IsInterface() {
		ref := TypeRef{Name: classfile.InternalToSourceName(super)}
		if sig != nil && sig.SuperClass != nil {
			ref = withTypeArgs(ref, sig.SuperClass)
		}
		td.SuperClass = &ref
	}

	ifaces := cf.InterfaceNames()
	for i, iface := range ifaces {
		ref := TypeRef{Name: classfile.InternalToSourceName(iface)}
		if sig != nil && len(sig.Interfaces) == len(ifaces) {
			ref = withTypeArgs(ref, &sig.Interfaces[i])
		}
		td.Interfaces = append(td.Interfaces, ref)
	}

	for i := range cf.Fields {
		field := &cf.Fields[i]
		fs, ok := fieldFromFieldInfo(name, field, cf.ConstantPool)
		if !ok {
			continue
		}
		td.Fields = append(td.Fields, fs)
		if fs.IsEnumConstant {
			td.EnumConstants = append(td.EnumConstants, fs.Name)
		}
	}

	for i := range cf.Methods {
		method := &cf.Methods[i]
		if method.IsStaticInitializer(cf.ConstantPool) {
			continue
		}
		ms, ok := memberFromMethodInfo(name, method, cf.ConstantPool)
		if !ok {
			continue
		}
		if method.IsConstructor(cf.ConstantPool) {
			td.Constructors = append(td.Constructors, ms)
		} else {
			td.Methods = append(td.Methods, ms)
		}
	}

	return td, nil
}

func visibilityFromAccessFlags(flags classfile.AccessFlags) Visibility {
	if flags.IsPublic() {
		return VisibilityPublic
	}
	if flags.IsProtected() {
		return VisibilityProtected
	}
	if flags.IsPrivate() {
		return VisibilityPrivate
	}
	return VisibilityPackage
}

func kindFromClassFile(cf *classfile.ClassFile) Kind {
	if cf.IsAnnotation() {
		return KindAnnotation
	}
	if cf.IsEnum() {
		return KindEnum
	}
	if cf.IsInterface() {
		return KindInterface
	}
	return KindClass
}

func fieldFromFieldInfo(owner string, f *classfile.FieldInfo, cp classfile.ConstantPool) (FieldSignature, bool) {
	desc := f.ParsedDescriptor(cp)
	if desc == nil {
		log.Debugf("%s: skipping field with bad descriptor %q", owner, f.Descriptor(cp))
		return FieldSignature{}, false
	}
	ref := typeRefFromFieldType(desc)
	if raw := f.Signature(cp); raw != "" {
		if sig, err := classfile.ParseFieldSignature(raw); err == nil {
			ref = withTypeArgs(ref, sig)
		}
	}
	return FieldSignature{
		Owner:          owner,
		Name:           f.Name(cp),
		Type:           ref,
		Visibility:     visibilityFromAccessFlags(f.AccessFlags),
		IsStatic:       f.IsStatic(),
		IsSynthetic:    f.IsSynthetic(),
		IsEnumConstant: f.IsEnum(),
	}, true
}

func memberFromMethodInfo(owner string, m *classfile.MethodInfo, cp classfile.ConstantPool) (MemberSignature, bool) {
	desc := m.ParsedDescriptor(cp)
	if desc == nil {
		log.Debugf("%s: skipping method %s with bad descriptor %q", owner, m.Name(cp), m.Descriptor(cp))
		return MemberSignature{}, false
	}

	ms := MemberSignature{
		Owner:       owner,
		Name:        m.Name(cp),
		Descriptor:  m.Descriptor(cp),
		Visibility:  visibilityFromAccessFlags(m.AccessFlags),
		IsStatic:    m.IsStatic(),
		IsAbstract:  m.AccessFlags.IsAbstract(),
		IsSynthetic: m.IsSynthetic(),
		IsBridge:    m.IsBridge(),
		IsVarargs:   m.IsVarargs(),
	}

	var sig *classfile.MethodSignature
	if raw := m.Signature(cp); raw != "" {
		parsed, err := classfile.ParseMethodSignature(raw)
		if err != nil {
			log.Debugf("%s.%s: ignoring method signature: %s", owner, ms.Name, err)
		} else {
			sig = parsed
		}
	}

	ms.Parameters = make([]Parameter, len(desc.Parameters))
	for i := range desc.Parameters {
		ref := typeRefFromFieldType(&desc.Parameters[i])
		if sig != nil && len(sig.Parameters) == len(desc.Parameters) {
			ref = withTypeArgs(ref, &sig.Parameters[i])
		}
		ms.Parameters[i] = Parameter{Type: ref}
	}
	populateParameters(ms.Parameters, desc, m, cp)

	if !m.IsConstructor(cp) {
		ret := TypeRef{Name: "void"}
		if desc.ReturnType != nil {
			ret = typeRefFromFieldType(desc.ReturnType)
			if sig != nil && sig.ReturnType != nil {
				ret = withTypeArgs(ret, sig.ReturnType)
			}
		}
		ms.ReturnType = &ret
	}

	return ms, true
}

func typeRefFromFieldType(ft *classfile.FieldType) TypeRef {
	return TypeRef{Name: ft.SourceName(), ArrayDepth: ft.ArrayDepth}
}

// withTypeArgs attaches the first level of generic arguments from sig when
// sig describes the same erased type as ref.
func withTypeArgs(ref TypeRef, sig *classfile.TypeSignature) TypeRef {
	if sig == nil || sig.ClassName == "" || sig.ArrayDepth != ref.ArrayDepth {
		return ref
	}
	if classfile.InternalToSourceName(sig.ClassName) != ref.Name {
		return ref
	}
	for _, arg := range sig.TypeArgs {
		ref.TypeArgs = append(ref.TypeArgs, typeArgRef(arg))
	}
	return ref
}

// typeArgRef erases a type argument to a plain reference. Type variables
// and unbounded wildcards become java.lang.Object; bounded wildcards
// become their bound.
func typeArgRef(arg classfile.TypeArgument) TypeRef {
	t := arg.Type
	if arg.Wildcard == classfile.WildcardAny || t == nil {
		return TypeRef{Name: ObjectType}
	}
	switch {
	case t.TypeVariable != "":
		return TypeRef{Name: ObjectType, ArrayDepth: t.ArrayDepth}
	case t.BaseType != "":
		return TypeRef{Name: t.BaseType, ArrayDepth: t.ArrayDepth}
	}
	return TypeRef{Name: classfile.InternalToSourceName(t.ClassName), ArrayDepth: t.ArrayDepth}
}
