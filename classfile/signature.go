package classfile

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeSignature is one reference or primitive type from a generic
// signature. Exactly one of BaseType, ClassName and TypeVariable is set.
type TypeSignature struct {
	BaseType     string
	ClassName    string // internal form; nested classes joined with '$'
	TypeVariable string
	ArrayDepth   int
	TypeArgs     []TypeArgument
}

// Wildcard indicators of a TypeArgument.
const (
	WildcardNone    byte = 0
	WildcardAny     byte = '*'
	WildcardExtends byte = '+'
	WildcardSuper   byte = '-'
)

type TypeArgument struct {
	Wildcard byte
	Type     *TypeSignature // nil for WildcardAny
}

type ClassSignature struct {
	SuperClass *TypeSignature
	Interfaces []TypeSignature
}

type MethodSignature struct {
	Parameters []TypeSignature
	ReturnType *TypeSignature // nil for void
}

func ParseClassSignature(s string) (*ClassSignature, error) {
	p := &sigParser{s: s}
	p.skipTypeParameters()
	cs := &ClassSignature{SuperClass: p.classType()}
	for p.err == nil && !p.done() {
		iface := p.classType()
		if iface != nil {
			cs.Interfaces = append(cs.Interfaces, *iface)
		}
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "class signature %q", s)
	}
	return cs, nil
}

func ParseMethodSignature(s string) (*MethodSignature, error) {
	p := &sigParser{s: s}
	p.skipTypeParameters()
	p.expect('(')
	ms := &MethodSignature{}
	for p.err == nil && p.peek() != ')' {
		t := p.javaType()
		if t != nil {
			ms.Parameters = append(ms.Parameters, *t)
		}
	}
	p.expect(')')
	if p.peek() == 'V' {
		p.pos++
	} else {
		ms.ReturnType = p.javaType()
	}
	// throws clauses carry nothing the generator uses
	for p.err == nil && p.peek() == '^' {
		p.pos++
		p.referenceType()
	}
	if p.err == nil && !p.done() {
		p.fail("trailing characters")
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "method signature %q", s)
	}
	return ms, nil
}

func ParseFieldSignature(s string) (*TypeSignature, error) {
	p := &sigParser{s: s}
	t := p.referenceType()
	if p.err == nil && !p.done() {
		p.fail("trailing characters")
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "field signature %q", s)
	}
	return t, nil
}

type sigParser struct {
	s   string
	pos int
	err error
}

func (p *sigParser) done() bool {
	return p.pos >= len(p.s)
}

func (p *sigParser) peek() byte {
	if p.err != nil || p.done() {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) fail(msg string) {
	if p.err == nil {
		p.err = errors.Mark(errors.Newf("%s at offset %d", msg, p.pos), ErrMalformed)
	}
}

func (p *sigParser) expect(c byte) {
	if p.peek() != c {
		p.fail("expected '" + string(c) + "'")
		return
	}
	p.pos++
}

func (p *sigParser) identifier() string {
	start := p.pos
	for !p.done() && !strings.ContainsRune(".;[/<>:", rune(p.s[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		p.fail("expected identifier")
	}
	return p.s[start:p.pos]
}

func (p *sigParser) skipTypeParameters() {
	if p.peek() != '<' {
		return
	}
	p.pos++
	for p.err == nil && p.peek() != '>' {
		p.identifier()
		p.expect(':')
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			p.referenceType()
		}
		for p.err == nil && p.peek() == ':' {
			p.pos++
			p.referenceType()
		}
	}
	p.expect('>')
}

func (p *sigParser) javaType() *TypeSignature {
	if base, ok := baseTypes[p.peek()]; ok {
		p.pos++
		return &TypeSignature{BaseType: base}
	}
	return p.referenceType()
}

func (p *sigParser) referenceType() *TypeSignature {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		p.pos++
		name := p.identifier()
		p.expect(';')
		return &TypeSignature{TypeVariable: name}
	case '[':
		p.pos++
		elem := p.javaType()
		if elem == nil {
			return nil
		}
		elem.ArrayDepth++
		return elem
	}
	p.fail("expected reference type")
	return nil
}

func (p *sigParser) classType() *TypeSignature {
	p.expect('L')
	if p.err != nil {
		return nil
	}
	var name strings.Builder
	for p.err == nil {
		name.WriteString(p.identifier())
		if p.peek() != '/' {
			break
		}
		name.WriteByte('/')
		p.pos++
	}
	t := &TypeSignature{}
	t.TypeArgs = p.typeArguments()
	for p.err == nil && p.peek() == '.' {
		p.pos++
		name.WriteByte('$')
		name.WriteString(p.identifier())
		t.TypeArgs = p.typeArguments()
	}
	p.expect(';')
	if p.err != nil {
		return nil
	}
	t.ClassName = name.String()
	return t
}

func (p *sigParser) typeArguments() []TypeArgument {
	if p.peek() != '<' {
		return nil
	}
	p.pos++
	var args []TypeArgument
	for p.err == nil && p.peek() != '>' {
		switch c := p.peek(); c {
		case WildcardAny:
			p.pos++
			args = append(args, TypeArgument{Wildcard: WildcardAny})
		case WildcardExtends, WildcardSuper:
			p.pos++
			args = append(args, TypeArgument{Wildcard: c, Type: p.referenceType()})
		default:
			args = append(args, TypeArgument{Type: p.referenceType()})
		}
	}
	p.expect('>')
	return args
}
