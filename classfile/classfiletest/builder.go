// Package classfiletest assembles class files and archives in memory so
// tests can exercise the loader without binary fixtures.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/dhamidi/tsgen/classfile"
)

// Class describes a class file to assemble. Names use the internal
// (slash separated) form.
type Class struct {
	Name       string
	Super      string // defaults to java/lang/Object
	NoSuper    bool
	Interfaces []string
	Access     classfile.AccessFlags
	Major      uint16 // defaults to 52
	Signature  string
	Fields     []Field
	Methods    []Method
	Longs      []int64 // extra two-slot constants
}

type Field struct {
	Name       string
	Descriptor string
	Signature  string
	Access     classfile.AccessFlags
}

type Method struct {
	Name        string
	Descriptor  string
	Signature   string
	Access      classfile.AccessFlags
	ParamNames  []string // emitted as MethodParameters
	LocalVars   []LocalVar
	Annotations [][]string // per-parameter annotation descriptors
}

type LocalVar struct {
	Name       string
	Descriptor string
	Slot       uint16
}

type pool struct {
	buf   bytes.Buffer
	count uint16
	utf8  map[string]uint16
	class map[string]uint16
}

func newPool() *pool {
	return &pool{count: 1, utf8: map[string]uint16{}, class: map[string]uint16{}}
}

func (p *pool) Utf8(s string) uint16 {
	if idx, ok := p.utf8[s]; ok {
		return idx
	}
	p.buf.WriteByte(byte(classfile.ConstantUtf8))
	writeU2(&p.buf, uint16(len(s)))
	p.buf.WriteString(s)
	idx := p.count
	p.count++
	p.utf8[s] = idx
	return idx
}

func (p *pool) Class(name string) uint16 {
	if idx, ok := p.class[name]; ok {
		return idx
	}
	nameIdx := p.Utf8(name)
	p.buf.WriteByte(byte(classfile.ConstantClass))
	writeU2(&p.buf, nameIdx)
	idx := p.count
	p.count++
	p.class[name] = idx
	return idx
}

func (p *pool) Long(v int64) {
	p.buf.WriteByte(byte(classfile.ConstantLong))
	_ = binary.Write(&p.buf, binary.BigEndian, v)
	p.count += 2
}

func writeU2(buf *bytes.Buffer, v uint16) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeU4(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeAttribute(buf *bytes.Buffer, cp *pool, name string, body []byte) {
	writeU2(buf, cp.Utf8(name))
	writeU4(buf, uint32(len(body)))
	buf.Write(body)
}

// Bytes assembles the class file.
func (c *Class) Bytes() []byte {
	cp := newPool()
	for _, v := range c.Longs {
		cp.Long(v)
	}

	var body bytes.Buffer
	writeU2(&body, uint16(c.Access))
	writeU2(&body, cp.Class(c.Name))
	switch {
	case c.NoSuper:
		writeU2(&body, 0)
	case c.Super != "":
		writeU2(&body, cp.Class(c.Super))
	default:
		writeU2(&body, cp.Class("java/lang/Object"))
	}
	writeU2(&body, uint16(len(c.Interfaces)))
	for _, iface := range c.Interfaces {
		writeU2(&body, cp.Class(iface))
	}

	writeU2(&body, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		writeU2(&body, uint16(f.Access))
		writeU2(&body, cp.Utf8(f.Name))
		writeU2(&body, cp.Utf8(f.Descriptor))
		if f.Signature == "" {
			writeU2(&body, 0)
			continue
		}
		writeU2(&body, 1)
		writeAttribute(&body, cp, "Signature", u2(cp.Utf8(f.Signature)))
	}

	writeU2(&body, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		writeMethod(&body, cp, m)
	}

	if c.Signature == "" {
		writeU2(&body, 0)
	} else {
		writeU2(&body, 1)
		writeAttribute(&body, cp, "Signature", u2(cp.Utf8(c.Signature)))
	}

	major := c.Major
	if major == 0 {
		major = 52
	}

	var out bytes.Buffer
	writeU4(&out, classfile.Magic)
	writeU2(&out, 0)
	writeU2(&out, major)
	writeU2(&out, cp.count)
	out.Write(cp.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeMethod(body *bytes.Buffer, cp *pool, m Method) {
	writeU2(body, uint16(m.Access))
	writeU2(body, cp.Utf8(m.Name))
	writeU2(body, cp.Utf8(m.Descriptor))

	var attrs bytes.Buffer
	count := uint16(0)
	if m.Signature != "" {
		writeAttribute(&attrs, cp, "Signature", u2(cp.Utf8(m.Signature)))
		count++
	}
	if len(m.ParamNames) > 0 {
		var mp bytes.Buffer
		mp.WriteByte(byte(len(m.ParamNames)))
		for _, name := range m.ParamNames {
			writeU2(&mp, cp.Utf8(name))
			writeU2(&mp, 0)
		}
		writeAttribute(&attrs, cp, "MethodParameters", mp.Bytes())
		count++
	}
	if len(m.LocalVars) > 0 {
		var lvt bytes.Buffer
		writeU2(&lvt, uint16(len(m.LocalVars)))
		for _, lv := range m.LocalVars {
			writeU2(&lvt, 0)
			writeU2(&lvt, 1)
			writeU2(&lvt, cp.Utf8(lv.Name))
			writeU2(&lvt, cp.Utf8(lv.Descriptor))
			writeU2(&lvt, lv.Slot)
		}
		var code bytes.Buffer
		writeU2(&code, 0)
		writeU2(&code, uint16(len(m.LocalVars)+2))
		writeU4(&code, 1)
		code.WriteByte(0xb1) // return
		writeU2(&code, 0)
		writeU2(&code, 1)
		writeAttribute(&code, cp, "LocalVariableTable", lvt.Bytes())
		writeAttribute(&attrs, cp, "Code", code.Bytes())
		count++
	}
	if len(m.Annotations) > 0 {
		var pa bytes.Buffer
		pa.WriteByte(byte(len(m.Annotations)))
		for _, anns := range m.Annotations {
			writeU2(&pa, uint16(len(anns)))
			for _, desc := range anns {
				writeU2(&pa, cp.Utf8(desc))
				writeU2(&pa, 0)
			}
		}
		writeAttribute(&attrs, cp, "RuntimeInvisibleParameterAnnotations", pa.Bytes())
		count++
	}

	writeU2(body, count)
	body.Write(attrs.Bytes())
}

func u2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// WriteJar writes an archive at path containing each class under its
// internal name plus any extra raw entries.
func WriteJar(path string, classes []*Class, extra map[string][]byte) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("META-INF/"); err != nil {
		return err
	}
	for _, c := range classes {
		w, err := zw.Create(c.Name + ".class")
		if err != nil {
			return err
		}
		if _, err := w.Write(c.Bytes()); err != nil {
			return err
		}
	}
	for name, data := range extra {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteJmod writes a JDK module file: a four byte header followed by a zip
// archive with classes stored under classes/.
func WriteJmod(path string, classes []*Class) error {
	var buf bytes.Buffer
	buf.WriteString("JM\x01\x00")
	zw := zip.NewWriter(&buf)
	for _, c := range classes {
		w, err := zw.Create("classes/" + c.Name + ".class")
		if err != nil {
			return err
		}
		if _, err := w.Write(c.Bytes()); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
