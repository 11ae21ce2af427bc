package classfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// ErrMalformed marks every parse failure caused by the class bytes rather
// than by the underlying reader.
var ErrMalformed = errors.New("malformed class file")

const maxAttributeLength = 1 << 26

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

// fail wraps the sticky read error. A short read means the class bytes
// are truncated and is reported as malformed.
func (r *reader) fail(what string) error {
	if errors.Is(r.err, io.EOF) || errors.Is(r.err, io.ErrUnexpectedEOF) {
		return errors.Mark(errors.Wrapf(r.err, "truncated %s", what), ErrMalformed)
	}
	return errors.Wrapf(r.err, "failed to read %s", what)
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open class file")
	}
	defer f.Close()
	return Parse(f)
}

func ParseBytes(data []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(data))
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, r.fail("magic")
	}
	if magic != Magic {
		return nil, errors.Mark(errors.Newf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic), ErrMalformed)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, r.fail("version")
	}

	constantPoolCount := r.readU2()
	if r.err != nil {
		return nil, r.fail("constant pool count")
	}
	if constantPoolCount == 0 {
		return nil, errors.Mark(errors.New("constant pool count is zero"), ErrMalformed)
	}

	cf.ConstantPool = make(ConstantPool, constantPoolCount-1)
	for i := uint16(1); i < constantPoolCount; i++ {
		entry, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, errors.Wrapf(err, "constant pool entry %d", i)
		}
		cf.ConstantPool[i-1] = entry
		if entry.Tag().IsWide() {
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()

	interfacesCount := r.readU2()
	cf.Interfaces = make([]uint16, 0, interfacesCount)
	for i := uint16(0); i < interfacesCount && r.err == nil; i++ {
		cf.Interfaces = append(cf.Interfaces, r.readU2())
	}
	if r.err != nil {
		return nil, r.fail("class header")
	}

	fieldsCount := r.readU2()
	cf.Fields = make([]FieldInfo, 0, fieldsCount)
	for i := uint16(0); i < fieldsCount; i++ {
		access, name, desc := r.readU2(), r.readU2(), r.readU2()
		attrs, err := readAttributes(r, cf.ConstantPool)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i)
		}
		cf.Fields = append(cf.Fields, FieldInfo{
			AccessFlags:     AccessFlags(access),
			NameIndex:       name,
			DescriptorIndex: desc,
			Attributes:      attrs,
		})
	}

	methodsCount := r.readU2()
	cf.Methods = make([]MethodInfo, 0, methodsCount)
	for i := uint16(0); i < methodsCount; i++ {
		access, name, desc := r.readU2(), r.readU2(), r.readU2()
		attrs, err := readAttributes(r, cf.ConstantPool)
		if err != nil {
			return nil, errors.Wrapf(err, "method %d", i)
		}
		cf.Methods = append(cf.Methods, MethodInfo{
			AccessFlags:     AccessFlags(access),
			NameIndex:       name,
			DescriptorIndex: desc,
			Attributes:      attrs,
		})
	}

	attrs, err := readAttributes(r, cf.ConstantPool)
	if err != nil {
		return nil, errors.Wrap(err, "class attributes")
	}
	cf.Attributes = attrs

	return cf, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.fail("constant tag")
	}

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		data := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.fail("utf8 constant")
		}
		return &ConstantUtf8Info{Value: decodeModifiedUtf8(data)}, nil

	case ConstantClass:
		nameIndex := r.readU2()
		if r.err != nil {
			return nil, r.fail("class constant")
		}
		return &ConstantClassInfo{NameIndex: nameIndex}, nil
	}

	size, ok := tag.payloadSize()
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown constant pool tag: %d", tag), ErrMalformed)
	}
	r.readBytes(size)
	if r.err != nil {
		return nil, r.fail("constant")
	}
	return &ConstantOpaqueInfo{Kind: tag}, nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.fail("attribute count")
	}

	attrs := make([]AttributeInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex := r.readU2()
		length := r.readU4()
		if length > maxAttributeLength {
			return nil, errors.Mark(errors.Newf("attribute %d too large: %d bytes", i, length), ErrMalformed)
		}
		info := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.fail("attribute")
		}
		attrs = append(attrs, AttributeInfo{
			NameIndex: nameIndex,
			Info:      info,
			Parsed:    parseAttribute(cp.GetUtf8(nameIndex), info, cp),
		})
	}
	return attrs, nil
}

func decodeModifiedUtf8(data []byte) string {
	runes := make([]rune, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0 && i+1 < len(data):
			runes = append(runes, rune(b&0x1F)<<6|rune(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0 && i+2 < len(data):
			r := rune(b&0x0F)<<12 | rune(data[i+1]&0x3F)<<6 | rune(data[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(data) && data[i+3] == 0xED {
				low := rune(data[i+3]&0x0F)<<12 | rune(data[i+4]&0x3F)<<6 | rune(data[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
