package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Binary encoding layout, all integers big-endian (network byte order):
//
//	message begin:  uint32 (versionMask | messageType), string name, int32 seq
//	field begin:    1 byte type, int16 id
//	field stop:     1 byte 0x00
//	list begin:     1 byte elem type, int32 size
//	string/binary:  int32 length, length bytes
//	double:         8 bytes IEEE-754 bit pattern
//
// The version word doubles as a magic number: it lets the reader reject
// frames produced by a different protocol or a non-protocol peer outright,
// instead of misparsing them into garbage field ids.
const (
	binaryVersionMask uint32 = 0xffff0000
	binaryVersion     uint32 = 0x80010000
)

// BinaryFactory produces big-endian binary writers and readers. It is the
// default protocol for the call pipeline.
type BinaryFactory struct{}

func NewBinaryFactory() BinaryFactory { return BinaryFactory{} }

func (BinaryFactory) NewWriter(w io.Writer) Writer { return &binaryWriter{w: w} }
func (BinaryFactory) NewReader(data []byte) Reader { return &binaryReader{data: data} }

type binaryWriter struct {
	w       io.Writer
	scratch [8]byte
}

func (p *binaryWriter) WriteMessageBegin(name string, typ MessageType, seq int32) error {
	if err := p.writeUint32(binaryVersion | uint32(typ)); err != nil {
		return err
	}
	if err := p.WriteString(name); err != nil {
		return err
	}
	return p.WriteI32(seq)
}

func (p *binaryWriter) WriteMessageEnd() error { return nil }

func (p *binaryWriter) WriteStructBegin(name string) error { return nil }
func (p *binaryWriter) WriteStructEnd() error              { return nil }

func (p *binaryWriter) WriteFieldBegin(name string, typ Type, id int16) error {
	if err := p.WriteByte(byte(typ)); err != nil {
		return err
	}
	return p.WriteI16(id)
}

func (p *binaryWriter) WriteFieldEnd() error  { return nil }
func (p *binaryWriter) WriteFieldStop() error { return p.WriteByte(byte(TypeStop)) }

func (p *binaryWriter) WriteListBegin(elem Type, size int) error {
	if err := p.WriteByte(byte(elem)); err != nil {
		return err
	}
	return p.WriteI32(int32(size))
}

func (p *binaryWriter) WriteListEnd() error { return nil }

func (p *binaryWriter) WriteBool(v bool) error {
	if v {
		return p.WriteByte(1)
	}
	return p.WriteByte(0)
}

func (p *binaryWriter) WriteByte(v byte) error {
	p.scratch[0] = v
	_, err := p.w.Write(p.scratch[:1])
	return err
}

func (p *binaryWriter) WriteI16(v int16) error {
	binary.BigEndian.PutUint16(p.scratch[:2], uint16(v))
	_, err := p.w.Write(p.scratch[:2])
	return err
}

func (p *binaryWriter) WriteI32(v int32) error { return p.writeUint32(uint32(v)) }

func (p *binaryWriter) WriteI64(v int64) error {
	binary.BigEndian.PutUint64(p.scratch[:8], uint64(v))
	_, err := p.w.Write(p.scratch[:8])
	return err
}

func (p *binaryWriter) WriteDouble(v float64) error {
	binary.BigEndian.PutUint64(p.scratch[:8], math.Float64bits(v))
	_, err := p.w.Write(p.scratch[:8])
	return err
}

func (p *binaryWriter) WriteString(v string) error {
	if err := p.WriteI32(int32(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(p.w, v)
	return err
}

func (p *binaryWriter) WriteBinary(v []byte) error {
	if err := p.WriteI32(int32(len(v))); err != nil {
		return err
	}
	_, err := p.w.Write(v)
	return err
}

func (p *binaryWriter) writeUint32(v uint32) error {
	binary.BigEndian.PutUint32(p.scratch[:4], v)
	_, err := p.w.Write(p.scratch[:4])
	return err
}

type binaryReader struct {
	data []byte
	off  int
}

// next returns the following n bytes of the input, or an error if the
// message is truncated. The returned slice aliases the input.
func (p *binaryReader) next(n int) ([]byte, error) {
	if n < 0 || p.off+n > len(p.data) {
		return nil, fmt.Errorf("protocol: truncated message: need %d bytes at offset %d, have %d", n, p.off, len(p.data)-p.off)
	}
	b := p.data[p.off : p.off+n]
	p.off += n
	return b, nil
}

func (p *binaryReader) ReadMessageBegin() (string, MessageType, int32, error) {
	b, err := p.next(4)
	if err != nil {
		return "", 0, 0, err
	}
	word := binary.BigEndian.Uint32(b)
	// Validate the version word first — reject frames from a different
	// protocol before interpreting any further bytes.
	if word&binaryVersionMask != binaryVersion {
		return "", 0, 0, fmt.Errorf("protocol: bad version word %#08x", word)
	}
	typ := MessageType(word & 0xff)
	if typ < MessageCall || typ > MessageOneway {
		return "", 0, 0, fmt.Errorf("protocol: unknown message type %d", typ)
	}
	name, err := p.ReadString()
	if err != nil {
		return "", 0, 0, err
	}
	seq, err := p.ReadI32()
	if err != nil {
		return "", 0, 0, err
	}
	return name, typ, seq, nil
}

func (p *binaryReader) ReadMessageEnd() error { return nil }

func (p *binaryReader) ReadStructBegin() error { return nil }
func (p *binaryReader) ReadStructEnd() error   { return nil }

func (p *binaryReader) ReadFieldBegin() (Type, int16, error) {
	t, err := p.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	typ := Type(t)
	if typ == TypeStop {
		return TypeStop, 0, nil
	}
	id, err := p.ReadI16()
	if err != nil {
		return 0, 0, err
	}
	return typ, id, nil
}

func (p *binaryReader) ReadFieldEnd() error { return nil }

func (p *binaryReader) ReadListBegin() (Type, int, error) {
	t, err := p.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	size, err := p.ReadI32()
	if err != nil {
		return 0, 0, err
	}
	if size < 0 {
		return 0, 0, fmt.Errorf("protocol: negative list size %d", size)
	}
	return Type(t), int(size), nil
}

func (p *binaryReader) ReadListEnd() error { return nil }

func (p *binaryReader) ReadBool() (bool, error) {
	b, err := p.ReadByte()
	return b != 0, err
}

func (p *binaryReader) ReadByte() (byte, error) {
	b, err := p.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *binaryReader) ReadI16() (int16, error) {
	b, err := p.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (p *binaryReader) ReadI32() (int32, error) {
	b, err := p.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (p *binaryReader) ReadI64() (int64, error) {
	b, err := p.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (p *binaryReader) ReadDouble() (float64, error) {
	b, err := p.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (p *binaryReader) ReadString() (string, error) {
	b, err := p.ReadBinary()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *binaryReader) ReadBinary() ([]byte, error) {
	n, err := p.ReadI32()
	if err != nil {
		return nil, err
	}
	return p.next(int(n))
}

// Skip consumes and discards one value of the given type, recursing into
// structs and lists. Used by decoders to step over unknown field ids.
func (p *binaryReader) Skip(typ Type) error {
	switch typ {
	case TypeBool, TypeByte:
		_, err := p.next(1)
		return err
	case TypeI16:
		_, err := p.next(2)
		return err
	case TypeI32:
		_, err := p.next(4)
		return err
	case TypeI64, TypeDouble:
		_, err := p.next(8)
		return err
	case TypeString:
		_, err := p.ReadBinary()
		return err
	case TypeStruct:
		for {
			ft, _, err := p.ReadFieldBegin()
			if err != nil {
				return err
			}
			if ft == TypeStop {
				return nil
			}
			if err := p.Skip(ft); err != nil {
				return err
			}
		}
	case TypeList:
		elem, size, err := p.ReadListBegin()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := p.Skip(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: cannot skip unknown type %d", typ)
	}
}
