package protocol

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// JSON encoding: the envelope is an array, struct fields are keyed by field
// id with the value wrapped in a one-entry type-tag object, and binary
// values are base64 strings:
//
//	["log",1,0,{"1":{"str":"hi"},"2":{"i32":1}}]
//
// Lists carry their element type and size ahead of the elements:
//
//	{"lst":["i32",3,1,2,3]}
//
// Slower and larger than the binary protocol, but greppable; meant for
// debugging and for peers that cannot speak binary.
type JSONFactory struct{}

func NewJSONFactory() JSONFactory { return JSONFactory{} }

func (JSONFactory) NewWriter(w io.Writer) Writer { return &jsonWriter{w: w} }
func (JSONFactory) NewReader(data []byte) Reader {
	return &jsonReader{l: jlexer.Lexer{Data: data}}
}

var jsonTypeNames = map[Type]string{
	TypeBool:   "tf",
	TypeByte:   "i8",
	TypeI16:    "i16",
	TypeI32:    "i32",
	TypeI64:    "i64",
	TypeDouble: "dbl",
	TypeString: "str",
	TypeStruct: "rec",
	TypeList:   "lst",
}

var jsonTypesByName = func() map[string]Type {
	m := make(map[string]Type, len(jsonTypeNames))
	for t, n := range jsonTypeNames {
		m[n] = t
	}
	return m
}()

// jsonCtx tracks comma placement per nesting level: list elements always
// need a leading comma (the element type and size precede them), struct
// fields need one from the second field on.
type jsonCtx struct {
	list   bool
	fields int
}

type jsonWriter struct {
	w     io.Writer
	out   jwriter.Writer
	stack []jsonCtx
}

func (p *jsonWriter) top() *jsonCtx {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// beforeValue emits the separating comma for list elements. Field values
// follow a colon and need none.
func (p *jsonWriter) beforeValue() {
	if t := p.top(); t != nil && t.list {
		p.out.RawByte(',')
	}
}

func (p *jsonWriter) WriteMessageBegin(name string, typ MessageType, seq int32) error {
	p.out.RawByte('[')
	p.out.String(name)
	p.out.RawByte(',')
	p.out.Int32(int32(typ))
	p.out.RawByte(',')
	p.out.Int32(seq)
	p.out.RawByte(',')
	return p.out.Error
}

// WriteMessageEnd closes the envelope and flushes the buffered output.
func (p *jsonWriter) WriteMessageEnd() error {
	p.out.RawByte(']')
	if p.out.Error != nil {
		return p.out.Error
	}
	_, err := p.out.DumpTo(p.w)
	return err
}

func (p *jsonWriter) WriteStructBegin(name string) error {
	p.beforeValue()
	p.stack = append(p.stack, jsonCtx{})
	p.out.RawByte('{')
	return p.out.Error
}

func (p *jsonWriter) WriteStructEnd() error {
	p.stack = p.stack[:len(p.stack)-1]
	p.out.RawByte('}')
	return p.out.Error
}

func (p *jsonWriter) WriteFieldBegin(name string, typ Type, id int16) error {
	tag, ok := jsonTypeNames[typ]
	if !ok {
		return fmt.Errorf("protocol: no JSON encoding for type %d", typ)
	}
	if t := p.top(); t != nil {
		if t.fields > 0 {
			p.out.RawByte(',')
		}
		t.fields++
	}
	p.out.String(strconv.Itoa(int(id)))
	p.out.RawByte(':')
	p.out.RawByte('{')
	p.out.String(tag)
	p.out.RawByte(':')
	return p.out.Error
}

func (p *jsonWriter) WriteFieldEnd() error {
	p.out.RawByte('}')
	return p.out.Error
}

func (p *jsonWriter) WriteFieldStop() error { return nil }

func (p *jsonWriter) WriteListBegin(elem Type, size int) error {
	tag, ok := jsonTypeNames[elem]
	if !ok {
		return fmt.Errorf("protocol: no JSON encoding for type %d", elem)
	}
	p.beforeValue()
	p.stack = append(p.stack, jsonCtx{list: true})
	p.out.RawByte('[')
	p.out.String(tag)
	p.out.RawByte(',')
	p.out.Int32(int32(size))
	return p.out.Error
}

func (p *jsonWriter) WriteListEnd() error {
	p.stack = p.stack[:len(p.stack)-1]
	p.out.RawByte(']')
	return p.out.Error
}

func (p *jsonWriter) WriteBool(v bool) error {
	p.beforeValue()
	p.out.Bool(v)
	return p.out.Error
}

func (p *jsonWriter) WriteByte(v byte) error {
	p.beforeValue()
	p.out.Uint8(v)
	return p.out.Error
}

func (p *jsonWriter) WriteI16(v int16) error {
	p.beforeValue()
	p.out.Int16(v)
	return p.out.Error
}

func (p *jsonWriter) WriteI32(v int32) error {
	p.beforeValue()
	p.out.Int32(v)
	return p.out.Error
}

func (p *jsonWriter) WriteI64(v int64) error {
	p.beforeValue()
	p.out.Int64(v)
	return p.out.Error
}

func (p *jsonWriter) WriteDouble(v float64) error {
	p.beforeValue()
	p.out.Float64(v)
	return p.out.Error
}

func (p *jsonWriter) WriteString(v string) error {
	p.beforeValue()
	p.out.String(v)
	return p.out.Error
}

func (p *jsonWriter) WriteBinary(v []byte) error {
	p.beforeValue()
	p.out.Base64Bytes(v)
	return p.out.Error
}

type jsonReader struct {
	l     jlexer.Lexer
	stack []bool // true per level that is a list
}

// beforeValue consumes the separating comma ahead of a list element.
func (p *jsonReader) beforeValue() {
	if n := len(p.stack); n > 0 && p.stack[n-1] {
		p.l.WantComma()
	}
}

func (p *jsonReader) ReadMessageBegin() (string, MessageType, int32, error) {
	p.l.Delim('[')
	name := p.l.String()
	p.l.WantComma()
	typ := MessageType(p.l.Int32())
	p.l.WantComma()
	seq := p.l.Int32()
	p.l.WantComma()
	if err := p.l.Error(); err != nil {
		return "", 0, 0, err
	}
	if typ < MessageCall || typ > MessageOneway {
		return "", 0, 0, fmt.Errorf("protocol: unknown message type %d", typ)
	}
	return name, typ, seq, nil
}

func (p *jsonReader) ReadMessageEnd() error {
	p.l.Delim(']')
	return p.l.Error()
}

func (p *jsonReader) ReadStructBegin() error {
	p.beforeValue()
	p.stack = append(p.stack, false)
	p.l.Delim('{')
	return p.l.Error()
}

func (p *jsonReader) ReadStructEnd() error {
	p.stack = p.stack[:len(p.stack)-1]
	p.l.Delim('}')
	return p.l.Error()
}

func (p *jsonReader) ReadFieldBegin() (Type, int16, error) {
	if p.l.IsDelim('}') {
		return TypeStop, 0, p.l.Error()
	}
	key := p.l.String()
	p.l.WantColon()
	p.l.Delim('{')
	tag := p.l.String()
	p.l.WantColon()
	if err := p.l.Error(); err != nil {
		return 0, 0, err
	}
	typ, ok := jsonTypesByName[tag]
	if !ok {
		return 0, 0, fmt.Errorf("protocol: unknown JSON type tag %q", tag)
	}
	id, err := strconv.ParseInt(key, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("protocol: bad field id %q: %w", key, err)
	}
	return typ, int16(id), nil
}

func (p *jsonReader) ReadFieldEnd() error {
	p.l.Delim('}')
	p.l.WantComma()
	return p.l.Error()
}

func (p *jsonReader) ReadListBegin() (Type, int, error) {
	p.beforeValue()
	p.stack = append(p.stack, true)
	p.l.Delim('[')
	tag := p.l.String()
	p.l.WantComma()
	size := p.l.Int()
	if err := p.l.Error(); err != nil {
		return 0, 0, err
	}
	typ, ok := jsonTypesByName[tag]
	if !ok {
		return 0, 0, fmt.Errorf("protocol: unknown JSON type tag %q", tag)
	}
	if size < 0 {
		return 0, 0, fmt.Errorf("protocol: negative list size %d", size)
	}
	return typ, size, nil
}

func (p *jsonReader) ReadListEnd() error {
	p.stack = p.stack[:len(p.stack)-1]
	p.l.Delim(']')
	return p.l.Error()
}

func (p *jsonReader) ReadBool() (bool, error) {
	p.beforeValue()
	return p.l.Bool(), p.l.Error()
}

func (p *jsonReader) ReadByte() (byte, error) {
	p.beforeValue()
	return p.l.Uint8(), p.l.Error()
}

func (p *jsonReader) ReadI16() (int16, error) {
	p.beforeValue()
	return p.l.Int16(), p.l.Error()
}

func (p *jsonReader) ReadI32() (int32, error) {
	p.beforeValue()
	return p.l.Int32(), p.l.Error()
}

func (p *jsonReader) ReadI64() (int64, error) {
	p.beforeValue()
	return p.l.Int64(), p.l.Error()
}

func (p *jsonReader) ReadDouble() (float64, error) {
	p.beforeValue()
	return p.l.Float64(), p.l.Error()
}

func (p *jsonReader) ReadString() (string, error) {
	p.beforeValue()
	return p.l.String(), p.l.Error()
}

func (p *jsonReader) ReadBinary() ([]byte, error) {
	p.beforeValue()
	return p.l.Bytes(), p.l.Error()
}

// Skip discards the next value; SkipRecursive handles nested objects and
// arrays, so the declared type is only needed by the binary reader.
func (p *jsonReader) Skip(typ Type) error {
	p.beforeValue()
	p.l.SkipRecursive()
	return p.l.Error()
}
