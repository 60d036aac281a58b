// Package protocol defines the pluggable wire protocol used by the client
// call pipeline.
//
// A Factory produces a Writer bound to an output buffer and a Reader over a
// received byte range. Every message is an envelope followed by a
// struct-shaped payload:
//
//	┌───────────────────────────┬──────────────────────────────┐
//	│ envelope: name, type, seq │ payload: struct fields ...   │
//	└───────────────────────────┴──────────────────────────────┘
//
// The envelope's message type tells the receiver how to interpret the
// payload: Call/Oneway carry arguments, Reply carries a result struct, and
// Exception carries a standard ApplicationException struct.
//
// Two factories are provided: Binary (the default, big-endian) and JSON
// (type-tagged, human-readable).
package protocol

import "io"

// MessageType distinguishes the four envelope kinds.
type MessageType byte

const (
	MessageCall      MessageType = 1 // Client → Server request expecting a reply
	MessageReply     MessageType = 2 // Server → Client result struct
	MessageException MessageType = 3 // Server → Client ApplicationException frame
	MessageOneway    MessageType = 4 // Client → Server request with no reply
)

// Type identifies the wire type of a field value.
type Type byte

const (
	TypeStop   Type = 0 // Marks the end of a struct's fields
	TypeBool   Type = 2
	TypeByte   Type = 3
	TypeDouble Type = 4
	TypeI16    Type = 6
	TypeI32    Type = 8
	TypeI64    Type = 10
	TypeString Type = 11 // Also used for binary values
	TypeStruct Type = 12
	TypeList   Type = 15
)

// Factory produces protocol writers and readers. Implementations must be
// stateless and safe for concurrent use; all per-message state lives in the
// Writer/Reader instances.
type Factory interface {
	NewWriter(w io.Writer) Writer
	NewReader(data []byte) Reader
}

// Writer serializes one message to an output buffer. A Writer is bound to a
// single output and must not be shared across concurrent encodes.
//
// Call order: WriteMessageBegin, the payload struct, WriteMessageEnd.
// Struct fields are bracketed by WriteFieldBegin/WriteFieldEnd and the field
// list is terminated by WriteFieldStop.
type Writer interface {
	WriteMessageBegin(name string, typ MessageType, seq int32) error
	WriteMessageEnd() error
	WriteStructBegin(name string) error
	WriteStructEnd() error
	WriteFieldBegin(name string, typ Type, id int16) error
	WriteFieldEnd() error
	WriteFieldStop() error
	WriteListBegin(elem Type, size int) error
	WriteListEnd() error
	WriteBool(v bool) error
	WriteByte(v byte) error
	WriteI16(v int16) error
	WriteI32(v int32) error
	WriteI64(v int64) error
	WriteDouble(v float64) error
	WriteString(v string) error
	WriteBinary(v []byte) error
}

// Reader deserializes one message from a received byte range. ReadFieldBegin
// reports TypeStop when the current struct has no more fields; unknown field
// ids must be consumed with Skip so decoders stay compatible with newer
// schemas.
type Reader interface {
	ReadMessageBegin() (name string, typ MessageType, seq int32, err error)
	ReadMessageEnd() error
	ReadStructBegin() error
	ReadStructEnd() error
	ReadFieldBegin() (typ Type, id int16, err error)
	ReadFieldEnd() error
	ReadListBegin() (elem Type, size int, err error)
	ReadListEnd() error
	ReadBool() (bool, error)
	ReadByte() (byte, error)
	ReadI16() (int16, error)
	ReadI32() (int32, error)
	ReadI64() (int64, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)
	Skip(typ Type) error
}
