package protocol

import "fmt"

// Exception codes carried by ApplicationException frames. These mirror the
// codes servers conventionally use; Unknown is the catch-all.
const (
	ExceptionUnknown            int32 = 0
	ExceptionUnknownMethod      int32 = 1
	ExceptionInvalidMessageType int32 = 2
	ExceptionWrongMethodName    int32 = 3
	ExceptionBadSequenceID      int32 = 4
	ExceptionMissingResult      int32 = 5
	ExceptionInternalError      int32 = 6
	ExceptionProtocolError      int32 = 7
)

// ApplicationException is the standard exception struct a server sends in
// an envelope of type MessageException. It signals a protocol-level
// failure (unknown method, server-side internal error, ...) as opposed to
// an exception declared in a method's result schema.
//
// Wire shape: struct { 1: string message, 2: i32 type }.
type ApplicationException struct {
	Message string
	TypeID  int32
}

func (e *ApplicationException) Error() string {
	return fmt.Sprintf("application exception (type %d): %s", e.TypeID, e.Message)
}

// Write serializes the exception struct (without an envelope).
func (e *ApplicationException) Write(w Writer) error {
	if err := w.WriteStructBegin("ApplicationException"); err != nil {
		return err
	}
	if e.Message != "" {
		if err := w.WriteFieldBegin("message", TypeString, 1); err != nil {
			return err
		}
		if err := w.WriteString(e.Message); err != nil {
			return err
		}
		if err := w.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := w.WriteFieldBegin("type", TypeI32, 2); err != nil {
		return err
	}
	if err := w.WriteI32(e.TypeID); err != nil {
		return err
	}
	if err := w.WriteFieldEnd(); err != nil {
		return err
	}
	if err := w.WriteFieldStop(); err != nil {
		return err
	}
	return w.WriteStructEnd()
}

// ReadApplicationException deserializes the exception struct (without an
// envelope). Unknown fields are skipped.
func ReadApplicationException(r Reader) (*ApplicationException, error) {
	e := &ApplicationException{}
	if err := r.ReadStructBegin(); err != nil {
		return nil, err
	}
	for {
		typ, id, err := r.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if typ == TypeStop {
			break
		}
		switch {
		case id == 1 && typ == TypeString:
			e.Message, err = r.ReadString()
		case id == 2 && typ == TypeI32:
			e.TypeID, err = r.ReadI32()
		default:
			err = r.Skip(typ)
		}
		if err != nil {
			return nil, err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return nil, err
		}
	}
	if err := r.ReadStructEnd(); err != nil {
		return nil, err
	}
	return e, nil
}
