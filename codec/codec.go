package codec

import (
	"github.com/mustang2247/finagle/bufpool"
	"github.com/mustang2247/finagle/protocol"
)

// EncodeRequest serializes a call envelope plus arguments into an
// independent byte slice, using a buffer checked out of pool for the
// duration of the encode.
//
// Sequence ids are written as 0: every call owns its own transport
// invocation, so ids are not needed for request/response correlation.
func EncodeRequest[A any](pool *bufpool.Pool, pf protocol.Factory, method string, args A, ac StructCodec[A]) ([]byte, error) {
	buf := pool.Get()
	defer pool.Put(buf)

	w := pf.NewWriter(buf)
	if err := w.WriteMessageBegin(method, protocol.MessageCall, 0); err != nil {
		return nil, &EncodeError{Method: method, Err: err}
	}
	if err := ac.Write(w, args); err != nil {
		return nil, &EncodeError{Method: method, Err: err}
	}
	if err := w.WriteMessageEnd(); err != nil {
		return nil, &EncodeError{Method: method, Err: err}
	}

	// Copy out exactly the written range. The returned bytes must stay
	// valid after the buffer is reset and reused by the next call.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeResponse deserializes a response byte range into the method's
// typed outcome: the success value, a declared exception (returned as the
// error), or a protocol-level error.
//
// An envelope of type Exception always wins: its ApplicationException
// payload is returned even if the bytes after it would have parsed as a
// valid result struct.
func DecodeResponse[R any](pf protocol.Factory, method, service string, rc ResultCodec[R], data []byte) (R, error) {
	var zero R

	r := pf.NewReader(data)
	_, typ, _, err := r.ReadMessageBegin()
	if err != nil {
		return zero, err
	}

	if typ == protocol.MessageException {
		exc, err := protocol.ReadApplicationException(r)
		if err != nil {
			return zero, err
		}
		if err := r.ReadMessageEnd(); err != nil {
			return zero, err
		}
		return zero, exc
	}

	res, err := rc.Read(r)
	if err != nil {
		return zero, err
	}
	if err := r.ReadMessageEnd(); err != nil {
		return zero, err
	}
	return Resolve(res, method, service)
}

// Resolve collapses a result union into the call's outcome: the success
// value, the declared exception (attributed to the owning service), or a
// MissingResultError naming the method when the union is empty.
func Resolve[R any](res Result[R], method, service string) (R, error) {
	var zero R
	switch {
	case res.IsSuccess():
		return res.Value(), nil
	case res.IsException():
		return zero, tagSource(res.Err(), service)
	default:
		return zero, &MissingResultError{Method: method}
	}
}

// tagSource attributes an exception to the service it came from. Applied
// at most once: an exception that already carries a source keeps it.
func tagSource(err error, service string) error {
	se, ok := err.(SourcedError)
	if !ok || se.Source() != "" {
		return err
	}
	return se.WithSource(service)
}
