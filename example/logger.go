// Package example contains the hand-written equivalent of what the IDL
// compiler emits for a small logging service:
//
//	service Logger {
//	  string log(1: string message, 2: i32 logLevel) throws (1: InvalidLogLevel ex)
//	  oneway void heartbeat(1: string message)
//	}
//
// It gives the repo a complete picture of how generated clients sit on
// the call pipeline, and it backs the pipeline's end-to-end tests.
package example

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mustang2247/finagle/client"
	"github.com/mustang2247/finagle/codec"
	"github.com/mustang2247/finagle/middleware"
	"github.com/mustang2247/finagle/protocol"
	"github.com/mustang2247/finagle/transport"
)

// InvalidLogLevel is the Logger service's declared exception.
type InvalidLogLevel struct {
	Reason  string
	service string
}

func (e *InvalidLogLevel) Error() string {
	if e.service != "" {
		return fmt.Sprintf("%s: invalid log level: %s", e.service, e.Reason)
	}
	return "invalid log level: " + e.Reason
}

func (e *InvalidLogLevel) Source() string { return e.service }

func (e *InvalidLogLevel) WithSource(service string) error {
	tagged := *e
	tagged.service = service
	return &tagged
}

func (e *InvalidLogLevel) ErrorKind() string { return "InvalidLogLevel" }

// LogArgs carries the log method's parameters.
type LogArgs struct {
	Message  string
	LogLevel int32
}

// HeartbeatArgs carries the heartbeat method's parameters.
type HeartbeatArgs struct {
	Message string
}

// LogMethod and HeartbeatMethod are the descriptors the IDL compiler
// would emit for the Logger service.
var (
	LogMethod = &codec.Method[LogArgs, string]{
		Name:    "log",
		Service: "Logger",
		Args:    logArgsCodec{},
		Result:  logResultCodec{},
	}

	HeartbeatMethod = &codec.Method[HeartbeatArgs, struct{}]{
		Name:    "heartbeat",
		Service: "Logger",
		Oneway:  true,
		Args:    heartbeatArgsCodec{},
		Result:  voidResultCodec{},
	}
)

type logArgsCodec struct{}

func (logArgsCodec) Write(w protocol.Writer, v LogArgs) error {
	if err := w.WriteStructBegin("log_args"); err != nil {
		return err
	}
	if err := w.WriteFieldBegin("message", protocol.TypeString, 1); err != nil {
		return err
	}
	if err := w.WriteString(v.Message); err != nil {
		return err
	}
	if err := w.WriteFieldEnd(); err != nil {
		return err
	}
	if err := w.WriteFieldBegin("logLevel", protocol.TypeI32, 2); err != nil {
		return err
	}
	if err := w.WriteI32(v.LogLevel); err != nil {
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

func (logArgsCodec) Read(r protocol.Reader) (LogArgs, error) {
	var v LogArgs
	if err := r.ReadStructBegin(); err != nil {
		return v, err
	}
	for {
		typ, id, err := r.ReadFieldBegin()
		if err != nil {
			return v, err
		}
		if typ == protocol.TypeStop {
			break
		}
		switch {
		case id == 1 && typ == protocol.TypeString:
			v.Message, err = r.ReadString()
		case id == 2 && typ == protocol.TypeI32:
			v.LogLevel, err = r.ReadI32()
		default:
			err = r.Skip(typ)
		}
		if err != nil {
			return v, err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return v, err
		}
	}
	return v, r.ReadStructEnd()
}

type logResultCodec struct{}

func (logResultCodec) Write(w protocol.Writer, res codec.Result[string]) error {
	if err := w.WriteStructBegin("log_result"); err != nil {
		return err
	}
	switch {
	case res.IsSuccess():
		if err := w.WriteFieldBegin("success", protocol.TypeString, 0); err != nil {
			return err
		}
		if err := w.WriteString(res.Value()); err != nil {
			return err
		}
		if err := w.WriteFieldEnd(); err != nil {
			return err
		}
	case res.IsException():
		var exc *InvalidLogLevel
		if !errors.As(res.Err(), &exc) {
			return fmt.Errorf("log_result: undeclared exception %T", res.Err())
		}
		if err := w.WriteFieldBegin("ex", protocol.TypeStruct, 1); err != nil {
			return err
		}
		if err := writeInvalidLogLevel(w, exc); err != nil {
			return err
		}
		if err := w.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := w.WriteFieldStop(); err != nil {
		return err
	}
	return w.WriteStructEnd()
}

func (logResultCodec) Read(r protocol.Reader) (codec.Result[string], error) {
	res := codec.Empty[string]()
	if err := r.ReadStructBegin(); err != nil {
		return res, err
	}
	for {
		typ, id, err := r.ReadFieldBegin()
		if err != nil {
			return res, err
		}
		if typ == protocol.TypeStop {
			break
		}
		switch {
		case id == 0 && typ == protocol.TypeString:
			var v string
			v, err = r.ReadString()
			if err == nil {
				res = codec.Success(v)
			}
		case id == 1 && typ == protocol.TypeStruct:
			var exc *InvalidLogLevel
			exc, err = readInvalidLogLevel(r)
			if err == nil {
				res = codec.Exception[string](exc)
			}
		default:
			err = r.Skip(typ)
		}
		if err != nil {
			return res, err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return res, err
		}
	}
	return res, r.ReadStructEnd()
}

func writeInvalidLogLevel(w protocol.Writer, e *InvalidLogLevel) error {
	if err := w.WriteStructBegin("InvalidLogLevel"); err != nil {
		return err
	}
	if err := w.WriteFieldBegin("reason", protocol.TypeString, 1); err != nil {
		return err
	}
	if err := w.WriteString(e.Reason); err != nil {
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

func readInvalidLogLevel(r protocol.Reader) (*InvalidLogLevel, error) {
	e := &InvalidLogLevel{}
	if err := r.ReadStructBegin(); err != nil {
		return nil, err
	}
	for {
		typ, id, err := r.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if typ == protocol.TypeStop {
			break
		}
		if id == 1 && typ == protocol.TypeString {
			e.Reason, err = r.ReadString()
		} else {
			err = r.Skip(typ)
		}
		if err != nil {
			return nil, err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return nil, err
		}
	}
	return e, r.ReadStructEnd()
}

type heartbeatArgsCodec struct{}

func (heartbeatArgsCodec) Write(w protocol.Writer, v HeartbeatArgs) error {
	if err := w.WriteStructBegin("heartbeat_args"); err != nil {
		return err
	}
	if err := w.WriteFieldBegin("message", protocol.TypeString, 1); err != nil {
		return err
	}
	if err := w.WriteString(v.Message); err != nil {
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

func (heartbeatArgsCodec) Read(r protocol.Reader) (HeartbeatArgs, error) {
	var v HeartbeatArgs
	if err := r.ReadStructBegin(); err != nil {
		return v, err
	}
	for {
		typ, id, err := r.ReadFieldBegin()
		if err != nil {
			return v, err
		}
		if typ == protocol.TypeStop {
			break
		}
		if id == 1 && typ == protocol.TypeString {
			v.Message, err = r.ReadString()
		} else {
			err = r.Skip(typ)
		}
		if err != nil {
			return v, err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return v, err
		}
	}
	return v, r.ReadStructEnd()
}

// voidResultCodec handles a void method's empty result struct. An empty
// struct reads as success — void methods have nothing else to set.
type voidResultCodec struct{}

func (voidResultCodec) Write(w protocol.Writer, res codec.Result[struct{}]) error {
	if err := w.WriteStructBegin("heartbeat_result"); err != nil {
		return err
	}
	if err := w.WriteFieldStop(); err != nil {
		return err
	}
	return w.WriteStructEnd()
}

func (voidResultCodec) Read(r protocol.Reader) (codec.Result[struct{}], error) {
	if err := r.ReadStructBegin(); err != nil {
		return codec.Empty[struct{}](), err
	}
	for {
		typ, _, err := r.ReadFieldBegin()
		if err != nil {
			return codec.Empty[struct{}](), err
		}
		if typ == protocol.TypeStop {
			break
		}
		if err := r.Skip(typ); err != nil {
			return codec.Empty[struct{}](), err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return codec.Empty[struct{}](), err
		}
	}
	return codec.Success(struct{}{}), r.ReadStructEnd()
}

// LoggerClient is the typed client surface generated for the Logger
// service.
type LoggerClient struct {
	c         *client.Client
	log       middleware.Service[LogArgs, string]
	heartbeat middleware.Service[HeartbeatArgs, struct{}]
}

func NewLoggerClient(tr transport.Transport, opts ...client.Option) *LoggerClient {
	c := client.New(tr, opts...)
	return &LoggerClient{
		c:         c,
		log:       client.Build(c, LogMethod),
		heartbeat: client.Build(c, HeartbeatMethod),
	}
}

func (lc *LoggerClient) Log(ctx context.Context, message string, logLevel int32) (string, error) {
	return lc.log(ctx, LogArgs{Message: message, LogLevel: logLevel})
}

func (lc *LoggerClient) Heartbeat(ctx context.Context, message string) error {
	_, err := lc.heartbeat(ctx, HeartbeatArgs{Message: message})
	return err
}

func (lc *LoggerClient) Close() error { return lc.c.Close() }

// ReplyBytes encodes a reply envelope around a log result, as a Logger
// server would.
func ReplyBytes(pf protocol.Factory, res codec.Result[string]) ([]byte, error) {
	var buf bytes.Buffer
	w := pf.NewWriter(&buf)
	if err := w.WriteMessageBegin("log", protocol.MessageReply, 0); err != nil {
		return nil, err
	}
	if err := (logResultCodec{}).Write(w, res); err != nil {
		return nil, err
	}
	if err := w.WriteMessageEnd(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExceptionBytes encodes an exception envelope carrying exc, as a server
// reports protocol-level failures.
func ExceptionBytes(pf protocol.Factory, method string, exc *protocol.ApplicationException) ([]byte, error) {
	var buf bytes.Buffer
	w := pf.NewWriter(&buf)
	if err := w.WriteMessageBegin(method, protocol.MessageException, 0); err != nil {
		return nil, err
	}
	if err := exc.Write(w); err != nil {
		return nil, err
	}
	if err := w.WriteMessageEnd(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewLoggerTransport returns an in-process transport serving the Logger
// service through handle. Declared InvalidLogLevel errors become the
// declared exception field; any other handler error becomes an
// ApplicationException envelope.
func NewLoggerTransport(pf protocol.Factory, handle func(ctx context.Context, args LogArgs) (string, error)) transport.Transport {
	return transport.NewLocal(func(ctx context.Context, request []byte) ([]byte, error) {
		r := pf.NewReader(request)
		name, _, _, err := r.ReadMessageBegin()
		if err != nil {
			return nil, err
		}

		switch name {
		case "log":
			args, err := (logArgsCodec{}).Read(r)
			if err != nil {
				return nil, err
			}
			if err := r.ReadMessageEnd(); err != nil {
				return nil, err
			}
			value, err := handle(ctx, args)
			if err != nil {
				var exc *InvalidLogLevel
				if errors.As(err, &exc) {
					return ReplyBytes(pf, codec.Exception[string](exc))
				}
				return ExceptionBytes(pf, name, &protocol.ApplicationException{
					Message: err.Error(),
					TypeID:  protocol.ExceptionInternalError,
				})
			}
			return ReplyBytes(pf, codec.Success(value))

		case "heartbeat":
			// Oneway: nothing to send back; the transport discards this.
			return nil, nil

		default:
			return ExceptionBytes(pf, name, &protocol.ApplicationException{
				Message: "unknown method " + name,
				TypeID:  protocol.ExceptionUnknownMethod,
			})
		}
	})
}
