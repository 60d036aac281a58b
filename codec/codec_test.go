package codec_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mustang2247/finagle/bufpool"
	"github.com/mustang2247/finagle/codec"
	"github.com/mustang2247/finagle/example"
	"github.com/mustang2247/finagle/protocol"
)

func factories() map[string]protocol.Factory {
	return map[string]protocol.Factory{
		"binary": protocol.NewBinaryFactory(),
		"json":   protocol.NewJSONFactory(),
	}
}

// Two sequential encodes share one pooled buffer; the first call's output
// must not change when the buffer is reused for a different payload.
func TestEncodeOutputIndependentOfBufferReuse(t *testing.T) {
	for name, pf := range factories() {
		t.Run(name, func(t *testing.T) {
			pool := bufpool.New(0)

			first, err := codec.EncodeRequest(pool, pf, "log", example.LogArgs{Message: "first message", LogLevel: 1}, example.LogMethod.Args)
			if err != nil {
				t.Fatalf("EncodeRequest failed: %v", err)
			}
			snapshot := append([]byte(nil), first...)

			if _, err := codec.EncodeRequest(pool, pf, "log", example.LogArgs{Message: "x", LogLevel: 9}, example.LogMethod.Args); err != nil {
				t.Fatalf("EncodeRequest failed: %v", err)
			}

			if !bytes.Equal(first, snapshot) {
				t.Fatal("first encode's bytes changed after buffer reuse")
			}
		})
	}
}

func TestEncodeWritesCallEnvelope(t *testing.T) {
	pf := protocol.NewBinaryFactory()
	data, err := codec.EncodeRequest(bufpool.New(0), pf, "log", example.LogArgs{Message: "hi", LogLevel: 1}, example.LogMethod.Args)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	r := pf.NewReader(data)
	name, typ, seq, err := r.ReadMessageBegin()
	if err != nil {
		t.Fatalf("ReadMessageBegin failed: %v", err)
	}
	if name != "log" || typ != protocol.MessageCall || seq != 0 {
		t.Fatalf("envelope mismatch: got (%q, %d, %d)", name, typ, seq)
	}
}

func TestDecodeSuccess(t *testing.T) {
	for name, pf := range factories() {
		t.Run(name, func(t *testing.T) {
			data, err := example.ReplyBytes(pf, codec.Success("ok"))
			if err != nil {
				t.Fatalf("ReplyBytes failed: %v", err)
			}
			v, err := codec.DecodeResponse(pf, "log", "Logger", example.LogMethod.Result, data)
			if err != nil {
				t.Fatalf("DecodeResponse failed: %v", err)
			}
			if v != "ok" {
				t.Fatalf("expect %q, got %q", "ok", v)
			}
		})
	}
}

func TestDecodeDeclaredException(t *testing.T) {
	for name, pf := range factories() {
		t.Run(name, func(t *testing.T) {
			data, err := example.ReplyBytes(pf, codec.Exception[string](&example.InvalidLogLevel{Reason: "level 99"}))
			if err != nil {
				t.Fatalf("ReplyBytes failed: %v", err)
			}
			_, err = codec.DecodeResponse(pf, "log", "Logger", example.LogMethod.Result, data)
			var exc *example.InvalidLogLevel
			if !errors.As(err, &exc) {
				t.Fatalf("expect InvalidLogLevel, got %v", err)
			}
			if exc.Reason != "level 99" {
				t.Fatalf("expect reason %q, got %q", "level 99", exc.Reason)
			}
			if exc.Source() != "Logger" {
				t.Fatalf("expect exception tagged with owning service, got %q", exc.Source())
			}
		})
	}
}

func TestDecodeEmptyResultIsMissingResult(t *testing.T) {
	for name, pf := range factories() {
		t.Run(name, func(t *testing.T) {
			data, err := example.ReplyBytes(pf, codec.Empty[string]())
			if err != nil {
				t.Fatalf("ReplyBytes failed: %v", err)
			}
			_, err = codec.DecodeResponse(pf, "log", "Logger", example.LogMethod.Result, data)
			var missing *codec.MissingResultError
			if !errors.As(err, &missing) {
				t.Fatalf("expect MissingResultError, got %v", err)
			}
			if missing.Method != "log" {
				t.Fatalf("expect error to name the method, got %q", missing.Method)
			}
		})
	}
}

func TestExceptionEnvelopeWins(t *testing.T) {
	for name, pf := range factories() {
		t.Run(name, func(t *testing.T) {
			data, err := example.ExceptionBytes(pf, "log", &protocol.ApplicationException{
				Message: "unknown method",
				TypeID:  protocol.ExceptionUnknownMethod,
			})
			if err != nil {
				t.Fatalf("ExceptionBytes failed: %v", err)
			}
			_, err = codec.DecodeResponse(pf, "log", "Logger", example.LogMethod.Result, data)
			var app *protocol.ApplicationException
			if !errors.As(err, &app) {
				t.Fatalf("expect ApplicationException, got %v", err)
			}
			if app.TypeID != protocol.ExceptionUnknownMethod {
				t.Fatalf("expect code %d, got %d", protocol.ExceptionUnknownMethod, app.TypeID)
			}
		})
	}
}

func TestResolveTagsServiceOnce(t *testing.T) {
	already := (&example.InvalidLogLevel{Reason: "x"}).WithSource("Upstream")
	_, err := codec.Resolve(codec.Exception[string](already), "log", "Logger")
	var exc *example.InvalidLogLevel
	if !errors.As(err, &exc) {
		t.Fatalf("expect InvalidLogLevel, got %v", err)
	}
	if exc.Source() != "Upstream" {
		t.Fatalf("expect original source preserved, got %q", exc.Source())
	}
}

type failingArgs struct{}

type failingArgsCodec struct{}

func (failingArgsCodec) Write(w protocol.Writer, v failingArgs) error {
	return errors.New("boom")
}

func (failingArgsCodec) Read(r protocol.Reader) (failingArgs, error) {
	return failingArgs{}, errors.New("boom")
}

func TestEncodeFailureIsEncodeError(t *testing.T) {
	_, err := codec.EncodeRequest(bufpool.New(0), protocol.NewBinaryFactory(), "log", failingArgs{}, failingArgsCodec{})
	var encErr *codec.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expect EncodeError, got %v", err)
	}
	if encErr.Method != "log" {
		t.Fatalf("expect error to name the method, got %q", encErr.Method)
	}
}

func TestDeserializeCtxBinding(t *testing.T) {
	if got := codec.GetDeserializeCtx(context.Background()); got != nil {
		t.Fatalf("expect nil outside a call, got %v", got)
	}

	d := &codec.DeserializeCtx{Args: example.LogArgs{Message: "hi"}}
	ctx := codec.WithDeserializeCtx(context.Background(), d)
	if got := codec.GetDeserializeCtx(ctx); got != d {
		t.Fatal("expect the bound DeserializeCtx back")
	}
}
