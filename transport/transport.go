// Package transport defines the byte-level collaborator the call pipeline
// sits on: one asynchronous bytes-in/bytes-out operation per call.
//
// Everything below this interface — dialing, connection pooling, name
// resolution, load balancing, timeout enforcement — belongs to the
// implementation. The pipeline makes exactly one Invoke per call and never
// retries.
package transport

import (
	"context"
	"io"
)

// Transport sends one encoded request and returns the raw response bytes.
// A oneway request resolves as soon as it is accepted and carries no
// response payload. Cancellation arrives via ctx and must abort the
// in-flight exchange.
type Transport interface {
	Invoke(ctx context.Context, request []byte, oneway bool) ([]byte, error)
	io.Closer
}

// Func adapts a plain function to Transport with a no-op Close.
type Func func(ctx context.Context, request []byte, oneway bool) ([]byte, error)

func (f Func) Invoke(ctx context.Context, request []byte, oneway bool) ([]byte, error) {
	return f(ctx, request, oneway)
}

func (f Func) Close() error { return nil }

// Local is an in-process transport that hands requests to a byte handler:
// a loopback for tests and for talking to a same-process service through
// the regular pipeline.
type Local struct {
	handler func(ctx context.Context, request []byte) ([]byte, error)
}

func NewLocal(handler func(ctx context.Context, request []byte) ([]byte, error)) *Local {
	return &Local{handler: handler}
}

// Invoke runs the handler in its own goroutine so cancellation is
// observed even when the handler blocks.
func (t *Local) Invoke(ctx context.Context, request []byte, oneway bool) ([]byte, error) {
	type outcome struct {
		response []byte
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		response, err := t.handler(ctx, request)
		done <- outcome{response, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if oneway {
			return nil, nil
		}
		return out.response, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Local) Close() error { return nil }
