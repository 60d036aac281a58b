package codec

import "context"

// DeserializeCtx is the call-scoped binding that lets a byte-oriented
// layer produce this call's typed result. The transport contract is
// bytes-in/bytes-out and knows nothing about per-method result types; the
// codec service builds this value immediately before its single transport
// invocation and carries it down that invocation's context.
//
// Decode is untyped on purpose — whoever holds raw response bytes can
// resolve them without knowing R. The binding is a fresh value per call,
// never shared between in-flight calls, and meaningless outside the
// invocation it was built for.
type DeserializeCtx struct {
	// Args are the call's original typed arguments, exposed for layers
	// (classifiers, byte-level tracing) that want request context.
	Args any

	// Decode resolves the raw response bytes of this call into its typed
	// outcome: (value, nil), (nil, declared exception) or (nil, protocol
	// error).
	Decode func(response []byte) (any, error)
}

type deserializeCtxKey struct{}

// WithDeserializeCtx binds d to ctx for the span of one transport
// invocation.
func WithDeserializeCtx(ctx context.Context, d *DeserializeCtx) context.Context {
	return context.WithValue(ctx, deserializeCtxKey{}, d)
}

// GetDeserializeCtx returns the binding established for the current call,
// or nil when called outside a codec-service invocation.
func GetDeserializeCtx(ctx context.Context) *DeserializeCtx {
	d, _ := ctx.Value(deserializeCtxKey{}).(*DeserializeCtx)
	return d
}
