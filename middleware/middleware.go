// Package middleware defines the composable call abstraction the client
// pipeline is built from.
//
// A Service is one typed asynchronous operation; a Filter wraps a Service
// with extra behavior and yields another Service of the same shape. The
// whole client call path is a filter chain over the transport:
//
//	stats filter ──→ codec filter ──→ transport
//
// Filters compose by plain function composition, not inheritance.
package middleware

import "context"

// Service is a typed request/response operation. Implementations must
// honor ctx cancellation across any blocking work.
type Service[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Filter decorates a Service with additional behavior.
type Filter[Req, Res any] func(next Service[Req, Res]) Service[Req, Res]

// Chain combines filters into one. The first filter becomes the outermost
// layer: Chain(a, b)(svc) handles a request as a → b → svc.
func Chain[Req, Res any](filters ...Filter[Req, Res]) Filter[Req, Res] {
	return func(next Service[Req, Res]) Service[Req, Res] {
		for i := len(filters) - 1; i >= 0; i-- {
			next = filters[i](next)
		}
		return next
	}
}
