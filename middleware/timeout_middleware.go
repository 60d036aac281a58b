package middleware

import (
	"context"
	"time"
)

// TimeoutFilter caps the wrapped service's execution at timeout via the
// context deadline. The expiry surfaces as the inner call's error
// (context.DeadlineExceeded from whatever blocking point observed it), so
// downstream layers see it as an ordinary transport failure.
func TimeoutFilter[Req, Res any](timeout time.Duration) Filter[Req, Res] {
	return func(next Service[Req, Res]) Service[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}
