package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned for calls rejected by RateLimitFilter before
// they reach the transport.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitFilter rejects calls beyond r requests per second (token bucket
// with the given burst). Rejection is immediate — the filter never queues
// a call waiting for a token.
func RateLimitFilter[Req, Res any](r float64, burst int) Filter[Req, Res] {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next Service[Req, Res]) Service[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			if !limiter.Allow() {
				var zero Res
				return zero, ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}
