package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingFilter logs every invocation of the wrapped service with its
// duration and outcome. name identifies the operation in the log, usually
// "Service.method".
func LoggingFilter[Req, Res any](log *zap.Logger, name string) Filter[Req, Res] {
	log = log.Named("call").With(zap.String("method", name))
	return func(next Service[Req, Res]) Service[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			start := time.Now()
			res, err := next(ctx, req)
			if err != nil {
				log.Warn("call failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
			} else {
				log.Debug("call ok", zap.Duration("duration", time.Since(start)))
			}
			return res, err
		}
	}
}
