package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func echoService(ctx context.Context, req string) (string, error) {
	return req, nil
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Filter[string, string] {
		return func(next Service[string, string]) Service[string, string] {
			return func(ctx context.Context, req string) (string, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	svc := Chain(mark("outer"), mark("inner"))(echoService)
	if _, err := svc(context.Background(), "hi"); err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("expect outer before inner, got %v", order)
	}
}

func TestLoggingPassesOutcomeThrough(t *testing.T) {
	svc := LoggingFilter[string, string](zap.NewNop(), "Logger.log")(echoService)
	got, err := svc(context.Background(), "hi")
	if err != nil || got != "hi" {
		t.Fatalf("expect (hi, nil), got (%q, %v)", got, err)
	}

	failure := errors.New("transport down")
	failing := LoggingFilter[string, string](zap.NewNop(), "Logger.log")(
		func(ctx context.Context, req string) (string, error) {
			return "", failure
		})
	if _, err := failing(context.Background(), "hi"); !errors.Is(err, failure) {
		t.Fatalf("expect underlying error unchanged, got %v", err)
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	svc := RateLimitFilter[string, string](1, 1)(echoService)

	if _, err := svc(context.Background(), "first"); err != nil {
		t.Fatalf("expect first call allowed, got %v", err)
	}
	if _, err := svc(context.Background(), "second"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expect ErrRateLimited, got %v", err)
	}
}

func TestTimeoutExpiresSlowCall(t *testing.T) {
	slow := func(ctx context.Context, req string) (string, error) {
		select {
		case <-time.After(time.Second):
			return req, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	svc := TimeoutFilter[string, string](20 * time.Millisecond)(slow)
	if _, err := svc(context.Background(), "hi"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expect DeadlineExceeded, got %v", err)
	}
}
