package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type kindedError struct{ msg string }

func (e *kindedError) Error() string     { return e.msg }
func (e *kindedError) ErrorKind() string { return "InvalidLogLevel" }

func TestFilterCountsSuccess(t *testing.T) {
	recv := NewInMemory()
	svc := Filter[string, string](recv, "Logger", "log", nil)(
		func(ctx context.Context, req string) (string, error) {
			return "ok", nil
		})

	got, err := svc(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	assert.EqualValues(t, 1, recv.Value("Logger", "log", "requests"))
	assert.EqualValues(t, 1, recv.Value("Logger", "log", "success"))
	assert.EqualValues(t, 0, recv.Value("Logger", "log", "failures"))
}

func TestFilterCountsFailureWithKind(t *testing.T) {
	recv := NewInMemory()
	failure := &kindedError{msg: "level 99"}
	svc := Filter[string, string](recv, "Logger", "log", nil)(
		func(ctx context.Context, req string) (string, error) {
			return "", failure
		})

	_, err := svc(context.Background(), "hi")
	require.ErrorIs(t, err, failure)

	assert.EqualValues(t, 1, recv.Value("Logger", "log", "requests"))
	assert.EqualValues(t, 0, recv.Value("Logger", "log", "success"))
	assert.EqualValues(t, 1, recv.Value("Logger", "log", "failures"))
	assert.EqualValues(t, 1, recv.Value("Logger", "log", "failures", "InvalidLogLevel"))
}

// A Failed verdict on a returned value has no exception to scope by; only
// the aggregate failure counter moves.
func TestValueBasedFailureHasNoKindCounter(t *testing.T) {
	recv := NewInMemory()
	valueIsFailure := func(args any, result any, err error) ResponseClass {
		return Failed
	}
	svc := Filter[string, string](recv, "Logger", "log", valueIsFailure)(
		func(ctx context.Context, req string) (string, error) {
			return "degraded", nil
		})

	got, err := svc(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "degraded", got)

	assert.EqualValues(t, 1, recv.Value("Logger", "log", "failures"))
	assert.EqualValues(t, 0, recv.Value("Logger", "log", "success"))
}

// A custom classifier may call a declared exception Successful; the error
// still reaches the caller unchanged.
func TestClassifierDivergence(t *testing.T) {
	recv := NewInMemory()
	failure := &kindedError{msg: "expected miss"}
	expectedMiss := func(args any, result any, err error) ResponseClass {
		var kinded *kindedError
		if errors.As(err, &kinded) {
			return Successful
		}
		return DefaultClassifier(args, result, err)
	}
	svc := Filter[string, string](recv, "Logger", "log", expectedMiss)(
		func(ctx context.Context, req string) (string, error) {
			return "", failure
		})

	_, err := svc(context.Background(), "hi")
	require.ErrorIs(t, err, failure)

	assert.EqualValues(t, 1, recv.Value("Logger", "log", "success"))
	assert.EqualValues(t, 0, recv.Value("Logger", "log", "failures"))
}

func TestPanickingClassifierFallsBackToDefault(t *testing.T) {
	recv := NewInMemory()
	broken := func(args any, result any, err error) ResponseClass {
		panic("classifier bug")
	}
	svc := Filter[string, string](recv, "Logger", "log", broken)(
		func(ctx context.Context, req string) (string, error) {
			return "ok", nil
		})

	_, err := svc(context.Background(), "hi")
	require.NoError(t, err)
	assert.EqualValues(t, 1, recv.Value("Logger", "log", "success"))
}

func TestCountsUnderConcurrentLoad(t *testing.T) {
	recv := NewInMemory()
	failure := &kindedError{msg: "boom"}
	svc := Filter[int, int](recv, "Logger", "log", nil)(
		func(ctx context.Context, req int) (int, error) {
			if req%2 == 1 {
				return 0, failure
			}
			return req, nil
		})

	const calls = 200
	var g errgroup.Group
	for i := 0; i < calls; i++ {
		i := i
		g.Go(func() error {
			_, _ = svc(context.Background(), i)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	requests := recv.Value("Logger", "log", "requests")
	success := recv.Value("Logger", "log", "success")
	failures := recv.Value("Logger", "log", "failures")
	assert.EqualValues(t, calls, requests)
	assert.EqualValues(t, calls/2, success)
	assert.EqualValues(t, calls/2, failures)
	assert.Equal(t, requests, success+failures)
}

func TestErrorKeyUsesUnwrapChain(t *testing.T) {
	inner := &kindedError{msg: "level 99"}
	wrapped := fmt.Errorf("call failed: %w", inner)
	assert.Equal(t, "fmt.wrapError/InvalidLogLevel", errorKey(wrapped))
	assert.Equal(t, "InvalidLogLevel", errorKey(inner))
	assert.Equal(t, "errors.errorString", errorKey(errors.New("plain")))
}
