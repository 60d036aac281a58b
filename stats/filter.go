package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mustang2247/finagle/middleware"
)

// ErrorKinder lets an error supply its own stable failure-scope token.
// Errors without it are scoped by their normalized type name.
type ErrorKinder interface {
	ErrorKind() string
}

// methodStats bundles the counters for one method. Built once per method
// and shared by all of its calls.
type methodStats struct {
	requests      Counter
	success       Counter
	failures      Counter
	failuresScope Receiver
}

func newMethodStats(recv Receiver, service, method string) *methodStats {
	scope := recv.Scope(service, method)
	return &methodStats{
		requests:      scope.Counter("requests"),
		success:       scope.Counter("success"),
		failures:      scope.Counter("failures"),
		failuresScope: scope.Scope("failures"),
	}
}

// Filter wraps a service with request/success/failure accounting under the
// (service, method) scope of recv. The outcome is passed to the classifier
// together with the original arguments and then returned to the caller
// untouched — the filter never swallows, retries, or transforms anything.
//
// Failed outcomes that carry an error additionally increment a counter in
// the failures sub-scope keyed by the error's kind chain; a Failed verdict
// on a returned value has no error to scope by and only bumps the
// aggregate failure counter.
func Filter[Req, Res any](recv Receiver, service, method string, c Classifier) middleware.Filter[Req, Res] {
	if recv == nil {
		recv = NewNil()
	}
	ms := newMethodStats(recv, service, method)
	return func(next middleware.Service[Req, Res]) middleware.Service[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			ms.requests.Incr()
			res, err := next(ctx, req)
			switch classify(c, req, res, err) {
			case Failed:
				ms.failures.Incr()
				if err != nil {
					ms.failuresScope.Counter(errorKey(err)).Incr()
				}
			default:
				ms.success.Incr()
			}
			return res, err
		}
	}
}

// errorKey derives the failure-scope key: one token per link of the
// error's unwrap chain, joined with '/'. Messages never participate, so
// the key space stays bounded by the set of error types in play.
func errorKey(err error) string {
	var tokens []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		tokens = append(tokens, kindToken(e))
	}
	return strings.Join(tokens, "/")
}

func kindToken(err error) string {
	if k, ok := err.(ErrorKinder); ok {
		return k.ErrorKind()
	}
	return strings.TrimLeft(fmt.Sprintf("%T", err), "*")
}
