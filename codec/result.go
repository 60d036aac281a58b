// Package codec implements the typed method-dispatch core of the client
// pipeline: method descriptors, request encoding, response decoding, and
// the result union those decode into.
//
// The packing/unpacking contract for concrete Args/Result types lives in
// generated code (StructCodec/ResultCodec implementations); this package
// supplies everything around it.
package codec

import "fmt"

type resultKind uint8

const (
	resultEmpty resultKind = iota
	resultSuccess
	resultException
)

// Result is the typed union a method's response decodes into: the declared
// success value, one declared exception, or nothing at all. Constructing it
// through Success/Exception/Empty makes "at most one variant set" a
// property of the representation rather than an implicit invariant, and
// makes the empty case an explicit, handled variant.
type Result[T any] struct {
	kind  resultKind
	value T
	exc   error
}

// Success returns a result holding the method's success value.
func Success[T any](v T) Result[T] { return Result[T]{kind: resultSuccess, value: v} }

// Exception returns a result holding one of the method's declared
// exceptions.
func Exception[T any](err error) Result[T] { return Result[T]{kind: resultException, exc: err} }

// Empty returns a result with no variant set. Decoding it yields a
// MissingResultError.
func Empty[T any]() Result[T] { return Result[T]{} }

func (r Result[T]) IsSuccess() bool   { return r.kind == resultSuccess }
func (r Result[T]) IsException() bool { return r.kind == resultException }
func (r Result[T]) IsEmpty() bool     { return r.kind == resultEmpty }

// Value returns the success value; the zero value unless IsSuccess.
func (r Result[T]) Value() T { return r.value }

// Err returns the declared exception; nil unless IsException.
func (r Result[T]) Err() error { return r.exc }

// SourcedError is implemented by declared exceptions that can carry the
// name of the service they came from, so failures observed far from the
// call site can still be attributed. WithSource returns a tagged copy; the
// pipeline applies it only to untagged exceptions.
type SourcedError interface {
	error
	Source() string
	WithSource(service string) error
}

// MissingResultError reports a decoded result with neither a success value
// nor a declared exception set. A server that replies this way is
// misbehaving at the protocol level, so this is not a declared exception.
type MissingResultError struct {
	Method string
}

func (e *MissingResultError) Error() string {
	return fmt.Sprintf("%s: result carried no success value and no exception", e.Method)
}

// EncodeError reports a defect serializing arguments. The transport is
// never invoked for a call that fails to encode.
type EncodeError struct {
	Method string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Method, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
