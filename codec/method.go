package codec

import "github.com/mustang2247/finagle/protocol"

// StructCodec writes and reads one generated struct type through a
// protocol writer/reader. Implementations come from generated code and
// must be stateless.
type StructCodec[T any] interface {
	Write(w protocol.Writer, v T) error
	Read(r protocol.Reader) (T, error)
}

// ResultCodec writes and reads a method's result union. By convention
// field id 0 is the success value and ids 1+ are the declared exceptions;
// Read returns Empty when no known field is present.
type ResultCodec[T any] interface {
	Write(w protocol.Writer, v Result[T]) error
	Read(r protocol.Reader) (Result[T], error)
}

// Method is the static descriptor for one remote method: its name, the
// owning service, the one-way flag, and the argument/result codecs. One
// descriptor is built per method by the generated client layer and shared,
// unmodified, by every call for the life of the process.
type Method[A, R any] struct {
	Name    string
	Service string
	Oneway  bool
	Args    StructCodec[A]
	Result  ResultCodec[R]
}
