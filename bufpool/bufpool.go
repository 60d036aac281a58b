// Package bufpool provides reusable byte buffers for request encoding.
//
// Encoding a request should not allocate a fresh buffer per call. A Buffer
// is checked out of a Pool, written, copied out, reset, and returned — so
// its capacity is reused by later calls. A buffer is exclusively owned
// between Get and Put; the pool never hands the same buffer to two callers
// at once.
//
// Pool design: a buffered channel as the free list (concurrency-safe,
// non-blocking). When the channel is empty a new buffer is allocated; when
// it is full a returned buffer is dropped for the garbage collector.
package bufpool

// DefaultMaxRetained caps the capacity a buffer keeps across resets. A
// buffer grown past the cap by one oversized request is released on Reset
// instead of pinning that memory for the pool's lifetime.
const DefaultMaxRetained = 16 * 1024

const initialSize = 512

// Buffer is a growable byte buffer with a retained-capacity cap and a
// high-water mark. Not safe for concurrent use.
type Buffer struct {
	b           []byte
	maxRetained int
	highWater   int
}

// NewBuffer returns an empty buffer that keeps at most maxRetained bytes
// of capacity across resets. maxRetained <= 0 selects DefaultMaxRetained.
func NewBuffer(maxRetained int) *Buffer {
	if maxRetained <= 0 {
		maxRetained = DefaultMaxRetained
	}
	return &Buffer{
		b:           make([]byte, 0, initialSize),
		maxRetained: maxRetained,
	}
}

// Write appends p, growing the buffer as needed. It implements io.Writer
// and never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// Bytes returns the written range. The slice aliases the buffer and is
// only valid until the next Write or Reset; callers that need the data to
// outlive the buffer must copy it out.
func (b *Buffer) Bytes() []byte { return b.b }

func (b *Buffer) Len() int { return len(b.b) }

// HighWater reports the largest length observed before a Reset.
func (b *Buffer) HighWater() int { return b.highWater }

// Reset truncates the buffer to zero length. Capacity is kept for reuse
// unless it grew past the retained cap, in which case the backing array is
// replaced with a small one.
func (b *Buffer) Reset() {
	if len(b.b) > b.highWater {
		b.highWater = len(b.b)
	}
	if cap(b.b) > b.maxRetained {
		b.b = make([]byte, 0, initialSize)
		return
	}
	b.b = b.b[:0]
}

// Pool hands out buffers for the duration of one encode. Get blocks never;
// it allocates when the free list is empty.
type Pool struct {
	free        chan *Buffer
	maxRetained int
}

// New creates a pool whose buffers retain at most maxRetained bytes of
// capacity. The free list holds a fixed small number of buffers; steady
// state needs one per concurrently-encoding goroutine.
func New(maxRetained int) *Pool {
	return &Pool{
		free:        make(chan *Buffer, 16),
		maxRetained: maxRetained,
	}
}

// Get checks a buffer out of the pool. The buffer is reset on checkout and
// exclusively owned by the caller until Put.
func (p *Pool) Get() *Buffer {
	select {
	case b := <-p.free:
		b.Reset()
		return b
	default:
		return NewBuffer(p.maxRetained)
	}
}

// Put returns a buffer to the pool. If the free list is full the buffer is
// discarded.
func (p *Pool) Put(b *Buffer) {
	b.Reset()
	select {
	case p.free <- b:
	default:
	}
}
