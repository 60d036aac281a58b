package bufpool

import (
	"bytes"
	"testing"
)

func TestBufferResetKeepsCapacity(t *testing.T) {
	b := NewBuffer(1024)
	if _, err := b.Write(make([]byte, 600)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	grown := cap(b.b)
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("expect empty buffer after Reset, got len %d", b.Len())
	}
	if cap(b.b) != grown {
		t.Fatalf("expect capacity %d retained, got %d", grown, cap(b.b))
	}
	if b.HighWater() != 600 {
		t.Fatalf("expect high-water 600, got %d", b.HighWater())
	}
}

func TestBufferResetDropsOversizedCapacity(t *testing.T) {
	b := NewBuffer(1024)
	if _, err := b.Write(make([]byte, 4096)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	b.Reset()
	if cap(b.b) > 1024 {
		t.Fatalf("expect capacity released after oversized use, got %d", cap(b.b))
	}
}

// Sequential reuse must never leak bytes from an earlier, longer payload
// into a later, shorter one.
func TestBufferReuseNoLeak(t *testing.T) {
	b := NewBuffer(0)
	if _, err := b.Write([]byte("first payload, quite long")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	b.Reset()
	if _, err := b.Write([]byte("2nd")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !bytes.Equal(b.Bytes(), []byte("2nd")) {
		t.Fatalf("expect %q, got %q", "2nd", b.Bytes())
	}
}

func TestPoolReusesBuffers(t *testing.T) {
	p := New(0)
	b := p.Get()
	if _, err := b.Write([]byte("data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	p.Put(b)

	got := p.Get()
	if got != b {
		t.Fatal("expect the returned buffer to be reused")
	}
	if got.Len() != 0 {
		t.Fatalf("expect reset buffer on checkout, got len %d", got.Len())
	}
}

func TestPoolAllocatesWhenEmpty(t *testing.T) {
	p := New(0)
	a := p.Get()
	b := p.Get()
	if a == b {
		t.Fatal("expect distinct buffers for concurrent checkouts")
	}
}
