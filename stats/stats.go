// Package stats records per-method call statistics.
//
// A Receiver is a hierarchical, increment-only counter sink: counters are
// named within nested scopes like "Logger/log/requests". The pipeline's
// stats filter writes three counters per method (requests, success,
// failures) plus a failures sub-scope keyed by exception kind; a pluggable
// Classifier decides which outcomes count as failures.
package stats

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is an increment-only metric.
type Counter interface {
	Incr()
}

// Receiver creates counters within a scope. Implementations must be safe
// for concurrent use; Counter must return the same underlying counter for
// the same name so increments from concurrent calls accumulate.
type Receiver interface {
	Counter(name string) Counter
	Scope(parts ...string) Receiver
}

// NewNil returns a Receiver that discards everything. It is the default
// sink: clients that do not configure stats pay almost nothing.
func NewNil() Receiver { return nilReceiver{} }

type nilReceiver struct{}

func (nilReceiver) Counter(string) Counter { return nilCounter{} }
func (nilReceiver) Scope(...string) Receiver { return nilReceiver{} }

type nilCounter struct{}

func (nilCounter) Incr() {}

// InMemory is a Receiver backed by atomic counters, usable as a local sink
// and for inspecting recorded values in tests. Scoped views share the
// parent's counter table; names are joined with '/'.
type InMemory struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

func NewInMemory() *InMemory {
	return &InMemory{counters: make(map[string]*atomic.Int64)}
}

func (s *InMemory) Counter(name string) Counter {
	return inMemoryCounter{s.counter(name)}
}

func (s *InMemory) Scope(parts ...string) Receiver {
	return inMemoryScope{root: s, prefix: strings.Join(parts, "/")}
}

// Value reads a counter by its full scoped name. Zero for counters never
// incremented.
func (s *InMemory) Value(parts ...string) int64 {
	return s.counter(strings.Join(parts, "/")).Load()
}

func (s *InMemory) counter(full string) *atomic.Int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[full]
	if !ok {
		c = new(atomic.Int64)
		s.counters[full] = c
	}
	return c
}

type inMemoryCounter struct{ v *atomic.Int64 }

func (c inMemoryCounter) Incr() { c.v.Add(1) }

type inMemoryScope struct {
	root   *InMemory
	prefix string
}

func (s inMemoryScope) Counter(name string) Counter {
	return inMemoryCounter{s.root.counter(s.prefix + "/" + name)}
}

func (s inMemoryScope) Scope(parts ...string) Receiver {
	return inMemoryScope{root: s.root, prefix: s.prefix + "/" + strings.Join(parts, "/")}
}
