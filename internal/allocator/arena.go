// Package allocator provides the region allocator that backs the znc front end.
// An Arena hands out slices carved from a chain of fixed-capacity blocks.
// Blocks are never moved or resized, so every slice or pointer returned by
// an Arena stays valid (and keeps its contents) until the whole arena is
// released. Parent AST nodes rely on this when they keep references to
// children allocated earlier.
package allocator

import (
	"errors"
	"fmt"
)

// MinBlockSize is the smallest block capacity (in elements) an arena creates.
const MinBlockSize = 64

var (
	// ErrOutOfMemory is returned when a request would grow the arena past its limit.
	ErrOutOfMemory = errors.New("allocator: out of memory")
	// ErrZeroSize is returned for requests of zero (or negative) elements.
	ErrZeroSize = errors.New("allocator: zero-size allocation")
	// ErrReleased is returned when allocating from a released arena.
	ErrReleased = errors.New("allocator: arena released")
)

type block[T any] struct {
	next *block[T]
	buf  []T
	used int
}

func (b *block[T]) free() int {
	return len(b.buf) - b.used
}

// Arena is a bump allocator over a chain of blocks of T. It is not safe for
// concurrent use; each translation unit owns its own arena.
type Arena[T any] struct {
	head  *block[T]
	tail  *block[T]
	limit int

	blocks      int
	capacity    int
	used        int
	allocations uint64
	released    bool
}

// Stats is a snapshot of arena usage.
type Stats struct {
	Blocks      int
	Capacity    int
	Used        int
	Allocations uint64
}

// Option configures an Arena.
type Option func(*options)

type options struct {
	limit int
}

// WithLimit bounds the total capacity (in elements) of all blocks in the
// chain. Zero means unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// New creates an arena whose first block holds capacity elements. Capacities
// below MinBlockSize are raised to MinBlockSize.
func New[T any](capacity int, opts ...Option) (*Arena[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if capacity < MinBlockSize {
		capacity = MinBlockSize
	}
	if o.limit < 0 {
		return nil, fmt.Errorf("allocator: negative limit %d", o.limit)
	}
	if o.limit > 0 && capacity > o.limit {
		return nil, fmt.Errorf("%w: first block of %d exceeds limit %d", ErrOutOfMemory, capacity, o.limit)
	}

	first := &block[T]{buf: make([]T, capacity)}
	return &Arena[T]{
		head:     first,
		tail:     first,
		limit:    o.limit,
		blocks:   1,
		capacity: capacity,
	}, nil
}

// Alloc returns n contiguous zeroed elements. The returned slice has
// len == cap == n, so appending to it never spills into other allocations.
func (a *Arena[T]) Alloc(n int) ([]T, error) {
	if a == nil || a.released {
		return nil, ErrReleased
	}
	if n <= 0 {
		return nil, ErrZeroSize
	}

	b := a.head
	for b != nil && b.free() < n {
		b = b.next
	}

	if b == nil {
		size := len(a.tail.buf) * 2
		for size < n {
			size *= 2
		}
		if a.limit > 0 && a.capacity+size > a.limit {
			return nil, fmt.Errorf("%w: need %d more elements, limit %d, in use %d",
				ErrOutOfMemory, size, a.limit, a.capacity)
		}
		b = &block[T]{buf: make([]T, size)}
		a.tail.next = b
		a.tail = b
		a.blocks++
		a.capacity += size
	}

	start := b.used
	b.used += n
	a.used += n
	a.allocations++

	return b.buf[start:b.used:b.used], nil
}

// New allocates a single zeroed element and returns a pointer to it.
func (a *Arena[T]) New() (*T, error) {
	s, err := a.Alloc(1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// Release drops every block in the chain. It is safe to call on a nil arena
// and more than once.
func (a *Arena[T]) Release() {
	if a == nil {
		return
	}
	for b := a.head; b != nil; {
		next := b.next
		b.next = nil
		b.buf = nil
		b.used = 0
		b = next
	}
	a.head = nil
	a.tail = nil
	a.blocks = 0
	a.capacity = 0
	a.used = 0
	a.released = true
}

// Stats returns allocation statistics.
func (a *Arena[T]) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return Stats{
		Blocks:      a.blocks,
		Capacity:    a.capacity,
		Used:        a.used,
		Allocations: a.allocations,
	}
}

// Available returns the free space in the tail block.
func (a *Arena[T]) Available() int {
	if a == nil || a.tail == nil {
		return 0
	}
	return a.tail.free()
}

// Released reports whether Release has been called.
func (a *Arena[T]) Released() bool {
	return a == nil || a.released
}
