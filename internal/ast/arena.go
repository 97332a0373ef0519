package ast

import (
	"reflect"

	"github.com/znc-lang/znc/internal/allocator"
)

// DefaultBlockSize is the initial element capacity of each node pool.
const DefaultBlockSize = allocator.MinBlockSize

// Arena owns every node of one translation unit. Each node type gets its own
// allocator pool, created on first use; nodes never move once allocated and
// are all dropped together by Release.
type Arena struct {
	pools     map[reflect.Type]pool
	order     []pool
	blockSize int
	limit     int
	released  bool
}

type pool interface {
	Release()
	Stats() allocator.Stats
}

// Option configures an Arena.
type Option func(*Arena)

// WithBlockSize sets the initial capacity of each node pool.
func WithBlockSize(n int) Option {
	return func(a *Arena) { a.blockSize = n }
}

// WithLimit caps the number of elements each node pool may hold.
func WithLimit(n int) Option {
	return func(a *Arena) { a.limit = n }
}

// NewArena creates an empty node arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		pools:     make(map[reflect.Type]pool),
		blockSize: DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func poolFor[T any](a *Arena) (*allocator.Arena[T], error) {
	if a.released {
		return nil, allocator.ErrReleased
	}

	key := reflect.TypeOf((*T)(nil)).Elem()
	if p, ok := a.pools[key]; ok {
		return p.(*allocator.Arena[T]), nil
	}

	var opts []allocator.Option
	size := a.blockSize
	if a.limit > 0 {
		opts = append(opts, allocator.WithLimit(a.limit))
		if size > a.limit {
			size = a.limit
		}
	}

	p, err := allocator.New[T](size, opts...)
	if err != nil {
		return nil, err
	}

	a.pools[key] = p
	a.order = append(a.order, p)

	return p, nil
}

// New allocates one zeroed node of type T from a.
func New[T any](a *Arena) (*T, error) {
	p, err := poolFor[T](a)
	if err != nil {
		return nil, err
	}
	return p.New()
}

// Slice copies items into arena memory. The result has cap == len; an empty
// input yields nil without allocating.
func Slice[T any](a *Arena, items []T) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}

	p, err := poolFor[T](a)
	if err != nil {
		return nil, err
	}

	out, err := p.Alloc(len(items))
	if err != nil {
		return nil, err
	}
	copy(out, items)

	return out, nil
}

// Stats sums the statistics of every pool.
func (a *Arena) Stats() allocator.Stats {
	var s allocator.Stats
	for _, p := range a.order {
		ps := p.Stats()
		s.Blocks += ps.Blocks
		s.Capacity += ps.Capacity
		s.Used += ps.Used
		s.Allocations += ps.Allocations
	}
	return s
}

// Pools returns the number of node pools created so far.
func (a *Arena) Pools() int { return len(a.order) }

// Release drops every pool. It is safe to call on a nil or released arena.
func (a *Arena) Release() {
	if a == nil || a.released {
		return
	}
	for _, p := range a.order {
		p.Release()
	}
	a.pools = nil
	a.order = nil
	a.released = true
}
