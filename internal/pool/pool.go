// Package pool provides a block allocator for fixed-size records.
//
// Slots are handed out from fixed-size blocks that are allocated on demand and
// never moved, so both the returned index and the returned pointer stay valid
// until ReleaseAll. Individual slots cannot be freed.
package pool

// DefaultBlockSize is the number of elements per block when none is given.
const DefaultBlockSize = 10000

// Pool allocates zeroed T slots addressed by a dense uint32 index.
type Pool[T any] struct {
	blockSize int
	blocks    [][]T
	n         int
	destroy   func(*T)
}

// New creates a pool with blockSize elements per block. destroy, if not nil,
// is called for every live slot on ReleaseAll.
func New[T any](blockSize int, destroy func(*T)) *Pool[T] {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Pool[T]{
		blockSize: blockSize,
		destroy:   destroy,
	}
}

// Alloc returns the index and address of a fresh zeroed slot.
func (p *Pool[T]) Alloc() (uint32, *T) {
	bi, off := p.n/p.blockSize, p.n%p.blockSize
	if bi == len(p.blocks) {
		p.blocks = append(p.blocks, make([]T, p.blockSize))
	}
	id := uint32(p.n)
	p.n++
	return id, &p.blocks[bi][off]
}

// Get returns the slot for id. It panics if id was never allocated.
func (p *Pool[T]) Get(id uint32) *T {
	i := int(id)
	if i >= p.n {
		panic("pool: slot index out of range")
	}
	return &p.blocks[i/p.blockSize][i%p.blockSize]
}

// Len returns the number of allocated slots.
func (p *Pool[T]) Len() int {
	return p.n
}

// Blocks returns the number of blocks currently held.
func (p *Pool[T]) Blocks() int {
	return len(p.blocks)
}

// ReleaseAll runs the destructor over every live slot and drops all blocks.
// The pool can be reused afterwards; indices restart at zero.
func (p *Pool[T]) ReleaseAll() {
	if p.destroy != nil {
		for i := 0; i < p.n; i++ {
			p.destroy(&p.blocks[i/p.blockSize][i%p.blockSize])
		}
	}
	p.blocks = nil
	p.n = 0
}
