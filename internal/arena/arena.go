// Package arena implements a fixed-capacity pool of equally sized blocks.
//
// Blocks are addressed by Ref (an index into the pool) instead of pointers,
// and their free/used state lives in a bitmap of 64-bit words. A Pool never
// grows: once every block is in use, Alloc reports ErrExhausted.
package arena

import (
	"errors"
	"math/bits"
)

// DefaultBlocks is the block count used when New is given a non-positive size.
const DefaultBlocks = 1 << 16

// Ref addresses a block inside a Pool.
type Ref int32

// Nil is the Ref that addresses no block.
const Nil Ref = -1

// ErrExhausted is returned by Alloc when no free block remains.
var ErrExhausted = errors.New("arena: no free blocks")

// Pool hands out blocks of type T. It is not safe for concurrent use.
type Pool[T any] struct {
	blocks []T
	free   []uint64 // bit set = block free
	hint   int      // every word below hint has no free bit
	inUse  int
	peak   int
}

// New reserves storage for n blocks, all initially free.
func New[T any](n int) *Pool[T] {
	if n <= 0 {
		n = DefaultBlocks
	}
	p := &Pool[T]{
		blocks: make([]T, n),
		free:   make([]uint64, (n+63)/64),
	}
	p.Reset()
	return p
}

// Reset marks every block free in one pass over the bitmap. Callers must not
// hold Refs obtained before the reset.
func (p *Pool[T]) Reset() {
	for i := range p.free {
		p.free[i] = ^uint64(0)
	}
	if tail := len(p.blocks) % 64; tail != 0 {
		p.free[len(p.free)-1] = uint64(1)<<uint(tail) - 1
	}
	p.hint = 0
	p.inUse = 0
	p.peak = 0
}

// Alloc returns the lowest-index free block, zeroed.
func (p *Pool[T]) Alloc() (Ref, error) {
	for w := p.hint; w < len(p.free); w++ {
		word := p.free[w]
		if word == 0 {
			continue
		}
		bit := bits.TrailingZeros64(word)
		p.free[w] = word &^ (uint64(1) << uint(bit))
		p.hint = w
		p.inUse++
		if p.inUse > p.peak {
			p.peak = p.inUse
		}
		i := w*64 + bit
		var zero T
		p.blocks[i] = zero
		return Ref(i), nil
	}
	p.hint = len(p.free)
	return Nil, ErrExhausted
}

// Free returns a block to the pool. Freeing a block twice panics.
func (p *Pool[T]) Free(r Ref) {
	w, bit := int(r)/64, uint(r)%64
	mask := uint64(1) << bit
	if p.free[w]&mask != 0 {
		panic("arena: double free")
	}
	p.free[w] |= mask
	p.inUse--
	if w < p.hint {
		p.hint = w
	}
}

// Get returns the block addressed by r. The pointer stays valid until the
// block is freed or the pool is reset.
func (p *Pool[T]) Get(r Ref) *T {
	return &p.blocks[r]
}

// Destroy releases the backing storage. A destroyed pool has zero capacity.
func (p *Pool[T]) Destroy() {
	p.blocks = nil
	p.free = nil
	p.hint = 0
	p.inUse = 0
}

// Cap returns the number of blocks the pool was created with.
func (p *Pool[T]) Cap() int { return len(p.blocks) }

// InUse returns the number of allocated blocks.
func (p *Pool[T]) InUse() int { return p.inUse }

// Peak returns the highest InUse value since the last Reset.
func (p *Pool[T]) Peak() int { return p.peak }
