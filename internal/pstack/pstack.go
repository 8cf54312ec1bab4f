// Package pstack implements persistent stacks of int32 values that share
// their common history as a reference-counted tree.
//
// Every node and every stack header lives in an arena.Pool. A node's count
// is the number of stacks whose top is that node plus the number of its
// children; a node is freed when a pop finds its count at one.
package pstack

import (
	"github.com/KromDaniel/regvm/internal/arena"
)

// Empty is returned by Pop and Top on a stack with no pushed values.
const Empty int32 = -1

// cell is either a tree node (parent, child, sibling, value, count) or a
// stack header (root, top). Both kinds share one block size.
type cell struct {
	parent  arena.Ref
	child   arena.Ref
	sibling arena.Ref
	value   int32
	count   int32

	root arena.Ref
	top  arena.Ref
}

// Pool is the block allocator that backs stacks.
type Pool = arena.Pool[cell]

// NewPool creates a pool of the given number of blocks.
func NewPool(blocks int) *Pool {
	return arena.New[cell](blocks)
}

// Stack is a handle to one logical stack. The zero value is not usable;
// obtain stacks from Create or Branch.
type Stack struct {
	h arena.Ref
}

// Create allocates a new tree root and a stack positioned on it.
func Create(p *Pool) (Stack, error) {
	root, err := p.Alloc()
	if err != nil {
		return Stack{h: arena.Nil}, err
	}
	h, err := p.Alloc()
	if err != nil {
		p.Free(root)
		return Stack{h: arena.Nil}, err
	}
	*p.Get(root) = cell{
		parent:  arena.Nil,
		child:   arena.Nil,
		sibling: arena.Nil,
		value:   Empty,
		count:   1,
	}
	*p.Get(h) = cell{root: root, top: root}
	return Stack{h: h}, nil
}

// Valid reports whether s refers to a live header.
func (s Stack) Valid() bool { return s.h != arena.Nil }

// Push adds v on top of s as a new child of the current top.
func (s Stack) Push(p *Pool, v int32) error {
	n, err := p.Alloc()
	if err != nil {
		return err
	}
	hdr := p.Get(s.h)
	parent := p.Get(hdr.top)
	*p.Get(n) = cell{
		parent:  hdr.top,
		child:   arena.Nil,
		sibling: parent.child,
		value:   v,
		count:   1,
	}
	parent.child = n
	hdr.top = n
	return nil
}

// Pop removes the top value of s and returns it, or Empty when s is at its
// root.
func (s Stack) Pop(p *Pool) int32 {
	hdr := p.Get(s.h)
	if hdr.top == hdr.root {
		return Empty
	}
	t := hdr.top
	node := p.Get(t)
	v, parent := node.value, node.parent
	if node.count == 1 {
		unlink(p, parent, t)
		p.Free(t)
	} else {
		node.count--
		p.Get(parent).count++
	}
	hdr.top = parent
	return v
}

// unlink removes child from parent's sibling chain.
func unlink(p *Pool, parent, child arena.Ref) {
	par := p.Get(parent)
	next := p.Get(child).sibling
	if par.child == child {
		par.child = next
		return
	}
	for c := par.child; c != arena.Nil; {
		cc := p.Get(c)
		if cc.sibling == child {
			cc.sibling = next
			return
		}
		c = cc.sibling
	}
}

// Top returns the top value of s without removing it.
func (s Stack) Top(p *Pool) int32 {
	hdr := p.Get(s.h)
	if hdr.top == hdr.root {
		return Empty
	}
	return p.Get(hdr.top).value
}

// Branch returns a second stack holding the same values as s. The two
// stacks evolve independently afterwards.
func (s Stack) Branch(p *Pool) (Stack, error) {
	h, err := p.Alloc()
	if err != nil {
		return Stack{h: arena.Nil}, err
	}
	src := p.Get(s.h)
	*p.Get(h) = cell{root: src.root, top: src.top}
	p.Get(src.top).count++
	return Stack{h: h}, nil
}

// Destroy pops every value, releases this stack's hold on the root and
// frees the header. s must not be used afterwards.
func (s Stack) Destroy(p *Pool) {
	hdr := p.Get(s.h)
	for hdr.top != hdr.root {
		s.Pop(p)
	}
	root := p.Get(hdr.root)
	if root.count == 1 {
		p.Free(hdr.root)
	} else {
		root.count--
	}
	p.Free(s.h)
}

// Depth returns the number of values on s.
func (s Stack) Depth(p *Pool) int {
	hdr := p.Get(s.h)
	n := 0
	for t := hdr.top; t != hdr.root; t = p.Get(t).parent {
		n++
	}
	return n
}
