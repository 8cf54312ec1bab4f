package pstack

import (
	"errors"
	"testing"

	"github.com/KromDaniel/regvm/internal/arena"
)

func mustCreate(t *testing.T, p *Pool) Stack {
	t.Helper()
	s, err := Create(p)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return s
}

func mustPush(t *testing.T, p *Pool, s Stack, vals ...int32) {
	t.Helper()
	for _, v := range vals {
		if err := s.Push(p, v); err != nil {
			t.Fatalf("Push(%d) error: %v", v, err)
		}
	}
}

func TestPushPopOrder(t *testing.T) {
	p := NewPool(64)
	s := mustCreate(t, p)

	if got := s.Top(p); got != Empty {
		t.Errorf("Top() on new stack = %d, want Empty", got)
	}
	mustPush(t, p, s, 1, 2, 3)
	if got := s.Depth(p); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
	for _, want := range []int32{3, 2, 1, Empty, Empty} {
		if got := s.Pop(p); got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}

	s.Destroy(p)
	if p.InUse() != 0 {
		t.Errorf("InUse() after Destroy = %d, want 0", p.InUse())
	}
}

func TestBranchDivergence(t *testing.T) {
	p := NewPool(64)
	a := mustCreate(t, p)
	mustPush(t, p, a, 10, 20)

	b, err := a.Branch(p)
	if err != nil {
		t.Fatalf("Branch() error: %v", err)
	}

	mustPush(t, p, a, 30)
	mustPush(t, p, b, 99)

	if got := a.Top(p); got != 30 {
		t.Errorf("a.Top() = %d, want 30", got)
	}
	if got := b.Top(p); got != 99 {
		t.Errorf("b.Top() = %d, want 99", got)
	}

	// Pop a below the branch point; b still sees the shared prefix.
	for _, want := range []int32{30, 20, 10} {
		if got := a.Pop(p); got != want {
			t.Errorf("a.Pop() = %d, want %d", got, want)
		}
	}
	for _, want := range []int32{99, 20, 10, Empty} {
		if got := b.Pop(p); got != want {
			t.Errorf("b.Pop() = %d, want %d", got, want)
		}
	}

	a.Destroy(p)
	b.Destroy(p)
	if p.InUse() != 0 {
		t.Errorf("InUse() after destroying both = %d, want 0", p.InUse())
	}
}

func TestBranchSharedNodeFreedOnce(t *testing.T) {
	tests := []struct {
		name     string
		aFirst   bool
		branches int
	}{
		{"original destroyed first", true, 1},
		{"branch destroyed first", false, 1},
		{"many branches", true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(128)
			a := mustCreate(t, p)
			mustPush(t, p, a, 1, 2, 3)

			var bs []Stack
			for i := 0; i < tt.branches; i++ {
				b, err := a.Branch(p)
				if err != nil {
					t.Fatalf("Branch() error: %v", err)
				}
				mustPush(t, p, b, int32(100+i))
				bs = append(bs, b)
			}

			if tt.aFirst {
				a.Destroy(p)
			}
			for i, b := range bs {
				if got := b.Top(p); got != int32(100+i) {
					t.Errorf("branch %d Top() = %d, want %d", i, got, 100+i)
				}
				b.Pop(p)
				if got := b.Top(p); got != 3 {
					t.Errorf("branch %d Top() after pop = %d, want 3", i, got)
				}
				b.Destroy(p)
			}
			if !tt.aFirst {
				if got := a.Top(p); got != 3 {
					t.Errorf("a.Top() = %d, want 3", got)
				}
				a.Destroy(p)
			}

			if p.InUse() != 0 {
				t.Errorf("InUse() = %d, want 0", p.InUse())
			}
		})
	}
}

func TestBranchOfBranch(t *testing.T) {
	p := NewPool(64)
	a := mustCreate(t, p)
	mustPush(t, p, a, 1)
	b, _ := a.Branch(p)
	mustPush(t, p, b, 2)
	c, _ := b.Branch(p)

	if got := c.Pop(p); got != 2 {
		t.Errorf("c.Pop() = %d, want 2", got)
	}
	if got := c.Pop(p); got != 1 {
		t.Errorf("c.Pop() = %d, want 1", got)
	}
	if got := b.Top(p); got != 2 {
		t.Errorf("b.Top() = %d, want 2", got)
	}
	if got := a.Top(p); got != 1 {
		t.Errorf("a.Top() = %d, want 1", got)
	}

	for _, s := range []Stack{b, c, a} {
		s.Destroy(p)
	}
	if p.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0", p.InUse())
	}
}

func TestExhaustion(t *testing.T) {
	p := NewPool(4)
	s := mustCreate(t, p)
	mustPush(t, p, s, 1, 2)

	if err := s.Push(p, 3); !errors.Is(err, arena.ErrExhausted) {
		t.Errorf("Push() on full pool error = %v, want ErrExhausted", err)
	}
	if _, err := s.Branch(p); !errors.Is(err, arena.ErrExhausted) {
		t.Errorf("Branch() on full pool error = %v, want ErrExhausted", err)
	}
	if got := s.Top(p); got != 2 {
		t.Errorf("Top() after failed push = %d, want 2", got)
	}

	p.Reset()
	for i := 0; i < p.Cap(); i++ {
		if _, err := p.Alloc(); err != nil {
			t.Fatalf("Alloc() #%d after Reset error: %v", i, err)
		}
	}
}
