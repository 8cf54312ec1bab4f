package progcache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

func TestGetCachesPrograms(t *testing.T) {
	var compiled int32
	c := New(time.Minute, Options{OnCompile: func(*regvm.Program) { atomic.AddInt32(&compiled, 1) }})

	p1 := c.Get("(ab)*c")
	p2 := c.Get("(ab)*c")
	if p1 != p2 {
		t.Error("Get() returned different programs for the same pattern")
	}
	if got, _ := p1.Match("abc", nil); got != 3 {
		t.Errorf("Match(abc) = %d, want 3", got)
	}
	c.Get("x")
	if compiled != 2 || c.Len() != 2 {
		t.Errorf("compiled = %d, Len() = %d, want 2 and 2", compiled, c.Len())
	}

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len() after Flush = %d", c.Len())
	}
	c.Get("x")
	if compiled != 3 {
		t.Errorf("compiled after Flush = %d, want 3", compiled)
	}
}

func TestGetCachesCompileErrors(t *testing.T) {
	c := New(0, Options{})
	p := c.Get("(a")
	if p.Err() == nil {
		t.Fatal("Err() = nil for bad pattern")
	}
	if c.Get("(a") != p {
		t.Error("failed program was not cached")
	}
}

func TestConcurrentMissesCompileOnce(t *testing.T) {
	var compiled int32
	release := make(chan struct{})
	c := New(time.Minute, Options{
		Compile: func(pattern string) *regvm.Program {
			atomic.AddInt32(&compiled, 1)
			<-release
			return regvm.Compile(pattern)
		},
	})

	var wg sync.WaitGroup
	results := make([]*regvm.Program, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get("a+b")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, p := range results {
		if p != results[0] {
			t.Fatalf("results[%d] differs from results[0]", i)
		}
	}
	// Late goroutines may miss the flight and find the cached entry instead;
	// either way the pattern is compiled once.
	if compiled != 1 {
		t.Errorf("compiled %d times, want 1", compiled)
	}
}

func TestExpiration(t *testing.T) {
	c := New(10*time.Millisecond, Options{CleanupInterval: time.Hour})
	p := c.Get("a")
	time.Sleep(30 * time.Millisecond)
	if c.Get("a") == p {
		t.Error("Get() after expiry returned the stale program")
	}
}
