// Package vm executes bytecode programs with a depth-first backtracking
// search.
//
// Pending alternatives are kept in a LIFO array of threads. Each thread owns
// a persistent loop-history stack whose top records the cursor at which the
// innermost active loop iteration started; REPEAT compares it with the
// current cursor to stop loops that make no progress.
//
// Matches are anchored at offset 0. The search is exhaustive and has no
// timeout, so patterns such as (a|a)*b on long inputs take exponential time
// unless a step limit is set.
package vm

import (
	"sync"

	"github.com/KromDaniel/regvm/internal/bytecode"
	"github.com/KromDaniel/regvm/internal/pstack"
)

// NoMatch is returned when the program does not match.
const NoMatch = -1

// Thread array capacity.
const (
	DefaultInitialThreads = 256
	DefaultMaxThreads     = 1 << 20
)

// Limits bounds the resources one match may use.
type Limits struct {
	InitialThreads int   // initial thread array capacity
	MaxThreads     int   // thread array ceiling
	MaxSteps       int64 // executed instructions; 0 means unlimited
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{InitialThreads: DefaultInitialThreads, MaxThreads: DefaultMaxThreads}
}

func (l Limits) withDefaults() Limits {
	if l.MaxThreads <= 0 {
		l.MaxThreads = DefaultMaxThreads
	}
	if l.InitialThreads <= 0 {
		l.InitialThreads = DefaultInitialThreads
	}
	if l.InitialThreads > l.MaxThreads {
		l.InitialThreads = l.MaxThreads
	}
	return l
}

// Stats describes the work done by the last Run.
type Stats struct {
	Steps       int64 // instructions executed
	Threads     int   // threads scheduled, the initial one included
	PeakThreads int   // most threads pending at once
	PeakBlocks  int   // pool high-water mark since its last Reset
}

type thread struct {
	pc, cur int
	st      pstack.Stack
}

var threadPool = sync.Pool{
	New: func() interface{} {
		s := make([]thread, 0, DefaultInitialThreads)
		return &s
	},
}

// maxPooledThreads keeps oversized arrays out of threadPool.
const maxPooledThreads = 1 << 14

// Machine runs one program against subjects, one at a time. The pool is
// used exclusively by the machine while Run is in progress.
type Machine struct {
	code    []int32
	pool    *pstack.Pool
	limits  Limits
	threads []thread
	stats   Stats
}

// New creates a machine for prog backed by pool.
func New(prog *bytecode.Program, pool *pstack.Pool, limits Limits) *Machine {
	return &Machine{
		code:   prog.Words(),
		pool:   pool,
		limits: limits.withDefaults(),
	}
}

// Stats returns the statistics of the last Run.
func (m *Machine) Stats() Stats {
	return m.stats
}

// Run matches input from offset 0 and returns the end offset of the first
// accepted path, or NoMatch. A non-nil error is always a *ResourceError and
// comes with NoMatch. Every stack block taken from the pool is returned
// before Run returns.
func (m *Machine) Run(input string) (int, error) {
	m.stats = Stats{}
	m.acquire()
	defer m.release()

	root, err := pstack.Create(m.pool)
	if err != nil {
		return NoMatch, m.blocksExhausted(err)
	}
	if err := m.schedule(thread{pc: 0, cur: 0, st: root}); err != nil {
		root.Destroy(m.pool)
		return NoMatch, err
	}

	code := m.code
	for len(m.threads) > 0 {
		t := m.threads[len(m.threads)-1]
		m.threads = m.threads[:len(m.threads)-1]
		pc, cur, st := t.pc, t.cur, t.st

	exec:
		for {
			m.stats.Steps++
			if m.limits.MaxSteps > 0 && m.stats.Steps > m.limits.MaxSteps {
				st.Destroy(m.pool)
				return NoMatch, &ResourceError{Resource: "steps", Limit: m.limits.MaxSteps, Err: ErrStepLimit}
			}

			switch bytecode.Opcode(code[pc]) {
			case bytecode.OpHalt:
				st.Destroy(m.pool)
				return NoMatch, nil

			case bytecode.OpAccept:
				st.Destroy(m.pool)
				return cur, nil

			case bytecode.OpPush:
				if err := st.Push(m.pool, int32(cur)); err != nil {
					st.Destroy(m.pool)
					return NoMatch, m.blocksExhausted(err)
				}
				pc++

			case bytecode.OpRepeat:
				if int(st.Top(m.pool)) == cur {
					st.Pop(m.pool)
					pc += 2
					continue
				}
				// Progress: prefer another iteration, keep exiting as the
				// alternative. Both continue with the iteration entry popped.
				alt, err := st.Branch(m.pool)
				if err != nil {
					st.Destroy(m.pool)
					return NoMatch, m.blocksExhausted(err)
				}
				alt.Pop(m.pool)
				if err := m.schedule(thread{pc: pc + 2, cur: cur, st: alt}); err != nil {
					alt.Destroy(m.pool)
					st.Destroy(m.pool)
					return NoMatch, err
				}
				st.Pop(m.pool)
				if err := st.Push(m.pool, int32(cur)); err != nil {
					st.Destroy(m.pool)
					return NoMatch, m.blocksExhausted(err)
				}
				pc += int(code[pc+1])

			case bytecode.OpLoop:
				c := byte(code[pc+1])
				n := cur
				for n < len(input) && input[n] == c {
					n++
				}
				if n == cur {
					break exec
				}
				cur = n
				pc += 2

			case bytecode.OpLoopSet:
				lo, hi := byte(code[pc+1]), byte(code[pc+2])
				n := cur
				for n < len(input) && input[n] >= lo && input[n] <= hi {
					n++
				}
				if n == cur {
					break exec
				}
				cur = n
				pc += 3

			case bytecode.OpMatch:
				if cur >= len(input) || input[cur] != byte(code[pc+1]) {
					break exec
				}
				cur++
				pc += 2

			case bytecode.OpMatchSet:
				if cur >= len(input) || input[cur] < byte(code[pc+1]) || input[cur] > byte(code[pc+2]) {
					break exec
				}
				cur++
				pc += 3

			case bytecode.OpAny:
				if cur >= len(input) {
					break exec
				}
				cur++
				pc++

			case bytecode.OpBegin:
				if cur != 0 {
					break exec
				}
				pc++

			case bytecode.OpEnd:
				if cur != len(input) {
					break exec
				}
				pc++

			case bytecode.OpSplit:
				alt, err := st.Branch(m.pool)
				if err != nil {
					st.Destroy(m.pool)
					return NoMatch, m.blocksExhausted(err)
				}
				if err := m.schedule(thread{pc: pc + int(code[pc+2]), cur: cur, st: alt}); err != nil {
					alt.Destroy(m.pool)
					st.Destroy(m.pool)
					return NoMatch, err
				}
				pc += int(code[pc+1])

			case bytecode.OpJmp:
				pc += int(code[pc+1])

			default:
				// Unreachable for validated programs.
				st.Destroy(m.pool)
				return NoMatch, nil
			}
		}
		st.Destroy(m.pool)
	}
	return NoMatch, nil
}

// schedule pushes t onto the thread array, growing it by half when full.
func (m *Machine) schedule(t thread) error {
	if len(m.threads) >= m.limits.MaxThreads {
		return &ResourceError{Resource: "threads", Limit: int64(m.limits.MaxThreads), Err: ErrThreadLimit}
	}
	if len(m.threads) == cap(m.threads) {
		n := cap(m.threads)
		next := n + n/2
		if next <= n {
			next = n + 1
		}
		if next > m.limits.MaxThreads {
			next = m.limits.MaxThreads
		}
		grown := make([]thread, len(m.threads), next)
		copy(grown, m.threads)
		m.threads = grown
	}
	m.threads = append(m.threads, t)
	m.stats.Threads++
	if len(m.threads) > m.stats.PeakThreads {
		m.stats.PeakThreads = len(m.threads)
	}
	return nil
}

func (m *Machine) blocksExhausted(err error) error {
	return &ResourceError{Resource: "blocks", Limit: int64(m.pool.Cap()), Err: err}
}

func (m *Machine) acquire() {
	buf := threadPool.Get().(*[]thread)
	m.threads = (*buf)[:0]
	if cap(m.threads) < m.limits.InitialThreads {
		m.threads = make([]thread, 0, m.limits.InitialThreads)
	}
}

// release destroys the stacks of threads that were never run and returns
// the thread array to threadPool.
func (m *Machine) release() {
	for _, t := range m.threads {
		t.st.Destroy(m.pool)
	}
	m.stats.PeakBlocks = m.pool.Peak()
	if cap(m.threads) <= maxPooledThreads {
		buf := m.threads[:0]
		threadPool.Put(&buf)
	}
	m.threads = nil
}
