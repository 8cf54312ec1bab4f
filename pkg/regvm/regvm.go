// Package regvm compiles regular expressions to a compact bytecode and
// matches them with a backtracking virtual machine.
//
// The supported syntax is deliberately small: literal bytes, '.', '^', '$',
// escapes (\x), single-range classes ([a-z]), alternation, grouping and the
// greedy quantifiers ?, * and +. Matching is anchored at the start of the
// subject and reports the end offset of the first successful path.
//
// A '+' applied to a single byte or range repeats possessively: "a+a" never
// matches, since the loop does not give characters back.
package regvm

import (
	"fmt"
	"io"
	"sync"

	"github.com/KromDaniel/regvm/internal/arena"
	"github.com/KromDaniel/regvm/internal/bytecode"
	"github.com/KromDaniel/regvm/internal/compiler"
	"github.com/KromDaniel/regvm/internal/logging"
	"github.com/KromDaniel/regvm/internal/pstack"
	"github.com/KromDaniel/regvm/internal/vm"
)

// NoMatch is the result of a match that fails.
const NoMatch = vm.NoMatch

// DefaultBlocks is the allocator size selected by NewAllocator(0).
const DefaultBlocks = arena.DefaultBlocks

// ErrResourceExhausted is matched (errors.Is) by every error Match returns.
var ErrResourceExhausted = vm.ErrResourceExhausted

type (
	// Limits bounds the backtracking state of one match.
	Limits = vm.Limits
	// Stats describes the work done by one match.
	Stats = vm.Stats
	// CompileError describes a pattern that failed to compile.
	CompileError = compiler.Error
	// ResourceError describes a match aborted by a limit.
	ResourceError = vm.ResourceError
)

// DefaultLimits returns the thread limits used by Match.
func DefaultLimits() Limits { return vm.DefaultLimits() }

// Options configures compilation.
type Options struct {
	// Verbose logs parse and lowering decisions.
	Verbose bool

	// LogOutput receives verbose logs. Defaults to stderr.
	LogOutput io.Writer

	// MaxWords bounds the program size. Zero selects the default limit.
	MaxWords int
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.MaxWords < 0 {
		return fmt.Errorf("max words cannot be negative")
	}
	return nil
}

// Program is a compiled pattern. It is immutable and safe for concurrent
// use, provided each concurrent match uses its own Allocator.
type Program struct {
	pattern string
	prog    *bytecode.Program
	err     error
}

// Compile compiles pattern. It never fails hard: a pattern that cannot be
// compiled yields a program that matches nothing, and Err reports why.
func Compile(pattern string) *Program {
	return CompileWith(pattern, Options{})
}

// CompileWith is Compile with options.
func CompileWith(pattern string, opts Options) *Program {
	if err := opts.Validate(); err != nil {
		return &Program{pattern: pattern, prog: bytecode.Halt(), err: fmt.Errorf("invalid options: %w", err)}
	}
	var logger *logging.Logger
	if opts.Verbose {
		logger = logging.NewLogger(true)
		if opts.LogOutput != nil {
			logger.SetOutput(opts.LogOutput)
		}
	}
	prog, err := compiler.New(compiler.Config{
		Pattern:  pattern,
		MaxWords: opts.MaxWords,
		Logger:   logger,
	}).Compile()
	return &Program{pattern: pattern, prog: prog, err: err}
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string) *Program {
	p := Compile(pattern)
	if p.err != nil {
		panic("regvm: " + p.err.Error())
	}
	return p
}

// Load builds a program from raw bytecode words, such as those returned by
// Code, after validating them.
func Load(code []int32) (*Program, error) {
	prog, err := bytecode.New(code)
	if err != nil {
		return nil, err
	}
	return &Program{prog: prog}, nil
}

// MustLoad is like Load but panics on invalid bytecode.
func MustLoad(code []int32) *Program {
	p, err := Load(code)
	if err != nil {
		panic("regvm: " + err.Error())
	}
	return p
}

// Pattern returns the source pattern, or "" for loaded programs.
func (p *Program) Pattern() string { return p.pattern }

func (p *Program) String() string { return p.pattern }

// Err returns the compile error, if any. A program with a compile error
// matches nothing.
func (p *Program) Err() error { return p.err }

// Len returns the program length in words.
func (p *Program) Len() int { return p.prog.Len() }

// Code returns a copy of the bytecode words.
func (p *Program) Code() []int32 {
	return append([]int32(nil), p.prog.Words()...)
}

// Disassemble returns a listing of the program, one instruction per line.
func (p *Program) Disassemble() string { return p.prog.Disassemble() }

// Dump writes the disassembly to w.
func (p *Program) Dump(w io.Writer) error { return p.prog.Dump(w) }

// MarshalBinary encodes the bytecode. The pattern is not included.
func (p *Program) MarshalBinary() ([]byte, error) { return p.prog.MarshalBinary() }

// UnmarshalBinary decodes bytecode produced by MarshalBinary.
func (p *Program) UnmarshalBinary(data []byte) error {
	prog, err := bytecode.Decode(data)
	if err != nil {
		return err
	}
	*p = Program{prog: prog}
	return nil
}

// Match runs p against subject; see the package-level Match.
func (p *Program) Match(subject string, a *Allocator) (int, error) {
	end, _, err := p.MatchStats(subject, a, Limits{})
	return end, err
}

// MatchStats is Match with explicit limits, also returning execution
// statistics. Zero limits select the defaults.
func (p *Program) MatchStats(subject string, a *Allocator, limits Limits) (int, Stats, error) {
	if a == nil {
		a = scratch.Get().(*Allocator)
		defer func() {
			a.Reset()
			scratch.Put(a)
		}()
	}
	m := vm.New(p.prog, a.pool, limits)
	end, err := m.Run(subject)
	return end, m.Stats(), err
}

// Match reports the end offset of the match of p at the start of subject,
// or NoMatch. a supplies stack memory and may be nil, in which case a
// pooled allocator is used. The only errors are resource errors, which come
// with NoMatch and mean the search could not be completed.
func Match(p *Program, subject string, a *Allocator) (int, error) {
	return p.Match(subject, a)
}

var scratch = sync.Pool{
	New: func() interface{} { return NewAllocator(0) },
}

// Allocator is the fixed-size block pool that holds the loop-history
// stacks of a match. It is reused across matches and must not be shared by
// concurrent matches.
type Allocator struct {
	pool *pstack.Pool
}

// NewAllocator creates an allocator of the given number of blocks.
// blocks <= 0 selects DefaultBlocks.
func NewAllocator(blocks int) *Allocator {
	return &Allocator{pool: pstack.NewPool(blocks)}
}

// Reset marks every block free. Call it between matches.
func (a *Allocator) Reset() { a.pool.Reset() }

// Destroy releases the allocator's memory. A destroyed allocator has no
// capacity; every match using it fails with a resource error.
func (a *Allocator) Destroy() { a.pool.Destroy() }

// InUse returns the number of allocated blocks.
func (a *Allocator) InUse() int { return a.pool.InUse() }

// Cap returns the number of blocks.
func (a *Allocator) Cap() int { return a.pool.Cap() }
