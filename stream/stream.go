// Package stream matches a compiled program against every line of an
// io.Reader.
//
// Each line is matched from its first byte, the same way Match treats a
// subject. One allocator serves the whole stream and is reset before every
// line, so memory use is bounded by the allocator size and the longest line.
//
// Example usage:
//
//	file, _ := os.Open("large.log")
//	defer file.Close()
//
//	prog := regvm.MustCompile("ERROR|WARN")
//	err := stream.Lines(file, prog, regvm.NewAllocator(0), stream.DefaultConfig(),
//	    func(m stream.Match) bool {
//	        fmt.Printf("%d: %s\n", m.LineNumber, m.Line)
//	        return true // continue
//	    })
package stream

import (
	"bufio"
	"fmt"
	"io"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

// Config configures line matching.
type Config struct {
	// MaxLineLength is the longest line accepted, newline excluded.
	// Default: 1MB.
	MaxLineLength int

	// Limits bounds each line's match. Zero values select the defaults.
	Limits regvm.Limits

	// SkipExhausted treats lines whose match ran out of resources as
	// non-matching instead of stopping the stream.
	SkipExhausted bool

	// Observe, if set, is called with the result of every line's match.
	Observe func(end int, st regvm.Stats, err error)
}

// DefaultMaxLineLength is the MaxLineLength of DefaultConfig.
const DefaultMaxLineLength = 1 << 20

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{MaxLineLength: DefaultMaxLineLength}
}

// Validate validates the Config and returns an error if invalid.
func (c Config) Validate() error {
	if c.MaxLineLength < 0 {
		return fmt.Errorf("stream: negative max line length %d", c.MaxLineLength)
	}
	if c.Limits.InitialThreads < 0 || c.Limits.MaxThreads < 0 || c.Limits.MaxSteps < 0 {
		return fmt.Errorf("stream: negative limits %+v", c.Limits)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxLineLength == 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	return c
}

// Match describes a matching line.
//
// WARNING: Line points into an internal buffer that is reused after the
// callback returns. Copy it to retain it.
type Match struct {
	// Line is the line content without its terminator.
	Line []byte

	// LineNumber is the 1-based line number.
	LineNumber int64

	// StreamOffset is the byte position of the line start within the
	// stream (0-indexed).
	StreamOffset int64

	// End is the match end within Line.
	End int
}

// LineError reports a line that could not be matched.
type LineError struct {
	LineNumber int64
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("stream: line %d: %v", e.LineNumber, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Lines calls fn for every line of r that prog matches, until fn returns
// false or r is exhausted. Lines end with "\n" or "\r\n"; a final line
// without a terminator is matched too.
func Lines(r io.Reader, prog *regvm.Program, alloc *regvm.Allocator, cfg Config, fn func(Match) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	if alloc == nil {
		alloc = regvm.NewAllocator(0)
		defer alloc.Destroy()
	}

	var (
		offset, next int64
		lineNo       int64
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), cfg.MaxLineLength+2)
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		next += int64(advance)
		return advance, token, err
	})

	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		start := offset
		offset = next
		if len(line) > cfg.MaxLineLength {
			return &LineError{LineNumber: lineNo, Err: bufio.ErrTooLong}
		}

		alloc.Reset()
		end, st, err := prog.MatchStats(string(line), alloc, cfg.Limits)
		if cfg.Observe != nil {
			cfg.Observe(end, st, err)
		}
		if err != nil {
			if cfg.SkipExhausted {
				continue
			}
			return &LineError{LineNumber: lineNo, Err: err}
		}
		if end == regvm.NoMatch {
			continue
		}
		if !fn(Match{Line: line, LineNumber: lineNo, StreamOffset: start, End: end}) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return &LineError{LineNumber: lineNo + 1, Err: err}
	}
	return nil
}

// Count returns the number of lines of r that prog matches.
func Count(r io.Reader, prog *regvm.Program, alloc *regvm.Allocator, cfg Config) (int64, error) {
	var n int64
	err := Lines(r, prog, alloc, cfg, func(Match) bool {
		n++
		return true
	})
	return n, err
}

// Filter returns a reader of the lines of r that prog matches, each
// followed by "\n". A matching error is returned by Read after the lines
// that preceded it. Closing the returned reader stops the matching.
func Filter(r io.Reader, prog *regvm.Program, alloc *regvm.Allocator, cfg Config) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		var werr error
		err := Lines(r, prog, alloc, cfg, func(m Match) bool {
			line := make([]byte, len(m.Line)+1)
			copy(line, m.Line)
			line[len(m.Line)] = '\n'
			_, werr = pw.Write(line)
			return werr == nil
		})
		if err == nil {
			err = werr
		}
		pw.CloseWithError(err)
	}()
	return pr
}
