package streaming

import (
	"io"
	"math/rand"
)

// LineReader generates newline-terminated lines of random noise. Every
// matchEvery-th line, starting with the first, begins with a fixed prefix.
// This is useful for testing streaming with predictable match counts.
type LineReader struct {
	prefix     []byte
	noise      []byte
	matchEvery int
	lineLen    int
	lines      int
	line       int
	buf        []byte
	rng        *rand.Rand
}

// NewLineReader creates a reader of lines lines, each lineLen bytes long
// before its newline (longer when the prefix does not fit).
func NewLineReader(prefix, noiseChars string, matchEvery, lineLen, lines int) *LineReader {
	return &LineReader{
		prefix:     []byte(prefix),
		noise:      []byte(noiseChars),
		matchEvery: matchEvery,
		lineLen:    lineLen,
		lines:      lines,
		rng:        rand.New(rand.NewSource(42)), // Deterministic for reproducibility
	}
}

func (r *LineReader) Read(p []byte) (n int, err error) {
	for len(r.buf) == 0 {
		if r.line >= r.lines {
			return 0, io.EOF
		}
		r.fill()
	}
	n = copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *LineReader) fill() {
	var line []byte
	if r.line%r.matchEvery == 0 {
		line = append(line, r.prefix...)
	}
	for len(line) < r.lineLen {
		line = append(line, r.noise[r.rng.Intn(len(r.noise))])
	}
	r.buf = append(line, '\n')
	r.line++
}

// ExpectedMatches returns the number of lines that begin with the prefix.
func (r *LineReader) ExpectedMatches() int64 {
	return int64((r.lines + r.matchEvery - 1) / r.matchEvery)
}

// ChunkedReader wraps a reader and returns data in fixed-size chunks.
// This simulates slow/fragmented network reads or tests line boundary handling.
type ChunkedReader struct {
	reader    io.Reader
	chunkSize int
}

// NewChunkedReader creates a reader that returns at most chunkSize bytes per Read.
func NewChunkedReader(r io.Reader, chunkSize int) *ChunkedReader {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &ChunkedReader{reader: r, chunkSize: chunkSize}
}

func (r *ChunkedReader) Read(p []byte) (n int, err error) {
	maxRead := r.chunkSize
	if len(p) < maxRead {
		maxRead = len(p)
	}
	return r.reader.Read(p[:maxRead])
}

// NewDateLines generates lines with a date at the start of every 5th line.
func NewDateLines(lines int) *LineReader {
	return NewLineReader("2024-01-15", "xyz \t", 5, 60, lines)
}

// NewEmailLines generates lines with an email at the start of every 3rd line.
func NewEmailLines(lines int) *LineReader {
	return NewLineReader("user@example.com", "abcdefghijk123 \t", 3, 80, lines)
}

// NewIPv4Lines generates lines with an address at the start of every 4th line.
func NewIPv4Lines(lines int) *LineReader {
	return NewLineReader("192.168.1.100", "abcdefghijk \t", 4, 40, lines)
}
