package streaming

import (
	"io"
	"testing"

	"github.com/KromDaniel/regvm/pkg/regvm"
	"github.com/KromDaniel/regvm/stream"
)

// StreamingTestCase defines a pattern matched against generated lines.
type StreamingTestCase struct {
	Name    string
	Pattern string
	// InputGenerator creates a reader of lines with embedded matches.
	InputGenerator func(lines int) *LineReader
	// LineCounts to test.
	LineCounts []int
	// ChunkSizes to test for line boundary crossing.
	ChunkSizes []int
}

var streamingTestCases = []StreamingTestCase{
	{
		Name:           "Date",
		Pattern:        "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]",
		InputGenerator: NewDateLines,
		LineCounts:     []int{1, 1000, 20000},
		ChunkSizes:     []int{7, 64, 4096},
	},
	{
		Name:           "Email",
		Pattern:        "[a-z]+@[a-z]+\\.(com|org|net)",
		InputGenerator: NewEmailLines,
		LineCounts:     []int{2, 1000, 20000},
		ChunkSizes:     []int{13, 256, 4096},
	},
	{
		Name:           "IPv4",
		Pattern:        "[0-9]+\\.[0-9]+\\.[0-9]+\\.[0-9]+",
		InputGenerator: NewIPv4Lines,
		LineCounts:     []int{3, 1000, 20000},
		ChunkSizes:     []int{1, 100, 4096},
	},
}

func TestStreamingCounts(t *testing.T) {
	for _, tc := range streamingTestCases {
		prog := regvm.MustCompile(tc.Pattern)
		alloc := regvm.NewAllocator(1024)
		for _, lines := range tc.LineCounts {
			for _, chunk := range tc.ChunkSizes {
				gen := tc.InputGenerator(lines)
				got, err := stream.Count(NewChunkedReader(gen, chunk), prog, alloc, stream.DefaultConfig())
				if err != nil {
					t.Fatalf("%s/%d lines/chunk %d: Count() error: %v", tc.Name, lines, chunk, err)
				}
				if want := gen.ExpectedMatches(); got != want {
					t.Errorf("%s/%d lines/chunk %d: Count() = %d, want %d", tc.Name, lines, chunk, got, want)
				}
				if alloc.InUse() != 0 {
					t.Errorf("%s: allocator holds %d blocks after the stream", tc.Name, alloc.InUse())
				}
			}
		}
		alloc.Destroy()
	}
}

func TestStreamingOffsets(t *testing.T) {
	gen := NewLineReader("ab", "xy", 2, 9, 10)
	prog := regvm.MustCompile("ab")

	var offsets []int64
	err := stream.Lines(gen, prog, nil, stream.DefaultConfig(), func(m stream.Match) bool {
		offsets = append(offsets, m.StreamOffset)
		if m.End != 2 || m.LineNumber != m.StreamOffset/10+1 {
			t.Errorf("match = %+v", m)
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{0, 20, 40, 60, 80}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offsets[%d] = %d, want %d", i, offsets[i], want[i])
		}
	}
}

func TestStreamingPeakMemory(t *testing.T) {
	prog := regvm.MustCompile("(ab|a)*c")
	alloc := regvm.NewAllocator(64)
	var peak int
	cfg := stream.DefaultConfig()
	cfg.Observe = func(end int, st regvm.Stats, err error) {
		if st.PeakBlocks > peak {
			peak = st.PeakBlocks
		}
	}
	gen := NewLineReader("abac", "xyz", 1, 8, 5000)
	n, err := stream.Count(gen, prog, alloc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5000 {
		t.Errorf("Count() = %d, want 5000", n)
	}
	if peak == 0 || peak > alloc.Cap() {
		t.Errorf("peak blocks = %d, want within (0, %d]", peak, alloc.Cap())
	}
}

func BenchmarkStreamingDate(b *testing.B) {
	prog := regvm.MustCompile(streamingTestCases[0].Pattern)
	alloc := regvm.NewAllocator(1024)
	defer alloc.Destroy()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen := NewDateLines(1000)
		if _, err := stream.Count(gen, prog, alloc, stream.DefaultConfig()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStreamingFilter(b *testing.B) {
	prog := regvm.MustCompile(streamingTestCases[2].Pattern)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := stream.Filter(NewIPv4Lines(1000), prog, nil, stream.DefaultConfig())
		if _, err := io.Copy(io.Discard, r); err != nil {
			b.Fatal(err)
		}
	}
}
