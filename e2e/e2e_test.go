package e2e

import (
	"fmt"
	"math/rand"
	"regexp"
	"testing"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

// TestCase represents a pattern and the subjects it is checked on.
type TestCase struct {
	Pattern string
	Inputs  []string
}

// Patterns whose semantics coincide with those of package regexp: no '+'
// over a single byte or range (those loops are possessive here) and no
// loops over expressions that can match the empty string.
var testCases = []TestCase{
	{"abc", []string{"abc", "abcd", "ab", ""}},
	{"a|b|c", []string{"a", "b", "c", "d", ""}},
	{"(ab)*c", []string{"c", "abc", "ababc", "abab", "x"}},
	{"[0-9][0-9]*-[0-9]*", []string{"12-34", "1-", "-1", "123-4x"}},
	{"(GET|POST|PUT) /[a-z]*", []string{"GET /index", "POST /", "DELETE /x", "PUT /abc/def"}},
	{"^(a|b)*$", []string{"", "abba", "abc"}},
	{"x?y?z", []string{"z", "xz", "yz", "xyz", "xy"}},
	{"(a|ab)(c|bcd)", []string{"abcd", "acd", "ab"}},
	{".*x", []string{"axbx", "x", "abc", "a\nx"}},
	{"a.c", []string{"abc", "a\nc", "ac"}},
	{"[a-z]+@[a-z]+\\.(com|org)", []string{"bob@example.com", "bob@example.net", "@x.com", "a@b.org!"}},
	{"a*a", []string{"aaa", "a", ""}},
	{"(ab|a)(bc|c)?", []string{"abc", "ac", "a"}},
	{"[x-z]?[0-9]*", []string{"z99", "", "9", "a"}},
	{"(a|b)*abb", []string{"abb", "aabb", "babb", "ab"}},
	{"((ab)*c)*$", []string{"ababcc", "abcab", ""}},
	{"\\(\\*\\)", []string{"(*)", "(*", "*"}},
}

func reference(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile("(?s)^(?:" + pattern + ")")
	if err != nil {
		t.Fatalf("regexp.Compile(%q): %v", pattern, err)
	}
	return re
}

func want(re *regexp.Regexp, s string) int {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return regvm.NoMatch
	}
	return loc[1]
}

// TestAgainstRegexp checks curated patterns against package regexp.
func TestAgainstRegexp(t *testing.T) {
	alloc := regvm.NewAllocator(0)
	defer alloc.Destroy()

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Pattern%02d", i+1), func(t *testing.T) {
			re := reference(t, tc.Pattern)
			prog := regvm.Compile(tc.Pattern)
			if err := prog.Err(); err != nil {
				t.Fatalf("Compile(%q): %v", tc.Pattern, err)
			}
			for _, in := range tc.Inputs {
				alloc.Reset()
				got, err := prog.Match(in, alloc)
				if err != nil {
					t.Fatalf("Match(%q, %q): %v", tc.Pattern, in, err)
				}
				if w := want(re, in); got != w {
					t.Errorf("Match(%q, %q) = %d, regexp says %d", tc.Pattern, in, got, w)
				}
			}
		})
	}
}

// genPattern builds a random pattern over a small alphabet. It reports
// whether the pattern can match the empty string so that loops are only
// placed over expressions that cannot.
func genPattern(rng *rand.Rand, depth int) (string, bool) {
	if depth == 0 || rng.Intn(10) < 3 {
		atoms := []string{"a", "b", "c", ".", "[a-b]", "[b-c]"}
		return atoms[rng.Intn(len(atoms))], false
	}
	x, xn := genPattern(rng, depth-1)
	switch rng.Intn(5) {
	case 0, 1:
		y, yn := genPattern(rng, depth-1)
		return x + y, xn && yn
	case 2:
		y, yn := genPattern(rng, depth-1)
		return "(" + x + "|" + y + ")", xn || yn
	case 3:
		return "(" + x + ")?", true
	default:
		if xn {
			return "(" + x + ")?", true
		}
		return "(" + x + ")*", true
	}
}

func subjects(alphabet string, maxLen int) []string {
	out := []string{""}
	prev := []string{""}
	for n := 1; n <= maxLen; n++ {
		var next []string
		for _, s := range prev {
			for i := 0; i < len(alphabet); i++ {
				next = append(next, s+alphabet[i:i+1])
			}
		}
		out = append(out, next...)
		prev = next
	}
	return out
}

// TestRandomPatterns compares generated patterns with package regexp on
// every subject over {a,b,c} up to length 4.
func TestRandomPatterns(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	inputs := subjects("abc", 4)
	alloc := regvm.NewAllocator(0)
	defer alloc.Destroy()

	for i := 0; i < 200; i++ {
		pattern, _ := genPattern(rng, 4)
		re := reference(t, pattern)
		prog := regvm.Compile(pattern)
		if err := prog.Err(); err != nil {
			t.Fatalf("Compile(%q): %v", pattern, err)
		}
		for _, in := range inputs {
			alloc.Reset()
			got, err := prog.Match(in, alloc)
			if err != nil {
				t.Fatalf("Match(%q, %q): %v", pattern, in, err)
			}
			if w := want(re, in); got != w {
				t.Errorf("Match(%q, %q) = %d, regexp says %d", pattern, in, got, w)
			}
		}
	}
}
