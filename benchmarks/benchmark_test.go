package benchmarks_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

const (
	emailPattern = "[a-z][a-z]*@[a-z][a-z]*\\.(com|org|net)"
	ipv4Pattern  = "[0-9]+\\.[0-9]+\\.[0-9]+\\.[0-9]+"
	logPattern   = "(GET|POST|PUT|DELETE) /[a-z]*"
)

var emailInputs = []string{
	"test@example.com",
	"user@domain.org",
	"a@b.net",
	"invalid@",
	"not-an-email",
	"",
}

var ipv4Inputs = []string{
	"192.168.1.1",
	"10.0.0.1",
	"255.255.255.255",
	"999.999.999.999",
	"not-an-ip",
	"",
}

var logInputs = []string{
	"GET /index/home HTTP/1.1",
	"POST /api/users",
	"DELETE /x",
	"PATCH /y",
	"",
}

func benchStd(b *testing.B, pattern string, inputs []string) {
	re := regexp.MustCompile("^(?:" + pattern + ")")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, input := range inputs {
			re.FindStringIndex(input)
		}
	}
}

func benchRegvm(b *testing.B, pattern string, inputs []string, a *regvm.Allocator) {
	prog := regvm.MustCompile(pattern)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, input := range inputs {
			if a != nil {
				a.Reset()
			}
			if _, err := prog.Match(input, a); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// Email benchmarks - Standard regexp
func BenchmarkEmailStdRegexp(b *testing.B) { benchStd(b, emailPattern, emailInputs) }

// Email benchmarks - pooled scratch allocator
func BenchmarkEmailRegvm(b *testing.B) { benchRegvm(b, emailPattern, emailInputs, nil) }

// Email benchmarks - caller-owned allocator
func BenchmarkEmailRegvmAllocator(b *testing.B) {
	benchRegvm(b, emailPattern, emailInputs, regvm.NewAllocator(1024))
}

func BenchmarkIPv4StdRegexp(b *testing.B) { benchStd(b, ipv4Pattern, ipv4Inputs) }

func BenchmarkIPv4Regvm(b *testing.B) { benchRegvm(b, ipv4Pattern, ipv4Inputs, nil) }

func BenchmarkIPv4RegvmAllocator(b *testing.B) {
	benchRegvm(b, ipv4Pattern, ipv4Inputs, regvm.NewAllocator(1024))
}

func BenchmarkLogStdRegexp(b *testing.B) { benchStd(b, logPattern, logInputs) }

func BenchmarkLogRegvmAllocator(b *testing.B) {
	benchRegvm(b, logPattern, logInputs, regvm.NewAllocator(1024))
}

// Pathological backtracking: (a|a)*b on a run of a's doubles the work per
// character.
func BenchmarkPathologicalRegvm(b *testing.B) {
	prog := regvm.MustCompile("(a|a)*b")
	input := strings.Repeat("a", 16)
	a := regvm.NewAllocator(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Reset()
		if _, err := prog.Match(input, a); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		regvm.Compile("^(GET|POST) /[a-z]*(\\?[a-z]*=[0-9]*)?$")
	}
}

func TestBenchmarkPatternsAgree(t *testing.T) {
	cases := []struct {
		pattern string
		inputs  []string
	}{
		{emailPattern, emailInputs},
		{ipv4Pattern, ipv4Inputs},
		{logPattern, logInputs},
	}
	for _, c := range cases {
		re := regexp.MustCompile("^(?:" + c.pattern + ")")
		prog := regvm.MustCompile(c.pattern)
		for _, in := range c.inputs {
			want := regvm.NoMatch
			if loc := re.FindStringIndex(in); loc != nil {
				want = loc[1]
			}
			if got, err := prog.Match(in, nil); err != nil || got != want {
				t.Errorf("Match(%q, %q) = %d, %v, want %d", c.pattern, in, got, err, want)
			}
		}
	}
}
