// Package casefile reads TOML files of match expectations:
//
//	[[case]]
//	name = "greedy star"
//	pattern = "a*a"
//	subject = "aaa"
//	want = 3
//
// want is the expected end offset, -1 for no match. compile_error = true
// marks a pattern that must fail to compile.
package casefile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// File is a parsed case file.
type File struct {
	Cases []Case `toml:"case"`

	// Path is the file the cases were read from (set at load time).
	Path string `toml:"-"`
}

// Case is one pattern/subject expectation.
type Case struct {
	Name         string `toml:"name"`
	Pattern      string `toml:"pattern"`
	Subject      string `toml:"subject"`
	Want         int    `toml:"want"`
	CompileError bool   `toml:"compile_error"`
}

// Outcome is what a matcher reports for one case.
type Outcome struct {
	End        int
	CompileErr error // the pattern failed to compile
	Err        error // the match could not be completed
}

// Result pairs a case with its outcome.
type Result struct {
	Case    Case
	Outcome Outcome
}

// Passed reports whether the outcome meets the expectation.
func (r Result) Passed() bool {
	if r.Outcome.Err != nil {
		return false
	}
	if r.Case.CompileError {
		return r.Outcome.CompileErr != nil
	}
	return r.Outcome.CompileErr == nil && r.Outcome.End == r.Case.Want
}

func (r Result) String() string {
	status := "ok"
	if !r.Passed() {
		status = "FAIL"
	}
	o := r.Outcome
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%-4s %s: %v", status, r.Case.Name, o.Err)
	case o.CompileErr != nil:
		return fmt.Sprintf("%-4s %s: %q compile error: %v", status, r.Case.Name, r.Case.Pattern, o.CompileErr)
	}
	return fmt.Sprintf("%-4s %s: %q on %q = %d, want %d", status, r.Case.Name, r.Case.Pattern, r.Case.Subject, o.End, r.Case.Want)
}

// Parse decodes case file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("casefile: parse: %w", err)
	}
	f.normalize()
	return &f, nil
}

// Load reads and decodes the case file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("casefile: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

func (f *File) normalize() {
	for i := range f.Cases {
		if f.Cases[i].Name == "" {
			f.Cases[i].Name = fmt.Sprintf("case %d", i+1)
		}
	}
}

// Run evaluates every case with match, in file order.
func (f *File) Run(match func(Case) Outcome) []Result {
	results := make([]Result, len(f.Cases))
	for i, c := range f.Cases {
		results[i] = Result{Case: c, Outcome: match(c)}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}
