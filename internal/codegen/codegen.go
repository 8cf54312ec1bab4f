package codegen

import (
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"strings"

	"github.com/KromDaniel/regvm/pkg/regvm"
	"github.com/dave/jennifer/jen"
)

// Config holds the configuration for code generation.
type Config struct {
	Pattern          string
	Name             string // exported prefix of generated identifiers
	Package          string
	OutputFile       string
	Program          *regvm.Program // compiled from Pattern when nil
	GenerateTestFile bool           // also write <output>_test.go
	TestFileInputs   []string       // subjects checked by the generated test
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !token.IsIdentifier(c.Name) {
		return fmt.Errorf("name %q is not a Go identifier", c.Name)
	}
	if c.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("package %q is not a Go identifier", c.Package)
	}
	return nil
}

// Generator writes the Go source for one program.
type Generator struct {
	config Config
	name   string
	prog   *regvm.Program
}

// New prepares a generator. It fails when the configuration is invalid or
// the pattern does not compile.
func New(config Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	prog := config.Program
	if prog == nil {
		prog = regvm.Compile(config.Pattern)
	}
	if err := prog.Err(); err != nil {
		return nil, err
	}
	return &Generator{config: config, name: UpperFirst(config.Name), prog: prog}, nil
}

func (g *Generator) file() *jen.File {
	f := jen.NewFile(g.config.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by regvm for pattern %q. DO NOT EDIT.", g.config.Pattern))
	f.ImportName(RegvmPath, "regvm")
	return f
}

// source builds the program file: the pattern constant, the loaded
// program and a match helper.
func (g *Generator) source() *jen.File {
	f := g.file()
	patternName := g.name + PatternSuffix

	f.Commentf("%s is the source pattern of %s.", patternName, g.name)
	f.Const().Id(patternName).Op("=").Lit(g.config.Pattern)
	f.Line()

	f.Commentf("%s is the compiled program for %s.", g.name, patternName)
	f.Var().Id(g.name).Op("=").Qual(RegvmPath, "MustLoad").Call(
		jen.Index().Int32().ValuesFunc(func(grp *jen.Group) {
			for _, w := range g.prog.Code() {
				grp.Lit(int(w))
			}
		}),
	)
	f.Line()

	f.Commentf("%s%s returns the end of the match of %s at the start of %s, or regvm.NoMatch.", g.name, MatchSuffix, g.name, SubjectName)
	f.Func().Id(g.name+MatchSuffix).Params(
		jen.Id(SubjectName).String(),
		jen.Id(AllocatorName).Op("*").Qual(RegvmPath, "Allocator"),
	).Params(jen.Int(), jen.Error()).Block(
		jen.Return(jen.Id(g.name).Dot("Match").Call(jen.Id(SubjectName), jen.Id(AllocatorName))),
	)
	return f
}

// testSource builds a test comparing the generated program with a fresh
// compilation of the pattern on every configured input.
func (g *Generator) testSource() *jen.File {
	f := g.file()
	inputs := g.config.TestFileInputs
	if len(inputs) == 0 {
		inputs = []string{""}
	}
	inputsName := LowerFirst(g.name) + "Inputs"

	f.Var().Id(inputsName).Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, in := range inputs {
			grp.Lit(in)
		}
	})
	f.Line()

	f.Func().Id("Test"+g.name+MatchSuffix).Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.Id("want").Op(":=").Qual(RegvmPath, "MustCompile").Call(jen.Id(g.name+PatternSuffix)),
		jen.Id(AllocatorName).Op(":=").Qual(RegvmPath, "NewAllocator").Call(jen.Lit(0)),
		jen.For(jen.List(jen.Id("_"), jen.Id("in")).Op(":=").Range().Id(inputsName)).Block(
			jen.Id(AllocatorName).Dot("Reset").Call(),
			jen.List(jen.Id("got"), jen.Id("err")).Op(":=").Id(g.name+MatchSuffix).Call(jen.Id("in"), jen.Id(AllocatorName)),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(
				jen.Id("t").Dot("Fatalf").Call(jen.Lit("%s(%q) error: %v"), jen.Lit(g.name+MatchSuffix), jen.Id("in"), jen.Id("err")),
			),
			jen.Id(AllocatorName).Dot("Reset").Call(),
			jen.List(jen.Id("exp"), jen.Id("_")).Op(":=").Id("want").Dot("Match").Call(jen.Id("in"), jen.Id(AllocatorName)),
			jen.If(jen.Id("got").Op("!=").Id("exp")).Block(
				jen.Id("t").Dot("Errorf").Call(jen.Lit("%s(%q) = %d, want %d"), jen.Lit(g.name+MatchSuffix), jen.Id("in"), jen.Id("got"), jen.Id("exp")),
			),
		),
	)
	return f
}

// Render writes the program source to w.
func (g *Generator) Render(w io.Writer) error {
	return g.source().Render(w)
}

// RenderTest writes the test source to w.
func (g *Generator) RenderTest(w io.Writer) error {
	return g.testSource().Render(w)
}

// Generate writes OutputFile and, if configured, its test file.
func (g *Generator) Generate() error {
	if g.config.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if err := g.source().Save(g.config.OutputFile); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	if err := formatFile(g.config.OutputFile); err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}

	if g.config.GenerateTestFile || len(g.config.TestFileInputs) > 0 {
		testFile := TestFileName(g.config.OutputFile)
		if err := g.testSource().Save(testFile); err != nil {
			return fmt.Errorf("failed to save test file: %w", err)
		}
		if err := formatFile(testFile); err != nil {
			return fmt.Errorf("failed to format test file: %w", err)
		}
	}
	return nil
}

// TestFileName returns the test file path generated next to path.
func TestFileName(path string) string {
	return strings.TrimSuffix(path, ".go") + "_test.go"
}

// formatFile reads a file, formats it with go/format, and writes it back.
func formatFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := format.Source(src)
	if err != nil {
		return err
	}

	return os.WriteFile(path, formatted, 0644)
}
