package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regvm/internal/codegen"
)

// GenCommand writes Go source embedding a compiled pattern.
type GenCommand struct {
	cli *Cli
	cmd *cobra.Command

	name       string
	pkg        string
	output     string
	test       bool
	testInputs arrayFlags
}

// NewGenCommand creates the gen command.
func NewGenCommand(cli *Cli) *cobra.Command {
	t := &GenCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "gen PATTERN",
		Short: "Generate a Go file that loads the compiled program of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.gen(args[0])
		},
	}
	t.addFlags()
	return t.cmd
}

func (t *GenCommand) addFlags() {
	f := t.cmd.Flags()
	f.StringVarP(&t.name, "name", "n", "", "exported name of the generated program (required)")
	f.StringVarP(&t.pkg, "package", "p", "main", "package of the generated file")
	f.StringVarP(&t.output, "output", "o", "", "output file (required)")
	f.BoolVar(&t.test, "test", false, "also generate a test file")
	f.Var(&t.testInputs, "test-input", "subject checked by the generated test (repeatable)")
}

func (t *GenCommand) gen(pattern string) error {
	if t.output == "" {
		return fmt.Errorf("--output is required")
	}
	p, err := t.cli.compile(pattern)
	if err != nil {
		return err
	}
	g, err := codegen.New(codegen.Config{
		Pattern:          pattern,
		Name:             t.name,
		Package:          t.pkg,
		OutputFile:       t.output,
		Program:          p,
		GenerateTestFile: t.test,
		TestFileInputs:   t.testInputs,
	})
	if err != nil {
		return err
	}
	if err := g.Generate(); err != nil {
		return err
	}
	fmt.Fprintf(t.cmd.OutOrStdout(), "wrote %s\n", t.output)
	if t.test || len(t.testInputs) > 0 {
		fmt.Fprintf(t.cmd.OutOrStdout(), "wrote %s\n", codegen.TestFileName(t.output))
	}
	return nil
}

func init() {
	AddCommand(NewGenCommand)
}
