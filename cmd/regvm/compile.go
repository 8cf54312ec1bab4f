package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// CompileCommand writes the encoded program of a pattern to a file.
type CompileCommand struct {
	cli *Cli
	cmd *cobra.Command

	output string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(cli *Cli) *cobra.Command {
	t := &CompileCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "compile PATTERN",
		Short: "Compile a pattern and write its program in binary form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.compile(args[0])
		},
	}
	t.cmd.Flags().StringVarP(&t.output, "output", "o", "", "output file (required)")
	return t.cmd
}

func (t *CompileCommand) compile(pattern string) error {
	if t.output == "" {
		return fmt.Errorf("--output is required")
	}
	p, err := t.cli.compile(pattern)
	if err != nil {
		return err
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encode program")
	}
	if err := os.WriteFile(t.output, data, 0644); err != nil {
		return errors.Wrap(err, "write program")
	}
	t.cli.logger.Info("compiled", "pattern", pattern, "words", p.Len(), "output", t.output)
	return nil
}

func init() {
	AddCommand(NewCompileCommand)
}
