package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DumpCommand prints the disassembly of a pattern or a compiled program.
type DumpCommand struct {
	cli *Cli
	cmd *cobra.Command

	program string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(cli *Cli) *cobra.Command {
	t := &DumpCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "dump [PATTERN]",
		Short: "Disassemble the bytecode of a pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.dump(args)
		},
	}
	t.cmd.Flags().StringVar(&t.program, "program", "", "disassemble a program written by 'regvm compile'")
	return t.cmd
}

func (t *DumpCommand) dump(args []string) error {
	var pattern string
	switch {
	case len(args) == 1:
		pattern = args[0]
	case t.program == "":
		return fmt.Errorf("dump needs a pattern or --program")
	}
	p, err := t.cli.program(pattern, t.program)
	if err != nil {
		return err
	}
	return p.Dump(t.cmd.OutOrStdout())
}

func init() {
	AddCommand(NewDumpCommand)
}
