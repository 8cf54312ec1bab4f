package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MatchCommand matches subjects against a pattern or a compiled program.
type MatchCommand struct {
	cli *Cli
	cmd *cobra.Command

	program string
	stats   bool
}

// NewMatchCommand creates the match command.
func NewMatchCommand(cli *Cli) *cobra.Command {
	t := &MatchCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "match [PATTERN] SUBJECT...",
		Short: "Print the match end of each subject, -1 for no match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.match(args)
		},
	}
	t.addFlags()
	return t.cmd
}

func (t *MatchCommand) addFlags() {
	t.cmd.Flags().StringVar(&t.program, "program", "", "load a program written by 'regvm compile' instead of a pattern")
	t.cmd.Flags().BoolVar(&t.stats, "stats", false, "print execution statistics")
}

func (t *MatchCommand) match(args []string) error {
	pattern, subjects := "", args
	if t.program == "" {
		if len(args) < 2 {
			return fmt.Errorf("match needs a pattern and at least one subject")
		}
		pattern, subjects = args[0], args[1:]
	}
	p, err := t.cli.program(pattern, t.program)
	if err != nil {
		return err
	}

	a := t.cli.allocator()
	defer a.Destroy()
	out := t.cmd.OutOrStdout()
	for _, s := range subjects {
		end, st, err := t.cli.match(p, s, a)
		if err != nil {
			return fmt.Errorf("match %q: %w", s, err)
		}
		if t.stats {
			fmt.Fprintf(out, "%q\t%d\tsteps=%d threads=%d peak_threads=%d peak_blocks=%d\n",
				s, end, st.Steps, st.Threads, st.PeakThreads, st.PeakBlocks)
			continue
		}
		fmt.Fprintf(out, "%q\t%d\n", s, end)
	}
	return nil
}

func init() {
	AddCommand(NewMatchCommand)
}
