package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/KromDaniel/regvm/pkg/regvm"
	"github.com/KromDaniel/regvm/stream"
)

// GrepCommand prints the lines of its inputs that a pattern matches at
// their start.
type GrepCommand struct {
	cli *Cli
	cmd *cobra.Command

	lineNumbers   bool
	count         bool
	skipExhausted bool
	maxLine       int
}

// NewGrepCommand creates the grep command.
func NewGrepCommand(cli *Cli) *cobra.Command {
	t := &GrepCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "grep PATTERN [FILE...]",
		Short: "Print lines that match PATTERN from their first byte",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.grep(args[0], args[1:])
		},
	}
	t.addFlags()
	return t.cmd
}

func (t *GrepCommand) addFlags() {
	f := t.cmd.Flags()
	f.BoolVarP(&t.lineNumbers, "line-number", "n", false, "prefix lines with their line number")
	f.BoolVarP(&t.count, "count", "c", false, "print only the number of matching lines")
	f.BoolVar(&t.skipExhausted, "skip-exhausted", false, "treat lines that exhaust the match limits as non-matching")
	f.IntVar(&t.maxLine, "max-line", stream.DefaultMaxLineLength, "longest accepted line in bytes")
}

func (t *GrepCommand) grep(pattern string, files []string) error {
	p, err := t.cli.compile(pattern)
	if err != nil {
		return err
	}
	a := t.cli.allocator()
	defer a.Destroy()

	cfg := stream.Config{
		MaxLineLength: t.maxLine,
		Limits:        t.cli.cfg.Limits(),
		SkipExhausted: t.skipExhausted,
		Observe:       t.cli.metrics.ObserveMatch,
	}
	if len(files) == 0 {
		return t.grepReader(t.cli.stdin, "", p, a, cfg)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		prefix := ""
		if len(files) > 1 {
			prefix = name + ":"
		}
		err = t.grepReader(f, prefix, p, a, cfg)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "grep %s", name)
		}
	}
	return nil
}

func (t *GrepCommand) grepReader(r io.Reader, prefix string, p *regvm.Program, a *regvm.Allocator, cfg stream.Config) error {
	out := t.cmd.OutOrStdout()
	if t.count {
		n, err := stream.Count(r, p, a, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s%d\n", prefix, n)
		return nil
	}
	return stream.Lines(r, p, a, cfg, func(m stream.Match) bool {
		if t.lineNumbers {
			fmt.Fprintf(out, "%s%d:%s\n", prefix, m.LineNumber, m.Line)
		} else {
			fmt.Fprintf(out, "%s%s\n", prefix, m.Line)
		}
		return true
	})
}

func init() {
	AddCommand(NewGrepCommand)
}
