package main

import (
	"fmt"
	"io"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

// ReplCommand reads patterns and subjects interactively, printing each
// program and its match result with timings.
type ReplCommand struct {
	cli *Cli
	cmd *cobra.Command
}

// NewReplCommand creates the repl command.
func NewReplCommand(cli *Cli) *cobra.Command {
	t := &ReplCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "repl",
		Short: "Interactively compile patterns and match subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.loop()
		},
	}
	return t.cmd
}

func (t *ReplCommand) loop() error {
	a := t.cli.allocator()
	defer a.Destroy()

	re := promptui.Prompt{Label: "RE"}
	str := promptui.Prompt{Label: "STR"}
	for {
		pattern, err := re.Run()
		if err != nil {
			return quit(err)
		}
		subject, err := str.Run()
		if err != nil {
			return quit(err)
		}
		if err := t.step(t.cmd.OutOrStdout(), pattern, subject, a); err != nil {
			return err
		}
	}
}

// step compiles pattern, bypassing the cache so the compile time is real,
// then dumps the program and matches subject.
func (t *ReplCommand) step(w io.Writer, pattern, subject string, a *regvm.Allocator) error {
	opts := t.cli.cfg.CompileOptions()
	opts.LogOutput = t.cli.stderr
	start := time.Now()
	p := regvm.CompileWith(pattern, opts)
	compileTime := time.Since(start)
	t.cli.metrics.ObserveCompile(p)
	if err := p.Err(); err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	if err := p.Dump(w); err != nil {
		return err
	}

	start = time.Now()
	end, st, err := t.cli.match(p, subject, a)
	matchTime := time.Since(start)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	fmt.Fprintf(w, "match end: %d (steps %d, peak threads %d, peak blocks %d)\n", end, st.Steps, st.PeakThreads, st.PeakBlocks)
	fmt.Fprintf(w, "compile: %s, match: %s\n", compileTime, matchTime)
	return nil
}

// quit maps the prompt's end-of-input and interrupt errors to a clean exit.
func quit(err error) error {
	if err == promptui.ErrEOF || err == promptui.ErrInterrupt {
		return nil
	}
	return err
}

func init() {
	AddCommand(NewReplCommand)
}
