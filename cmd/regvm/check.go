package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regvm/internal/casefile"
)

// CheckCommand runs TOML case files and reports the failures.
type CheckCommand struct {
	cli *Cli
	cmd *cobra.Command

	all bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(cli *Cli) *cobra.Command {
	t := &CheckCommand{cli: cli}
	t.cmd = &cobra.Command{
		Use:   "check FILE...",
		Short: "Run the pattern/subject cases of TOML case files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.check(args)
		},
	}
	t.cmd.Flags().BoolVar(&t.all, "all", false, "also print passing cases")
	return t.cmd
}

func (t *CheckCommand) check(paths []string) error {
	a := t.cli.allocator()
	defer a.Destroy()
	run := func(c casefile.Case) casefile.Outcome {
		p := t.cli.cache.Get(c.Pattern)
		if err := p.Err(); err != nil {
			return casefile.Outcome{End: -1, CompileErr: err}
		}
		end, _, err := t.cli.match(p, c.Subject, a)
		return casefile.Outcome{End: end, Err: err}
	}

	out := t.cmd.OutOrStdout()
	var total, failed int
	for _, path := range paths {
		f, err := casefile.Load(path)
		if err != nil {
			return err
		}
		results := f.Run(run)
		for _, r := range results {
			if t.all || !r.Passed() {
				fmt.Fprintf(out, "%s: %s\n", path, r)
			}
		}
		total += len(results)
		failed += len(casefile.Failed(results))
	}
	fmt.Fprintf(out, "%d cases, %d failed\n", total, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, total)
	}
	return nil
}

func init() {
	AddCommand(NewCheckCommand)
}
