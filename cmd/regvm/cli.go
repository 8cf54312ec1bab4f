package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/KromDaniel/regvm/internal/config"
	"github.com/KromDaniel/regvm/internal/logging"
	"github.com/KromDaniel/regvm/internal/metrics"
	"github.com/KromDaniel/regvm/internal/progcache"
	"github.com/KromDaniel/regvm/pkg/regvm"
)

// CommandFunc builds a subcommand bound to a Cli.
type CommandFunc func(c *Cli) *cobra.Command

// Commands collects the subcommands registered by init functions.
var Commands []CommandFunc

// AddCommand registers a subcommand.
func AddCommand(cmd CommandFunc) {
	Commands = append(Commands, cmd)
}

// Cli is the context shared by every subcommand.
type Cli struct {
	configFile string

	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	cache   *progcache.Cache

	rootCmd *cobra.Command
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewCli creates the root command reading from stdin and writing to
// stdout and stderr.
func NewCli(stdin io.Reader, stdout, stderr io.Writer) *Cli {
	c := &Cli{stdin: stdin, stdout: stdout, stderr: stderr}
	c.rootCmd = &cobra.Command{
		Use:           "regvm",
		Short:         "Compile and run regular expressions on a backtracking bytecode VM",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
	c.initFlags()
	return c
}

func (c *Cli) initFlags() {
	d := config.Default()
	f := c.rootCmd.PersistentFlags()
	f.StringVarP(&c.configFile, "config", "C", "", "config file (default ./regvm.{yaml,toml,json} if present)")
	f.Int(config.FlagName(config.KeyBlocks), d.Blocks, "allocator blocks per match")
	f.Int(config.FlagName(config.KeyInitialThreads), d.InitialThreads, "initial backtrack thread capacity")
	f.Int(config.FlagName(config.KeyMaxThreads), d.MaxThreads, "backtrack thread ceiling")
	f.Int64(config.FlagName(config.KeyMaxSteps), d.MaxSteps, "instruction limit per match, 0 for none")
	f.Int(config.FlagName(config.KeyMaxProgramWords), d.MaxProgramWords, "largest program a pattern may compile to, in words")
	f.Duration(config.FlagName(config.KeyCacheTTL), d.CacheTTL, "compiled program cache lifetime")
	f.BoolP(config.FlagName(config.KeyVerbose), "v", d.Verbose, "log compiler decisions")
	f.String(config.FlagName(config.KeyMetricsAddr), d.MetricsAddr, "serve Prometheus metrics on this address")
}

func (c *Cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.logger = logging.NewLogger(cfg.Verbose)
	c.logger.SetOutput(c.stderr)
	c.logger = c.logger.With("component", "cli")

	if c.metrics, err = metrics.NewCollector(nil); err != nil {
		return errors.Wrap(err, "register metrics")
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := c.metrics.Serve(cfg.MetricsAddr); err != nil {
				c.logger.Error("metrics server stopped", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		c.logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	opts := cfg.CompileOptions()
	opts.LogOutput = c.stderr
	c.cache = progcache.New(cfg.CacheTTL, progcache.Options{
		Compile: func(pattern string) *regvm.Program {
			return regvm.CompileWith(pattern, opts)
		},
		OnCompile: c.metrics.ObserveCompile,
	})
	return nil
}

// AddCommands adds subcommands to the root command.
func (c *Cli) AddCommands(cmds []CommandFunc) {
	for _, cmd := range cmds {
		c.rootCmd.AddCommand(cmd(c))
	}
}

// Execute runs the command line in os.Args.
func (c *Cli) Execute() error {
	return c.rootCmd.Execute()
}

// Run runs the command line args.
func (c *Cli) Run(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

// compile returns the cached program for pattern, failing on a compile
// error.
func (c *Cli) compile(pattern string) (*regvm.Program, error) {
	p := c.cache.Get(pattern)
	if err := p.Err(); err != nil {
		c.logger.Error("compile failed", "pattern", pattern, "err", err)
		return nil, err
	}
	return p, nil
}

// program compiles pattern, or loads the encoded program at path when
// path is set.
func (c *Cli) program(pattern, path string) (*regvm.Program, error) {
	if path == "" {
		return c.compile(pattern)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	p := new(regvm.Program)
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrapf(err, "decode program %s", path)
	}
	return p, nil
}

func (c *Cli) allocator() *regvm.Allocator {
	return regvm.NewAllocator(c.cfg.Blocks)
}

// match runs one match with the configured limits and records it.
func (c *Cli) match(p *regvm.Program, subject string, a *regvm.Allocator) (int, regvm.Stats, error) {
	a.Reset()
	end, st, err := p.MatchStats(subject, a, c.cfg.Limits())
	c.metrics.ObserveMatch(end, st, err)
	c.logger.Debug("matched", "end", end, "steps", st.Steps, "peak_threads", st.PeakThreads, "peak_blocks", st.PeakBlocks)
	return end, st, err
}
