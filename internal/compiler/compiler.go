// Package compiler turns a pattern into a bytecode program.
//
// Compilation runs in two passes: a recursive-descent parse into a small
// tree, then a lowering pass that emits instructions with relative jump
// offsets. A pattern that fails to compile yields the HALT program along
// with an *Error describing the failure.
package compiler

import (
	"fmt"

	"github.com/KromDaniel/regvm/internal/bytecode"
	"github.com/KromDaniel/regvm/internal/logging"
)

// Config holds the configuration for one compilation.
type Config struct {
	Pattern  string
	MaxWords int             // 0 selects MaxProgramWords
	Logger   *logging.Logger // nil disables logging
}

// Compiler compiles a single pattern.
type Compiler struct {
	config Config
	logger *logging.Logger
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	if config.MaxWords <= 0 {
		config.MaxWords = MaxProgramWords
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Compiler{config: config, logger: logger.With("component", "compiler")}
}

// Compile parses and lowers the pattern. It never returns a nil program:
// on failure the result is bytecode.Halt() and the error is an *Error.
func (c *Compiler) Compile() (*bytecode.Program, error) {
	c.logger.Section("Compile")
	c.logger.Log("Pattern: %s", c.config.Pattern)

	tree, err := parse(c.config.Pattern)
	if err != nil {
		c.logger.Debug("parse failed", "err", err)
		return bytecode.Halt(), err
	}
	c.logger.Log("Tree: %v", tree)

	e := &emitter{logger: c.logger}
	e.gen(tree)
	e.emit(bytecode.OpAccept)

	if len(e.code) > c.config.MaxWords {
		err := &Error{
			Pattern: c.config.Pattern,
			Pos:     len(c.config.Pattern),
			Msg:     fmt.Sprintf("program of %d words exceeds limit of %d", len(e.code), c.config.MaxWords),
		}
		c.logger.Debug("program too large", "words", len(e.code), "limit", c.config.MaxWords)
		return bytecode.Halt(), err
	}

	prog, err := bytecode.New(e.code)
	if err != nil {
		return bytecode.Halt(), fmt.Errorf("compiler emitted an invalid program: %w", err)
	}
	c.logger.Log("Program words: %d", prog.Len())
	return prog, nil
}

// Compile compiles pattern with the default configuration.
func Compile(pattern string) (*bytecode.Program, error) {
	return New(Config{Pattern: pattern}).Compile()
}
