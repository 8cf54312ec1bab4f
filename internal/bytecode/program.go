package bytecode

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty        = errors.New("empty program")
	ErrBadOpcode    = errors.New("unknown opcode")
	ErrTruncated    = errors.New("instruction truncated")
	ErrBadOperand   = errors.New("character operand outside 0..255")
	ErrBadTarget    = errors.New("jump target is not an instruction")
	ErrNoTerminator = errors.New("last instruction is neither ACCEPT nor HALT")
	ErrVersion      = errors.New("unsupported program encoding version")
)

// DecodeError reports an invalid instruction in a raw program.
type DecodeError struct {
	PC  int
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bytecode: invalid program at %d: %v", e.PC, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Program is a validated, immutable instruction array. It is safe to share
// between goroutines.
type Program struct {
	code []int32
}

var haltProgram = &Program{code: []int32{int32(OpHalt)}}

// Halt returns the one-instruction program that never matches.
func Halt() *Program {
	return haltProgram
}

// New validates code and returns a Program holding a private copy of it.
func New(code []int32) (*Program, error) {
	if err := Validate(code); err != nil {
		return nil, err
	}
	c := make([]int32, len(code))
	copy(c, code)
	return &Program{code: c}, nil
}

// Validate checks that code can be executed without leaving the program:
// every opcode is known and complete, character operands are bytes, every
// jump lands on an instruction, and the last instruction terminates.
func Validate(code []int32) error {
	if len(code) == 0 {
		return &DecodeError{PC: 0, Err: ErrEmpty}
	}

	starts := make([]bool, len(code))
	last := 0
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		n := op.Len()
		if n == 0 {
			return &DecodeError{PC: pc, Err: ErrBadOpcode}
		}
		if pc+n > len(code) {
			return &DecodeError{PC: pc, Err: ErrTruncated}
		}
		if op.hasCharOperands() {
			for _, c := range code[pc+1 : pc+n] {
				if c < 0 || c > 255 {
					return &DecodeError{PC: pc, Err: ErrBadOperand}
				}
			}
		}
		starts[pc] = true
		last = pc
		pc += n
	}

	for pc := 0; pc < len(code); pc += Opcode(code[pc]).Len() {
		op := Opcode(code[pc])
		if !op.isJump() {
			continue
		}
		for _, off := range code[pc+1 : pc+op.Len()] {
			t := pc + int(off)
			if t < 0 || t >= len(code) || !starts[t] {
				return &DecodeError{PC: pc, Err: ErrBadTarget}
			}
		}
	}

	switch Opcode(code[last]) {
	case OpAccept, OpHalt:
		return nil
	}
	return &DecodeError{PC: last, Err: ErrNoTerminator}
}

// Words returns the instruction words. The slice must not be modified.
func (p *Program) Words() []int32 {
	return p.code
}

// Len returns the program length in words.
func (p *Program) Len() int {
	return len(p.code)
}

// IsHalt reports whether p is the never-matching sentinel program.
func (p *Program) IsHalt() bool {
	return len(p.code) == 1 && Opcode(p.code[0]) == OpHalt
}
