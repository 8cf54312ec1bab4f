// Package bytecode defines the instruction set shared by the compiler and the
// VM, together with program validation, disassembly and serialization.
//
// A program is a flat []int32. Each instruction is one opcode word followed
// by zero, one or two operand words. Jump operands are relative: the target
// index minus the index of the instruction's opcode word.
package bytecode

import "strconv"

// Opcode identifies an instruction.
type Opcode int32

const (
	OpHalt     Opcode = iota // abort: the program never matches
	OpPush                   // push the cursor on the loop stack
	OpRepeat                 // (off) loop continuation test
	OpLoop                   // (c) consume one or more c, no backtracking
	OpLoopSet                // (lo, hi) consume one or more bytes in [lo, hi]
	OpMatch                  // (c) consume c
	OpMatchSet               // (lo, hi) consume one byte in [lo, hi]
	OpAny                    // consume any byte
	OpBegin                  // assert cursor == 0
	OpEnd                    // assert cursor == len(input)
	OpSplit                  // (a, b) continue at a, schedule b
	OpJmp                    // (off) jump
	OpAccept                 // succeed

	numOpcodes
)

var opNames = [numOpcodes]string{
	OpHalt:     "HALT",
	OpPush:     "PUSH",
	OpRepeat:   "REPEAT",
	OpLoop:     "LOOP",
	OpLoopSet:  "LOOP_SET",
	OpMatch:    "MATCH",
	OpMatchSet: "MATCH_SET",
	OpAny:      "ANY",
	OpBegin:    "BEGIN",
	OpEnd:      "END",
	OpSplit:    "SPLIT",
	OpJmp:      "JMP",
	OpAccept:   "ACCEPT",
}

var opLens = [numOpcodes]int{
	OpHalt:     1,
	OpPush:     1,
	OpRepeat:   2,
	OpLoop:     2,
	OpLoopSet:  3,
	OpMatch:    2,
	OpMatchSet: 3,
	OpAny:      1,
	OpBegin:    1,
	OpEnd:      1,
	OpSplit:    3,
	OpJmp:      2,
	OpAccept:   1,
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	return op >= 0 && op < numOpcodes
}

// Len returns the instruction length in words, operands included. It
// returns 0 for an unknown opcode.
func (op Opcode) Len() int {
	if !op.Valid() {
		return 0
	}
	return opLens[op]
}

func (op Opcode) String() string {
	if !op.Valid() {
		return "?" + strconv.Itoa(int(op))
	}
	return opNames[op]
}

// hasCharOperands reports whether every operand of op is a byte value.
func (op Opcode) hasCharOperands() bool {
	switch op {
	case OpLoop, OpLoopSet, OpMatch, OpMatchSet:
		return true
	}
	return false
}

// isJump reports whether every operand of op is a relative offset.
func (op Opcode) isJump() bool {
	switch op {
	case OpRepeat, OpSplit, OpJmp:
		return true
	}
	return false
}
