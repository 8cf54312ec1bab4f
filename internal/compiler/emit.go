package compiler

import (
	"github.com/KromDaniel/regvm/internal/bytecode"
	"github.com/KromDaniel/regvm/internal/logging"
)

// emitter lowers a parsed pattern to bytecode. Forward jumps are emitted
// with a zero operand and patched once their target is known.
type emitter struct {
	code   []int32
	logger *logging.Logger
}

func (e *emitter) pc() int { return len(e.code) }

func (e *emitter) emit(op bytecode.Opcode, args ...int32) int {
	at := len(e.code)
	e.code = append(e.code, int32(op))
	e.code = append(e.code, args...)
	return at
}

// patch points operand i of the instruction at `at` to the current end of
// the program.
func (e *emitter) patch(at, i int) {
	e.code[at+1+i] = int32(e.pc() - at)
}

func (e *emitter) gen(n *node) {
	switch n.kind {
	case kindEmpty:
	case kindLiteral:
		e.emit(bytecode.OpMatch, int32(n.lo))
	case kindRange:
		e.emit(bytecode.OpMatchSet, int32(n.lo), int32(n.hi))
	case kindAny:
		e.emit(bytecode.OpAny)
	case kindBegin:
		e.emit(bytecode.OpBegin)
	case kindEnd:
		e.emit(bytecode.OpEnd)
	case kindConcat:
		for _, sub := range n.subs {
			e.gen(sub)
		}

	case kindAlternate:
		// SPLIT a, b; a; JMP end; b:; end:
		split := e.emit(bytecode.OpSplit, int32(bytecode.OpSplit.Len()), 0)
		e.gen(n.subs[0])
		jmp := e.emit(bytecode.OpJmp, 0)
		e.patch(split, 1)
		e.gen(n.subs[1])
		e.patch(jmp, 0)

	case kindQuest:
		// SPLIT body, end; body; end:
		split := e.emit(bytecode.OpSplit, int32(bytecode.OpSplit.Len()), 0)
		e.gen(n.subs[0])
		e.patch(split, 1)

	case kindStar:
		// PUSH; SPLIT body, rep; body; rep: REPEAT body
		e.emit(bytecode.OpPush)
		split := e.emit(bytecode.OpSplit, int32(bytecode.OpSplit.Len()), 0)
		body := e.pc()
		e.gen(n.subs[0])
		e.patch(split, 1)
		e.emit(bytecode.OpRepeat, int32(body-e.pc()))

	case kindPlus:
		sub := n.subs[0]
		switch sub.kind {
		case kindLiteral:
			e.logger.Log("plus over %v lowered to LOOP at %d", sub, e.pc())
			e.emit(bytecode.OpLoop, int32(sub.lo))
			return
		case kindRange:
			e.logger.Log("plus over %v lowered to LOOP_SET at %d", sub, e.pc())
			e.emit(bytecode.OpLoopSet, int32(sub.lo), int32(sub.hi))
			return
		}
		// PUSH; body; REPEAT body
		e.emit(bytecode.OpPush)
		body := e.pc()
		e.gen(sub)
		e.emit(bytecode.OpRepeat, int32(body-e.pc()))
	}
}
