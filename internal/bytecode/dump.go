package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble renders code one instruction per line, with jump operands
// resolved to absolute indices. Unknown opcodes are printed as ?<n> and
// skipped one word at a time, so raw or damaged programs can be inspected.
func Disassemble(code []int32) string {
	var b strings.Builder
	n := 0
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		size := op.Len()
		if size == 0 {
			fmt.Fprintf(&b, "%4d  %s\n", pc, op)
			pc++
			n++
			continue
		}
		if pc+size > len(code) {
			fmt.Fprintf(&b, "%4d  %-9s <truncated>\n", pc, op)
			n++
			break
		}
		args := code[pc+1 : pc+size]
		switch {
		case op.hasCharOperands():
			parts := make([]string, len(args))
			for i, c := range args {
				parts[i] = char(c)
			}
			fmt.Fprintf(&b, "%4d  %-9s %s\n", pc, op, strings.Join(parts, ", "))
		case op.isJump():
			parts := make([]string, len(args))
			for i, off := range args {
				parts[i] = fmt.Sprint(pc + int(off))
			}
			fmt.Fprintf(&b, "%4d  %-9s %s\n", pc, op, strings.Join(parts, ", "))
		default:
			fmt.Fprintf(&b, "%4d  %s\n", pc, op)
		}
		pc += size
		n++
	}
	fmt.Fprintf(&b, "\n%d instructions were dumped\n", n)
	return b.String()
}

func char(c int32) string {
	if c > ' ' && c < 0x7f {
		return fmt.Sprintf("%c(\\%d)", c, c)
	}
	return fmt.Sprintf("\\%d", c)
}

// Disassemble renders p; see the package-level Disassemble.
func (p *Program) Disassemble() string {
	return Disassemble(p.code)
}

// Dump writes the disassembly of p to w.
func (p *Program) Dump(w io.Writer) error {
	_, err := io.WriteString(w, p.Disassemble())
	return err
}
