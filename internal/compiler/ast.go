package compiler

import "fmt"

type nodeKind uint8

const (
	kindEmpty nodeKind = iota
	kindLiteral
	kindAny
	kindBegin
	kindEnd
	kindRange
	kindConcat
	kindAlternate
	kindQuest
	kindStar
	kindPlus
)

// node is one element of the parsed pattern. Literal uses lo; Range uses
// lo and hi; Concat and Alternate use subs; quantifiers hold their operand
// in subs[0].
type node struct {
	kind   nodeKind
	lo, hi byte
	subs   []*node
}

var emptyNode = &node{kind: kindEmpty}

// concat joins items, dropping empty elements and flattening nested
// sequences. A single remaining item is returned as is.
func concat(items []*node) *node {
	var out []*node
	for _, it := range items {
		switch it.kind {
		case kindEmpty:
		case kindConcat:
			out = append(out, it.subs...)
		default:
			out = append(out, it)
		}
	}
	switch len(out) {
	case 0:
		return emptyNode
	case 1:
		return out[0]
	}
	return &node{kind: kindConcat, subs: out}
}

func quantify(op byte, operand *node) *node {
	k := kindQuest
	switch op {
	case '*':
		k = kindStar
	case '+':
		k = kindPlus
	}
	return &node{kind: k, subs: []*node{operand}}
}

// String renders the node in a compact prefix form, used in debug logs.
func (n *node) String() string {
	switch n.kind {
	case kindEmpty:
		return "empty"
	case kindLiteral:
		return fmt.Sprintf("lit(%q)", n.lo)
	case kindAny:
		return "any"
	case kindBegin:
		return "begin"
	case kindEnd:
		return "end"
	case kindRange:
		return fmt.Sprintf("range(%q-%q)", n.lo, n.hi)
	case kindConcat:
		return fmt.Sprintf("cat%v", n.subs)
	case kindAlternate:
		return fmt.Sprintf("alt%v", n.subs)
	case kindQuest:
		return fmt.Sprintf("quest(%v)", n.subs[0])
	case kindStar:
		return fmt.Sprintf("star(%v)", n.subs[0])
	case kindPlus:
		return fmt.Sprintf("plus(%v)", n.subs[0])
	}
	return "?"
}
