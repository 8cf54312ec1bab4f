package compiler

import "fmt"

// Error describes a pattern that could not be compiled.
type Error struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile %q: %s at offset %d", e.Pattern, e.Msg, e.Pos)
}

// parser is a recursive-descent parser for the grammar
//
//	expr   = term ( '|' expr )?
//	term   = ( factor | quantifier )*
//	factor = char | '.' | '^' | '$' | '\' char | '[' c '-' c ']' | '(' expr ')'
//
// A quantifier applies to the item before it in the same term, or to the
// empty expression when there is none.
type parser struct {
	re  string
	pos int
}

func parse(re string) (*node, error) {
	p := &parser{re: re}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.re) {
		return nil, p.errorf(p.pos, "unexpected %q", p.re[p.pos])
	}
	return n, nil
}

func (p *parser) errorf(pos int, format string, args ...interface{}) *Error {
	return &Error{Pattern: p.re, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) more() bool { return p.pos < len(p.re) }

func (p *parser) parseExpr() (*node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if !p.more() || p.re[p.pos] != '|' {
		return left, nil
	}
	p.pos++
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &node{kind: kindAlternate, subs: []*node{left, right}}, nil
}

func (p *parser) parseTerm() (*node, error) {
	var items []*node
	for p.more() {
		switch c := p.re[p.pos]; c {
		case '|', ')':
			return concat(items), nil
		case '?', '*', '+':
			p.pos++
			operand := emptyNode
			if n := len(items); n > 0 {
				operand = items[n-1]
				items = items[:n-1]
			}
			items = append(items, quantify(c, operand))
		default:
			f, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			items = append(items, f)
		}
	}
	return concat(items), nil
}

func (p *parser) parseFactor() (*node, error) {
	start := p.pos
	c := p.re[p.pos]
	switch c {
	case '.':
		p.pos++
		return &node{kind: kindAny}, nil
	case '^':
		p.pos++
		return &node{kind: kindBegin}, nil
	case '$':
		p.pos++
		return &node{kind: kindEnd}, nil
	case '\\':
		if p.pos+1 >= len(p.re) {
			return nil, p.errorf(start, "trailing backslash")
		}
		p.pos += 2
		return &node{kind: kindLiteral, lo: p.re[start+1]}, nil
	case '[':
		if p.pos+4 >= len(p.re) || p.re[p.pos+2] != '-' || p.re[p.pos+4] != ']' {
			return nil, p.errorf(start, "malformed character class, want [c-c]")
		}
		p.pos += 5
		return &node{kind: kindRange, lo: p.re[start+1], hi: p.re[start+3]}, nil
	case '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.more() || p.re[p.pos] != ')' {
			return nil, p.errorf(start, "missing closing )")
		}
		p.pos++
		return inner, nil
	}
	p.pos++
	return &node{kind: kindLiteral, lo: c}, nil
}
