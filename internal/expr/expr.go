// Package expr implements the monitor's expression language: register
// references, hex/decimal numbers, the arithmetic and comparison
// operators, and C-style unary minus/not, evaluated by dominant-operator
// recursive descent. Direct structural port of
// original_source/nemu/src/monitor/debug/expr.c — same token table order,
// same NEG-reclassification rule, same find_dominant_op precedence table.
// Go's regexp stdlib stands in for POSIX regex.h; no third-party regex
// engine appears anywhere in the retrieved pack, so there is no ecosystem
// alternative to reach for here.
package expr

import (
	"fmt"
	"regexp"
)

type tokenType int

const (
	notype tokenType = iota
	eq
	neq
	and
	or
	not
	number
	plus
	minus
	neg
	multiply
	divide
	lparen
	rparen
	register
)

type rule struct {
	re *regexp.Regexp
	tp tokenType
}

// rules is matched top-to-bottom against the remaining input at each
// lexer step; the first entry that matches wins, even if a later entry
// would match a longer prefix, exactly as expr.c's linear regex table
// does. Longer operators are therefore listed before their prefixes.
var rules = []rule{
	{regexp.MustCompile(`^\s+`), notype},
	{regexp.MustCompile(`^==`), eq},
	{regexp.MustCompile(`^!=`), neq},
	{regexp.MustCompile(`^&&`), and},
	{regexp.MustCompile(`^\|\|`), or},
	{regexp.MustCompile(`^!`), not},
	{regexp.MustCompile(`^\+`), plus},
	{regexp.MustCompile(`^-`), minus},
	{regexp.MustCompile(`^\*`), multiply},
	{regexp.MustCompile(`^/`), divide},
	{regexp.MustCompile(`^\(`), lparen},
	{regexp.MustCompile(`^\)`), rparen},
	{regexp.MustCompile(`^\$[a-zA-Z]+`), register},
	{regexp.MustCompile(`^0[xX][0-9a-fA-F]+`), number},
	{regexp.MustCompile(`^[0-9]+`), number},
}

type token struct {
	tp  tokenType
	str string
}

const maxTokens = 32

// RegisterLookup resolves a "$name" token to its current value; the
// monitor supplies this so expr stays independent of cpu.State's layout.
type RegisterLookup func(name string) (uint32, bool)

// Eval parses and evaluates e, consulting lookup for any $register
// references. Errors mirror expr.c's "success=false" contract: a bad
// token, unbalanced parentheses, or a division by zero all surface as a
// returned error rather than a panic, since this runs on user-typed input.
func Eval(e string, lookup RegisterLookup) (uint32, error) {
	toks, err := tokenize(e)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, fmt.Errorf("expr: empty expression")
	}
	v, err := eval(toks, 0, len(toks)-1, lookup)
	return v, err
}

func tokenize(e string) ([]token, error) {
	var toks []token
	for len(e) > 0 {
		matched := false
		for _, r := range rules {
			loc := r.re.FindStringIndex(e)
			if loc == nil || loc[0] != 0 {
				continue
			}
			matched = true
			text := e[:loc[1]]
			e = e[loc[1]:]
			if r.tp == notype {
				break
			}
			tp := r.tp
			if tp == minus && shouldBeNeg(toks) {
				tp = neg
			}
			if len(toks) >= maxTokens {
				return nil, fmt.Errorf("expr: too many tokens")
			}
			toks = append(toks, token{tp: tp, str: text})
			break
		}
		if !matched {
			return nil, fmt.Errorf("expr: no rule matches near %q", e)
		}
	}
	return toks, nil
}

// shouldBeNeg reclassifies a MINUS as unary NEG exactly when it can't be a
// binary subtraction: at the start of the expression, or right after
// anything other than a number, a register, or a close-paren.
func shouldBeNeg(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	switch toks[len(toks)-1].tp {
	case number, register, rparen:
		return false
	default:
		return true
	}
}

func checkParentheses(toks []token, l, r int) (wrapped bool, ok bool) {
	if toks[l].tp != lparen || toks[r].tp != rparen {
		return false, true
	}
	depth := 0
	for i := l; i <= r; i++ {
		switch toks[i].tp {
		case lparen:
			depth++
		case rparen:
			depth--
		}
		if depth == 0 && i != r {
			return false, true
		}
		if depth < 0 {
			return false, false
		}
	}
	if depth != 0 {
		return false, false
	}
	return true, true
}

// precedence mirrors expr.c's dominant-operator table: lower binds looser.
// NEG and NOT (unary) bind tightest.
func precedence(tp tokenType) int {
	switch tp {
	case or:
		return 0
	case and:
		return 1
	case eq, neq:
		return 2
	case plus, minus:
		return 3
	case multiply, divide:
		return 4
	case neg, not:
		return 5
	default:
		return -1
	}
}

// findDominantOp scans [l,r] outside of nested parentheses for the
// lowest-precedence operator, breaking ties toward the rightmost candidate
// (so that e.g. "1-2-3" splits after the second minus, left-associating).
func findDominantOp(toks []token, l, r int) int {
	depth := 0
	pos := -1
	best := 1 << 30
	for i := l; i <= r; i++ {
		switch toks[i].tp {
		case lparen:
			depth++
			continue
		case rparen:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		p := precedence(toks[i].tp)
		if p < 0 {
			continue
		}
		if p <= best {
			best = p
			pos = i
		}
	}
	return pos
}

func eval(toks []token, l, r int, lookup RegisterLookup) (uint32, error) {
	if l > r {
		return 0, fmt.Errorf("expr: empty subexpression")
	}
	if l == r {
		return evalAtom(toks[l], lookup)
	}

	wrapped, ok := checkParentheses(toks, l, r)
	if !ok {
		return 0, fmt.Errorf("expr: unbalanced parentheses")
	}
	if wrapped {
		return eval(toks, l+1, r-1, lookup)
	}

	op := findDominantOp(toks, l, r)
	if op < 0 {
		return 0, fmt.Errorf("expr: no operator found in %v", toks[l:r+1])
	}

	if op == l {
		// Unary operator at the start of the span.
		val, err := eval(toks, l+1, r, lookup)
		if err != nil {
			return 0, err
		}
		switch toks[op].tp {
		case neg:
			return uint32(-int32(val)), nil
		case not:
			if val == 0 {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, fmt.Errorf("expr: %q is not a valid unary operator", toks[op].str)
		}
	}

	lv, err := eval(toks, l, op-1, lookup)
	if err != nil {
		return 0, err
	}
	rv, err := eval(toks, op+1, r, lookup)
	if err != nil {
		return 0, err
	}

	switch toks[op].tp {
	case plus:
		return lv + rv, nil
	case minus:
		return lv - rv, nil
	case multiply:
		return lv * rv, nil
	case divide:
		if rv == 0 {
			return 0, fmt.Errorf("expr: division by zero")
		}
		return lv / rv, nil
	case eq:
		return boolVal(lv == rv), nil
	case neq:
		return boolVal(lv != rv), nil
	case and:
		return boolVal(lv != 0 && rv != 0), nil
	case or:
		return boolVal(lv != 0 || rv != 0), nil
	default:
		return 0, fmt.Errorf("expr: %q is not a valid binary operator", toks[op].str)
	}
}

func boolVal(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func evalAtom(t token, lookup RegisterLookup) (uint32, error) {
	switch t.tp {
	case number:
		return parseNumber(t.str)
	case register:
		name := t.str[1:]
		v, ok := lookup(name)
		if !ok {
			return 0, fmt.Errorf("expr: unknown register %q", t.str)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("expr: %q is not a value", t.str)
	}
}

func parseNumber(s string) (uint32, error) {
	var v uint32
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		_, err := fmt.Sscanf(s[2:], "%x", &v)
		if err != nil {
			return 0, fmt.Errorf("expr: bad hex literal %q", s)
		}
		return v, nil
	}
	_, err := fmt.Sscanf(s, "%d", &v)
	if err != nil {
		return 0, fmt.Errorf("expr: bad decimal literal %q", s)
	}
	return v, nil
}
