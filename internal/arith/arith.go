// Package arith implements an infix arithmetic evaluator: integers and
// decimals, unary minus, + - * /, parentheses, over double-precision
// floats, via shunting-yard to postfix followed by a stack evaluator.
package arith

import (
	"strconv"
	"strings"

	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

type tokKind int

const (
	tokNumber tokKind = iota
	tokPlus
	tokMinus
	tokMul
	tokDiv
	tokNegate // unary minus, carried into postfix as its own marker
	tokLParen
	tokRParen
)

type tok struct {
	kind tokKind
	num  float64
}

func precedence(k tokKind) int {
	switch k {
	case tokMul, tokDiv:
		return 2
	case tokPlus, tokMinus:
		return 1
	default:
		return 0
	}
}

// Resolver looks up a bare variable name referenced inside an expression,
// matching the signature of (*varstore.Store).Lookup so a caller can pass
// that method directly.
type Resolver func(name string) (string, bool)

// Eval parses and evaluates a parenthesized-or-bare infix expression, e.g.
// "2 + 3", "( 2 + 3 ) * 4", "-2 * (3 + 4)", "N * 2". $-prefixed variable
// substitution must already have happened on expr before calling Eval; a
// bare identifier leaf (e.g. the "N" in "repeat (N)") is resolved here,
// against resolve, at evaluation time, since it may name a variable set by
// an earlier command on the same line. resolve may be nil if expr is known
// to contain no bare identifiers.
func Eval(expr string, resolve Resolver) (float64, error) {
	toks, err := tokenize(expr, resolve)
	if err != nil {
		return 0, err
	}
	postfix, err := toPostfix(toks)
	if err != nil {
		return 0, err
	}
	return evalPostfix(postfix)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func tokenize(expr string, resolve Resolver) ([]tok, error) {
	var toks []tok
	i := 0
	// atStart tracks whether the next '-' is unary: true at the beginning
	// of the expression or immediately after another operator or '('.
	atStart := true
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ':
			i++
		case c == '(':
			toks = append(toks, tok{kind: tokLParen})
			atStart = true
			i++
		case c == ')':
			toks = append(toks, tok{kind: tokRParen})
			atStart = false
			i++
		case c == '+':
			toks = append(toks, tok{kind: tokPlus})
			atStart = true
			i++
		case c == '-':
			if atStart {
				toks = append(toks, tok{kind: tokNegate})
			} else {
				toks = append(toks, tok{kind: tokMinus})
			}
			atStart = true
			i++
		case c == '*':
			toks = append(toks, tok{kind: tokMul})
			atStart = true
			i++
		case c == '/':
			toks = append(toks, tok{kind: tokDiv})
			atStart = true
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			dots := 0
			for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
				if expr[i] == '.' {
					dots++
					if dots > 1 {
						return nil, shellerr.New(shellerr.Semantic, name, expr, "multiple decimal points in a single number")
					}
				}
				i++
			}
			v, err := strconv.ParseFloat(expr[start:i], 64)
			if err != nil {
				return nil, shellerr.Wrap(shellerr.Semantic, name, expr, "malformed number", err)
			}
			toks = append(toks, tok{kind: tokNumber, num: v})
			atStart = false
		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentCont(expr[i]) {
				i++
			}
			ref := expr[start:i]
			if resolve == nil {
				return nil, shellerr.New(shellerr.Semantic, name, ref, "name not defined")
			}
			val, ok := resolve(ref)
			if !ok {
				return nil, shellerr.New(shellerr.Semantic, name, ref, "name not defined")
			}
			// val may itself be an unevaluated expression, e.g. a variable
			// set by "let N=( 2 + 3 )" holds the literal string "( 2 + 3 )";
			// evaluate it rather than assuming it is already a bare number.
			v, err := Eval(val, resolve)
			if err != nil {
				return nil, shellerr.Wrap(shellerr.Semantic, name, ref, "variable value is not a valid expression", err)
			}
			toks = append(toks, tok{kind: tokNumber, num: v})
			atStart = false
		default:
			return nil, shellerr.New(shellerr.Semantic, name, expr, "unexpected character '"+string(c)+"'")
		}
	}
	return toks, nil
}

func toPostfix(in []tok) ([]tok, error) {
	var out []tok
	var stack []tok
	for _, t := range in {
		switch t.kind {
		case tokNumber:
			out = append(out, t)
		case tokNegate:
			stack = append(stack, t)
		case tokPlus, tokMinus, tokMul, tokDiv:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind == tokLParen {
					break
				}
				if top.kind == tokNegate || precedence(top.kind) >= precedence(t.kind) {
					out = append(out, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, t)
		case tokLParen:
			stack = append(stack, t)
		case tokRParen:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLParen {
					found = true
					break
				}
				out = append(out, top)
			}
			if !found {
				return nil, shellerr.New(shellerr.Syntax, name, "", "missing opening parenthesis")
			}
			// a unary minus immediately wrapping the parenthesized group
			if len(stack) > 0 && stack[len(stack)-1].kind == tokNegate {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLParen {
			return nil, shellerr.New(shellerr.Syntax, name, "", "missing closing parenthesis")
		}
		out = append(out, top)
	}
	return out, nil
}

func evalPostfix(postfix []tok) (float64, error) {
	var stack []float64
	for _, t := range postfix {
		switch t.kind {
		case tokNumber:
			stack = append(stack, t.num)
		case tokNegate:
			if len(stack) < 1 {
				return 0, shellerr.New(shellerr.Semantic, name, "", "malformed expression")
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
		case tokPlus, tokMinus, tokMul, tokDiv:
			if len(stack) < 2 {
				return 0, shellerr.New(shellerr.Semantic, name, "", "malformed expression")
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			var r float64
			switch t.kind {
			case tokPlus:
				r = a + b
			case tokMinus:
				r = a - b
			case tokMul:
				r = a * b
			case tokDiv:
				if b == 0 {
					return 0, shellerr.New(shellerr.Semantic, name, "", "division by zero")
				}
				r = a / b
			}
			stack = append(stack, r)
		}
	}
	if len(stack) != 1 {
		return 0, shellerr.New(shellerr.Semantic, name, "", "malformed expression")
	}
	return stack[0], nil
}

// StripParens trims a single enclosing "( ... )" pair and surrounding
// whitespace. The control forms do not call it; they extract their
// parenthesized groups with their own scanner.
func StripParens(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s, false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}
