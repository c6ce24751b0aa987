// Package control implements the recursive-descent interpreter for the
// if/else, while, and repeat control forms. It never runs a command
// directly: the caller supplies a RunFunc that re-enters the full
// sequence/and/or/pipe interpreter for the condition and body text,
// keeping this package free of an import cycle with internal/compose.
package control

import (
	"context"
	"strings"

	"github.com/AlanLuu/alsh/internal/arith"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

// RunFunc re-enters the top-level line interpreter (internal/compose.Run).
type RunFunc func(ctx context.Context, sc *shellctx.Context, line string) (int, error)

// Match reports whether trimmed line begins with a control-form keyword.
func Match(line string) (keyword string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, kw := range []string{"if", "while", "repeat"} {
		if !strings.HasPrefix(trimmed, kw) {
			continue
		}
		rest := trimmed[len(kw):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '(' {
			return kw, true
		}
	}
	return "", false
}

// Run dispatches a single control form. A negative status return signals a
// fatal parse condition for this line, per the "negative status" sentinel.
func Run(ctx context.Context, sc *shellctx.Context, line string, run RunFunc) (int, error) {
	keyword, ok := Match(line)
	if !ok {
		return -1, shellerr.New(shellerr.Syntax, name, line, "not a control form")
	}
	trimmed := strings.TrimLeft(line, " \t")
	rest := strings.TrimLeft(trimmed[len(keyword):], " \t")
	if len(rest) == 0 || rest[0] != '(' {
		return -1, shellerr.New(shellerr.Syntax, keyword, line, "missing parenthesis")
	}
	inner, after, err := findParenGroup(rest, 0)
	if err != nil {
		return -1, err
	}
	remainder := rest[after:]

	switch keyword {
	case "if":
		return runIf(ctx, sc, inner, remainder, run)
	case "while":
		return runWhile(ctx, sc, inner, remainder, run)
	case "repeat":
		return runRepeat(ctx, sc, inner, remainder, run)
	}
	return -1, shellerr.New(shellerr.Syntax, name, line, "unknown control form")
}

func runIf(ctx context.Context, sc *shellctx.Context, condInner, remainder string, run RunFunc) (int, error) {
	negate, condCmd := stripDashes(condInner)
	body, elseBody, hasElse := splitGreedyElse(remainder)
	if strings.TrimSpace(body) == "" {
		return -1, shellerr.New(shellerr.Syntax, "if", remainder, "missing body")
	}
	condStatus, err := run(ctx, sc, condCmd)
	if err != nil {
		return -1, err
	}
	truth := condStatus == 0
	if negate {
		truth = !truth
	}
	if truth {
		return run(ctx, sc, body)
	}
	if hasElse {
		return run(ctx, sc, elseBody)
	}
	return 0, nil
}

func runWhile(ctx context.Context, sc *shellctx.Context, condInner, remainder string, run RunFunc) (int, error) {
	negate, condCmd := stripDashes(condInner)
	body := strings.TrimSpace(remainder)
	if body == "" {
		return -1, shellerr.New(shellerr.Syntax, "while", remainder, "missing body")
	}
	status := 0
	for {
		if sc.Interrupted.Load() {
			break
		}
		condStatus, err := run(ctx, sc, condCmd)
		if err != nil {
			return -1, err
		}
		truth := condStatus == 0
		if negate {
			truth = !truth
		}
		if !truth {
			break
		}
		var runErr error
		status, runErr = run(ctx, sc, body)
		if runErr != nil {
			return status, runErr
		}
		if sc.Interrupted.Load() {
			break
		}
	}
	return status, nil
}

func runRepeat(ctx context.Context, sc *shellctx.Context, inner, remainder string, run RunFunc) (int, error) {
	body := strings.TrimSpace(remainder)
	if body == "" {
		return -1, shellerr.New(shellerr.Syntax, "repeat", remainder, "missing body")
	}
	val, err := arith.Eval(inner, sc.Vars.Lookup)
	if err != nil {
		return -1, shellerr.Wrap(shellerr.Semantic, "repeat", inner, "bad count", err)
	}
	n := int(val)
	if n < 0 {
		n = 0
	}
	status := 0
	for i := 0; i < n; i++ {
		if sc.Interrupted.Load() {
			break
		}
		var runErr error
		status, runErr = run(ctx, sc, body)
		if runErr != nil {
			return status, runErr
		}
	}
	return status, nil
}

// stripDashes counts leading '-' characters (interspersed with spaces) at
// the start of a condition, toggling negation per dash, returning the
// remaining command text.
func stripDashes(s string) (negate bool, cmd string) {
	i := 0
	for i < len(s) {
		switch s[i] {
		case '-':
			negate = !negate
			i++
			continue
		case ' ', '\t':
			i++
			continue
		}
		break
	}
	return negate, s[i:]
}

// splitGreedyElse finds the last whitespace-bounded "else" keyword in s,
// binding the outermost if to it.
func splitGreedyElse(s string) (body, elseBody string, ok bool) {
	idx := lastWordIndex(s, "else")
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len("else"):], true
}

func lastWordIndex(s, word string) int {
	last := -1
	i := 0
	for {
		j := strings.Index(s[i:], word)
		if j < 0 {
			break
		}
		pos := i + j
		before := pos == 0 || s[pos-1] == ' ' || s[pos-1] == '\t'
		afterIdx := pos + len(word)
		after := afterIdx == len(s) || s[afterIdx] == ' ' || s[afterIdx] == '\t'
		if before && after {
			last = pos
		}
		i = pos + len(word)
	}
	return last
}

// findParenGroup expects s[start] == '(' and returns the text strictly
// between the matching pair plus the index immediately after it, respecting
// quotes so literal parens inside a quoted condition aren't miscounted.
func findParenGroup(s string, start int) (inner string, after int, err error) {
	if start >= len(s) || s[start] != '(' {
		return "", start, shellerr.New(shellerr.Syntax, name, s, "missing parenthesis")
	}
	depth := 0
	var quote byte
	i := start
	for i < len(s) {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, nil
			}
		}
		i++
	}
	return "", i, shellerr.New(shellerr.Syntax, name, s, "missing closing parenthesis")
}
