// Package lexer implements a quote- and paren-aware splitter used at
// every level of command composition: splitting on ";", "&&", "||",
// "|", and plain " " all go through the same Split function with a
// different delimiter.
package lexer

import (
	"strings"

	"github.com/AlanLuu/alsh/internal/token"
	"github.com/AlanLuu/alsh/pkg/shellerr"
)

// Split divides s on occurrences of delim that appear outside every quote
// and at paren nesting level 0. Single and double quotes are mutually
// opaque to each other (nesting one kind inside the other preserves the
// inner quote characters literally and strips only the outer pair); quotes
// have no effect once inside a parenthesized region, which is instead
// preserved verbatim, outer parens included, so the arithmetic evaluator
// can find it later. When delim is a single space, runs of consecutive
// spaces collapse into a single split point.
func Split(s, delim string) (token.List, error) {
	var tokens []string
	var cur strings.Builder
	hasCur := false

	var quote byte
	parenDepth := 0
	collapseSpace := delim == " "

	flush := func() {
		tokens = append(tokens, cur.String())
		cur.Reset()
		hasCur = false
	}

	i := 0
	for i < len(s) {
		c := s[i]

		if parenDepth > 0 {
			cur.WriteByte(c)
			hasCur = true
			switch c {
			case '(':
				parenDepth++
			case ')':
				parenDepth--
			}
			i++
			continue
		}

		if quote != 0 {
			if c == quote {
				quote = 0
				i++
				continue
			}
			cur.WriteByte(c)
			hasCur = true
			i++
			continue
		}

		if c == '\'' || c == '"' {
			quote = c
			hasCur = true // an empty quoted string is still a token, e.g. a=''
			i++
			continue
		}

		if c == '(' {
			parenDepth = 1
			cur.WriteByte(c)
			hasCur = true
			i++
			continue
		}

		if c == ')' {
			return nil, shellerr.New(shellerr.Syntax, "alsh", s, "unexpected ')'")
		}

		if len(delim) > 0 && i+len(delim) <= len(s) && s[i:i+len(delim)] == delim {
			if collapseSpace {
				if hasCur {
					flush()
				}
				i += len(delim)
				for i < len(s) && s[i] == ' ' {
					i++
				}
				continue
			}
			flush()
			i += len(delim)
			continue
		}

		cur.WriteByte(c)
		hasCur = true
		i++
	}

	if quote != 0 {
		return nil, shellerr.New(shellerr.Syntax, "alsh", s, "unterminated quote")
	}

	if collapseSpace {
		if hasCur {
			tokens = append(tokens, cur.String())
		}
	} else {
		tokens = append(tokens, cur.String())
	}
	if len(tokens) == 0 {
		tokens = append(tokens, "")
	}

	return token.FromStrings(tokens), nil
}
