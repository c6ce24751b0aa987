// Package varsub implements the shell's variable substitution pass,
// applied to the whole command line before tokenization/execution.
package varsub

import (
	"strings"

	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

// isStop reports whether c ends a $NAME reference: space, ')',
// '"', ';', '&', '|', the arithmetic operators, and a second '$'.
func isStop(c byte) bool {
	switch c {
	case ' ', ')', '"', ';', '&', '|', '+', '-', '*', '/', '$':
		return true
	default:
		return false
	}
}

// Substitute expands every $NAME reference in s. Lookup is
// environment-first, then shell-local. Outside any parenthesized region
// an undefined name expands to the empty string; inside parentheses an
// undefined name is a "name error" that aborts the whole command. When s
// contains no '$' (or has length <= 1), s is returned unchanged.
func Substitute(s string, store *varstore.Store) (string, error) {
	if len(s) <= 1 || !strings.ContainsRune(s, '$') {
		return s, nil
	}

	var out strings.Builder
	parenDepth := 0
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '(':
			parenDepth++
			out.WriteByte(c)
			i++
			continue
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
			out.WriteByte(c)
			i++
			continue
		case '$':
			j := i + 1
			for j < len(s) && !isStop(s[j]) {
				j++
			}
			ref := s[i+1 : j]
			if ref == "" {
				// lone '$' (at end of input, or immediately followed by a
				// stop character): left literal, mirroring how a lone
				// trailing '!' is left literal in history expansion.
				out.WriteByte('$')
				i++
				continue
			}
			val, ok := store.Lookup(ref)
			if !ok {
				if parenDepth > 0 {
					return "", shellerr.New(shellerr.Semantic, name, ref, "name not defined")
				}
				val = ""
			}
			out.WriteString(val)
			i = j
			continue
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}
