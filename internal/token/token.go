// Package token defines the lexical unit produced by internal/lexer and
// consumed throughout the interpreter.
//
// A token is conceptually an owned string. In a systems language that
// would carry an explicit ownership flag; Go's strings are immutable and
// garbage collected, so that distinction collapses entirely: a Token is
// just a string, and a List is a slice with Go's native O(1) amortized
// append and constant-time head access.
package token

import "strings"

type Token string

// List is an ordered token sequence.
type List []Token

func (l List) Head() (Token, bool) {
	if len(l) == 0 {
		return "", false
	}
	return l[0], true
}

func (l List) Tail() List {
	if len(l) <= 1 {
		return List{}
	}
	return l[1:]
}

func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = string(t)
	}
	return out
}

func FromStrings(ss []string) List {
	out := make(List, len(ss))
	for i, s := range ss {
		out[i] = Token(s)
	}
	return out
}

func (l List) Join(sep string) string {
	return strings.Join(l.Strings(), sep)
}
