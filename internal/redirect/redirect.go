// Package redirect implements the shell's redirection resolver: before
// fork, the simple command's raw (variable-substituted) string is scanned
// for <, >, >>, and n>/n>> forms outside quotes and parentheses. The
// matched clauses are excised from the string, leaving the remainder to
// be tokenized into an argument vector by internal/lexer as usual.
package redirect

import (
	"strconv"
	"strings"

	"github.com/AlanLuu/alsh/pkg/shellerr"
)

const name = "alsh"

type Direction int

const (
	In Direction = iota
	OutTrunc
	OutAppend
)

// Spec is one resolved redirection clause.
type Spec struct {
	FD        int
	Direction Direction
	Path      string
}

// Parse scans cmd for redirection operators and returns the command with
// those clauses removed, plus the specs in the order encountered.
func Parse(cmd string) (string, []Spec, error) {
	var out strings.Builder
	var specs []Spec
	var quote byte
	parenDepth := 0

	i := 0
	for i < len(cmd) {
		c := cmd[i]

		if parenDepth > 0 {
			out.WriteByte(c)
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
			out.WriteByte(c)
			if c == quote {
				quote = 0
			}
			i++
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			out.WriteByte(c)
			i++
			continue
		case '(':
			parenDepth = 1
			out.WriteByte(c)
			i++
			continue
		case '<':
			path, next, err := readOperand(cmd, i+1)
			if err != nil {
				return "", nil, err
			}
			specs = append(specs, Spec{FD: 0, Direction: In, Path: path})
			i = next
			continue
		case '>':
			fd := 1
			cur := out.String()
			j := len(cur)
			for j > 0 && cur[j-1] >= '0' && cur[j-1] <= '9' {
				j--
			}
			if j < len(cur) && (j == 0 || cur[j-1] == ' ') {
				n, convErr := strconv.Atoi(cur[j:])
				if convErr == nil {
					fd = n
					out.Reset()
					out.WriteString(cur[:j])
				}
			}
			dir := OutTrunc
			next := i + 1
			if next < len(cmd) && cmd[next] == '>' {
				dir = OutAppend
				next++
			}
			path, after, err := readOperand(cmd, next)
			if err != nil {
				return "", nil, err
			}
			specs = append(specs, Spec{FD: fd, Direction: dir, Path: path})
			i = after
			continue
		}

		out.WriteByte(c)
		i++
	}

	if quote != 0 {
		return "", nil, shellerr.New(shellerr.Syntax, name, cmd, "unterminated quote")
	}

	return out.String(), specs, nil
}

// readOperand reads the filename immediately following a redirection
// operator: leading spaces are skipped, then a single quote-aware word is
// read up to the next unquoted space.
func readOperand(s string, i int) (string, int, error) {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i >= len(s) {
		return "", i, shellerr.New(shellerr.Syntax, name, s, "missing filename after redirection")
	}
	var path strings.Builder
	var quote byte
	for i < len(s) {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
				i++
				continue
			}
			path.WriteByte(c)
			i++
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			i++
			continue
		}
		if c == ' ' {
			break
		}
		path.WriteByte(c)
		i++
	}
	if quote != 0 {
		return "", i, shellerr.New(shellerr.Syntax, name, s, "unterminated quote")
	}
	if path.Len() == 0 {
		return "", i, shellerr.New(shellerr.Syntax, name, s, "missing filename after redirection")
	}
	return path.String(), i, nil
}
