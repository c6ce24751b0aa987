// Package shellfmt is a non-authoritative startup-file linter. It uses
// mvdan.cc/sh/v3/syntax purely to flag obviously malformed shell text
// (unterminated quotes, stray parens) in .alshrc before the interpreter's
// own tokenizer — the one true parser for the command language — ever
// sees the line. A parse error here never changes execution semantics;
// it only produces an advisory warning string.
package shellfmt

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Lint parses line with the POSIX shell grammar and returns a
// human-readable warning if it looks malformed. An empty string means no
// concern was raised; this is advisory only; the line still runs through
// alsh's own interpreter regardless of the outcome here.
func Lint(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	_, err := parser.Parse(strings.NewReader(trimmed), "")
	if err != nil {
		return "possibly malformed line: " + err.Error()
	}
	return ""
}
