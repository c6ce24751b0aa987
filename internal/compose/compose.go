// Package compose implements sequence/and/or/pipe command composition:
// the top-level line interpreter that splits on ";", "&&", "||", and "|"
// in that order, dispatching control forms to internal/control and
// simple commands to internal/procexec.
package compose

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AlanLuu/alsh/internal/builtin"
	"github.com/AlanLuu/alsh/internal/control"
	"github.com/AlanLuu/alsh/internal/lexer"
	"github.com/AlanLuu/alsh/internal/procexec"
	"github.com/AlanLuu/alsh/internal/redirect"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/token"
)

// Run is the entry point for a line of already variable-substituted
// input: it is the RunFunc every control-form body and condition
// recurses back through, so nested composition and nested control forms
// both work from any depth.
func Run(ctx context.Context, sc *shellctx.Context, line string) (int, error) {
	segments, err := lexer.Split(line, ";")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, nil
	}

	status := 0
	for _, seg := range segments {
		s := strings.TrimSpace(string(seg))
		if s == "" {
			continue
		}
		st, err := runAnd(ctx, sc, s)
		status = st
		if err != nil {
			if _, ok := err.(*builtin.ExitRequest); ok {
				return status, err
			}
			fmt.Fprintln(os.Stderr, err)
		}
		if st < 0 {
			// a negative status is a parse-level failure: the rest of the
			// line is not executed.
			return status, nil
		}
	}
	return status, nil
}

// runAnd splits on "&&", stopping at the first non-zero status.
func runAnd(ctx context.Context, sc *shellctx.Context, line string) (int, error) {
	parts, err := lexer.Split(line, "&&")
	if err != nil {
		return 1, err
	}
	status := 0
	for _, p := range parts {
		s := strings.TrimSpace(string(p))
		if s == "" {
			continue
		}
		var err error
		status, err = runOr(ctx, sc, s)
		if err != nil || status != 0 {
			return status, err
		}
	}
	return status, nil
}

// runOr splits on "||", stopping at the first zero status or on
// interrupt.
func runOr(ctx context.Context, sc *shellctx.Context, line string) (int, error) {
	parts, err := lexer.Split(line, "||")
	if err != nil {
		return 1, err
	}
	status := 1
	for _, p := range parts {
		s := strings.TrimSpace(string(p))
		if s == "" {
			continue
		}
		if sc.Interrupted.Load() {
			return status, nil
		}
		var err error
		status, err = runUnit(ctx, sc, s)
		if err != nil || status == 0 {
			return status, err
		}
	}
	return status, nil
}

// runUnit handles one "&&"/"||"-separated unit: a control form, or a
// "|"-separated pipeline of simple commands.
func runUnit(ctx context.Context, sc *shellctx.Context, unit string) (int, error) {
	if _, ok := control.Match(unit); ok {
		return control.Run(ctx, sc, unit, Run)
	}

	segments, err := lexer.Split(unit, "|")
	if err != nil {
		return 1, err
	}

	background := false
	last := len(segments) - 1
	if last >= 0 {
		trimmed := strings.TrimRight(string(segments[last]), " \t")
		if strings.HasSuffix(trimmed, "&") && !strings.HasSuffix(trimmed, "&&") {
			background = true
			segments[last] = token.Token(strings.TrimSuffix(trimmed, "&"))
		}
	}

	cmds := make([]procexec.Command, 0, len(segments))
	for _, seg := range segments {
		cmd, err := buildCommand(sc, strings.TrimSpace(string(seg)))
		if err != nil {
			return 1, err
		}
		cmds = append(cmds, cmd)
	}

	if background {
		if len(cmds) != 1 {
			return 1, nil // background pipelines are not part of this grammar
		}
		if cmds[0].NoOp {
			return 1, nil
		}
		if _, err := procexec.RunBackground(ctx, sc, cmds[0]); err != nil {
			return 1, err
		}
		return 0, nil
	}

	return procexec.RunPipeline(ctx, sc, cmds)
}

// buildCommand resolves redirections, tokenizes, and alias-expands a
// single simple command's text into a procexec.Command.
func buildCommand(sc *shellctx.Context, text string) (procexec.Command, error) {
	cleaned, specs, err := redirect.Parse(text)
	if err != nil {
		return procexec.Command{}, err
	}
	toks, err := lexer.Split(cleaned, " ")
	if err != nil {
		return procexec.Command{}, err
	}
	res, err := sc.Aliases.Expand(toks)
	if err != nil {
		return procexec.Command{}, err
	}
	if res.NoOp {
		return procexec.Command{Argv: nil, Redirects: specs, NoOp: true}, nil
	}
	return procexec.Command{Argv: res.Tokens.Strings(), Redirects: specs}, nil
}
