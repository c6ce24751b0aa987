package control_test

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/control"
	"github.com/AlanLuu/alsh/internal/history"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/clog"
)

// fakeRun treats "true"/"false" as status sentinels and records every
// condition and body it was asked to execute, so tests can assert on loop iteration
// counts without going through internal/compose or internal/procexec.
func fakeRun(log *[]string) control.RunFunc {
	return func(ctx context.Context, sc *shellctx.Context, line string) (int, error) {
		*log = append(*log, line)
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "true":
			return 0, nil
		case "false":
			return 1, nil
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, nil
		}
		return 0, nil
	}
}

func newTestContext(t *testing.T) *shellctx.Context {
	t.Helper()
	logger := clog.New(slog.LevelInfo, io.Discard)
	return shellctx.New(logger, history.New(nil, 0), varstore.New(), alias.New())
}

func TestMatch(t *testing.T) {
	kw, ok := control.Match("if (true) echo hi")
	assert.True(t, ok)
	assert.Equal(t, "if", kw)

	_, ok = control.Match("echo hi")
	assert.False(t, ok)
}

func TestRunIfTrueBranch(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	status, err := control.Run(context.Background(), sc, "if (true) echo yes", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Contains(t, log, " echo yes")
}

func TestRunIfElseGreedyBinding(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	_, err := control.Run(context.Background(), sc, "if (false) echo a else echo b", fakeRun(&log))
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "false", strings.TrimSpace(log[0]))
	assert.Equal(t, "echo b", strings.TrimSpace(log[1]))
}

func TestRunIfNegated(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	status, err := control.Run(context.Background(), sc, "if (- true) echo a else echo b", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Contains(t, log, " echo b")
}

func TestRunWhileCountsIterations(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	// condition body "false" always yields non-zero, so the loop body
	// (appended to log) must never execute here; this only checks the
	// condition runs exactly once before stopping.
	_, err := control.Run(context.Background(), sc, "while (false) echo body", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, []string{"false"}, log)
	for _, l := range log {
		assert.NotContains(t, l, "echo body")
	}
}

func TestRunRepeatRunsNTimes(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	status, err := control.Run(context.Background(), sc, "repeat (3) echo tick", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	count := 0
	for _, l := range log {
		if strings.TrimSpace(l) == "echo tick" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestRunRepeatZeroNeverRuns(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	_, err := control.Run(context.Background(), sc, "repeat (0) echo tick", fakeRun(&log))
	require.NoError(t, err)
	for _, l := range log {
		assert.NotContains(t, l, "echo tick")
	}
}

func TestRunMissingParenIsSyntaxError(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	status, err := control.Run(context.Background(), sc, "if true echo hi", fakeRun(&log))
	assert.Error(t, err)
	assert.Equal(t, -1, status)
}

func TestRunRepeatCountReferencesVariable(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	sc.Vars.SetLocal("N", "5")
	status, err := control.Run(context.Background(), sc, "repeat (N) echo hi", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	count := 0
	for _, l := range log {
		if strings.TrimSpace(l) == "echo hi" {
			count++
		}
	}
	assert.Equal(t, 5, count)
}

func TestRunRepeatCountReferencesUnevaluatedLetExpression(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	// "let N=( 2 + 3 )" stores the literal string "( 2 + 3 )", not "5";
	// repeat's count must evaluate it, not just parse it as a number.
	sc.Vars.SetLocal("N", "( 2 + 3 )")
	status, err := control.Run(context.Background(), sc, "repeat (N) echo hi", fakeRun(&log))
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	count := 0
	for _, l := range log {
		if strings.TrimSpace(l) == "echo hi" {
			count++
		}
	}
	assert.Equal(t, 5, count)
}

func TestRunRepeatCountUndefinedVariableIsError(t *testing.T) {
	var log []string
	sc := newTestContext(t)
	status, err := control.Run(context.Background(), sc, "repeat (N) echo hi", fakeRun(&log))
	assert.Error(t, err)
	assert.Equal(t, -1, status)
}

func TestRunPropagatesBodyError(t *testing.T) {
	sc := newTestContext(t)
	boom := func(ctx context.Context, sc *shellctx.Context, line string) (int, error) {
		if strings.TrimSpace(line) == "true" {
			return 0, nil
		}
		return 1, assert.AnError
	}
	status, err := control.Run(context.Background(), sc, "if (true) boom", boom)
	assert.Error(t, err)
	assert.Equal(t, 1, status)
}
