package builtin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/builtin"
	"github.com/AlanLuu/alsh/internal/history"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/clog"
)

func newTestContext(t *testing.T) *shellctx.Context {
	t.Helper()
	logger := clog.New(slog.LevelInfo, io.Discard)
	return shellctx.New(logger, history.New(nil, 0), varstore.New(), alias.New())
}

func TestIsRecognizesBuiltinNames(t *testing.T) {
	assert.True(t, builtin.Is("cd"))
	assert.True(t, builtin.Is("exit"))
	assert.False(t, builtin.Is("ls"))
}

func TestDispatchUnknownNotHandled(t *testing.T) {
	sc := newTestContext(t)
	_, handled, err := builtin.Dispatch(context.Background(), sc, []string{"ls"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDispatchTrueFalse(t *testing.T) {
	sc := newTestContext(t)
	status, handled, err := builtin.Dispatch(context.Background(), sc, []string{"true"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, status)

	status, handled, err = builtin.Dispatch(context.Background(), sc, []string{"false"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, status)
}

func TestDispatchExitReturnsExitRequest(t *testing.T) {
	sc := newTestContext(t)
	status, handled, err := builtin.Dispatch(context.Background(), sc, []string{"exit", "7"})
	assert.True(t, handled)
	assert.Equal(t, 7, status)
	var exitReq *builtin.ExitRequest
	require.ErrorAs(t, err, &exitReq)
	assert.Equal(t, 7, exitReq.Status)
}

func TestDispatchExitDefaultsToZero(t *testing.T) {
	sc := newTestContext(t)
	status, _, err := builtin.Dispatch(context.Background(), sc, []string{"exit"})
	assert.Equal(t, 0, status)
	var exitReq *builtin.ExitRequest
	require.ErrorAs(t, err, &exitReq)
}

func TestLetAndExport(t *testing.T) {
	sc := newTestContext(t)
	_, _, err := builtin.Dispatch(context.Background(), sc, []string{"let", "x=1"})
	require.NoError(t, err)
	v, ok := sc.Vars.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, _, err = builtin.Dispatch(context.Background(), sc, []string{"export", "y=2"})
	require.NoError(t, err)
	v, ok = sc.Vars.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestAliasSetAndUnalias(t *testing.T) {
	sc := newTestContext(t)
	_, _, err := builtin.Dispatch(context.Background(), sc, []string{"alias", "ll=ls -la"})
	require.NoError(t, err)
	val, ok := sc.Aliases.Get("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -la", val)

	_, _, err = builtin.Dispatch(context.Background(), sc, []string{"unalias", "ll"})
	require.NoError(t, err)
	_, ok = sc.Aliases.Get("ll")
	assert.False(t, ok)
}

func TestUnaliasUnknownFails(t *testing.T) {
	sc := newTestContext(t)
	status, _, err := builtin.Dispatch(context.Background(), sc, []string{"unalias", "nope"})
	assert.Error(t, err)
	assert.Equal(t, 1, status)
}

func TestChkComparisons(t *testing.T) {
	sc := newTestContext(t)
	cases := []struct {
		op     string
		wantOK bool
	}{
		{"-eq", true}, {"-ne", false}, {"-lt", false}, {"-le", true}, {"-gt", false}, {"-ge", true},
	}
	for _, tc := range cases {
		status, handled, err := builtin.Dispatch(context.Background(), sc, []string{"chk", "1", tc.op, "1"})
		require.NoError(t, err)
		assert.True(t, handled)
		if tc.wantOK {
			assert.Equal(t, 0, status, tc.op)
		} else {
			assert.Equal(t, 1, status, tc.op)
		}
	}
}

func TestChkBadArgCount(t *testing.T) {
	sc := newTestContext(t)
	_, _, err := builtin.Dispatch(context.Background(), sc, []string{"chk", "1", "-eq"})
	assert.Error(t, err)
}

func TestChkNonNumeric(t *testing.T) {
	sc := newTestContext(t)
	_, _, err := builtin.Dispatch(context.Background(), sc, []string{"chk", "x", "-eq", "1"})
	assert.Error(t, err)
}

func TestJobsEmpty(t *testing.T) {
	sc := newTestContext(t)
	status, handled, err := builtin.Dispatch(context.Background(), sc, []string{"jobs"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, status)
}
