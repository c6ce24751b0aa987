package compose_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/builtin"
	"github.com/AlanLuu/alsh/internal/compose"
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

func TestRunSequenceRunsEachSegmentRegardless(t *testing.T) {
	sc := newTestContext(t)
	status, err := compose.Run(context.Background(), sc, "false ; true")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestRunAndStopsOnFirstFailure(t *testing.T) {
	sc := newTestContext(t)
	status, err := compose.Run(context.Background(), sc, "false && true")
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}

func TestRunOrStopsOnFirstSuccess(t *testing.T) {
	sc := newTestContext(t)
	status, err := compose.Run(context.Background(), sc, "true || false")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestRunAliasExpansionBeforeDispatch(t *testing.T) {
	sc := newTestContext(t)
	sc.Aliases.Set("ok", "true")
	status, err := compose.Run(context.Background(), sc, "ok")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestRunExitPropagatesAsExitRequest(t *testing.T) {
	sc := newTestContext(t)
	_, err := compose.Run(context.Background(), sc, "exit 3")
	var exitReq *builtin.ExitRequest
	require.ErrorAs(t, err, &exitReq)
	assert.Equal(t, 3, exitReq.Status)
}

func TestRunExitInsideAndStillPropagates(t *testing.T) {
	sc := newTestContext(t)
	_, err := compose.Run(context.Background(), sc, "true && exit 2")
	var exitReq *builtin.ExitRequest
	require.ErrorAs(t, err, &exitReq)
	assert.Equal(t, 2, exitReq.Status)
}

func TestRunEmptyAliasIsNoOpWithStatusOne(t *testing.T) {
	sc := newTestContext(t)
	sc.Aliases.Set("a", "")
	status, err := compose.Run(context.Background(), sc, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}

func TestRunIfControlForm(t *testing.T) {
	sc := newTestContext(t)
	status, err := compose.Run(context.Background(), sc, "if (true) true else false")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestRunRepeatControlForm(t *testing.T) {
	sc := newTestContext(t)
	status, err := compose.Run(context.Background(), sc, "repeat (3) true")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}
