package procexec_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/history"
	"github.com/AlanLuu/alsh/internal/procexec"
	"github.com/AlanLuu/alsh/internal/shellctx"
	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/pkg/clog"
)

func newTestContext(t *testing.T) *shellctx.Context {
	t.Helper()
	logger := clog.New(slog.LevelInfo, io.Discard)
	return shellctx.New(logger, history.New(nil, 0), varstore.New(), alias.New())
}

func TestRunForegroundNoOpExitsOne(t *testing.T) {
	sc := newTestContext(t)
	status, err := procexec.RunForeground(context.Background(), sc, procexec.Command{NoOp: true})
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}

func TestRunBackgroundNoOpDoesNotStartAJob(t *testing.T) {
	sc := newTestContext(t)
	job, err := procexec.RunBackground(context.Background(), sc, procexec.Command{NoOp: true})
	require.NoError(t, err)
	assert.Zero(t, job.PID)
	assert.Empty(t, sc.Jobs())
}

func TestRunPipelineSingleNoOpStageExitsOne(t *testing.T) {
	sc := newTestContext(t)
	status, err := procexec.RunPipeline(context.Background(), sc, []procexec.Command{{NoOp: true}})
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}
