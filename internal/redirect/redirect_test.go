package redirect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/redirect"
)

func TestParseOutputTrunc(t *testing.T) {
	cleaned, specs, err := redirect.Parse("echo hi > out.txt")
	require.NoError(t, err)
	assert.Equal(t, "echo hi ", cleaned)
	require.Len(t, specs, 1)
	assert.Equal(t, redirect.Spec{FD: 1, Direction: redirect.OutTrunc, Path: "out.txt"}, specs[0])
}

func TestParseOutputAppend(t *testing.T) {
	_, specs, err := redirect.Parse("echo hi >> out.txt")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, redirect.OutAppend, specs[0].Direction)
	assert.Equal(t, "out.txt", specs[0].Path)
}

func TestParseInput(t *testing.T) {
	_, specs, err := redirect.Parse("wc -l < in.txt")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, redirect.Spec{FD: 0, Direction: redirect.In, Path: "in.txt"}, specs[0])
}

func TestParseNumberedFD(t *testing.T) {
	_, specs, err := redirect.Parse("cmd 2> err.log")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 2, specs[0].FD)
	assert.Equal(t, redirect.OutTrunc, specs[0].Direction)
}

func TestParseMultipleClauses(t *testing.T) {
	_, specs, err := redirect.Parse("sort < in.txt > out.txt")
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "in.txt", specs[0].Path)
	assert.Equal(t, "out.txt", specs[1].Path)
}

func TestParseQuotedFilename(t *testing.T) {
	_, specs, err := redirect.Parse(`echo hi > "my file.txt"`)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "my file.txt", specs[0].Path)
}

func TestParseOperatorInsideQuotesIsNotRedirection(t *testing.T) {
	cleaned, specs, err := redirect.Parse(`echo "a > b"`)
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.Equal(t, `echo "a > b"`, cleaned)
}

func TestParseOperatorInsideParensIsNotRedirection(t *testing.T) {
	cleaned, specs, err := redirect.Parse("if (a > b) echo yes")
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.Equal(t, "if (a > b) echo yes", cleaned)
}

func TestParseMissingFilename(t *testing.T) {
	_, _, err := redirect.Parse("echo hi >")
	assert.Error(t, err)
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, _, err := redirect.Parse(`echo "hi`)
	assert.Error(t, err)
}
