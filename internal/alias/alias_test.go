package alias_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/alias"
	"github.com/AlanLuu/alsh/internal/token"
)

func TestExpandSingleWord(t *testing.T) {
	s := alias.New()
	s.Set("a", "b")
	res, err := s.Expand(token.FromStrings([]string{"a", "ARGS"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ARGS"}, res.Tokens.Strings())
}

func TestExpandMultiWord(t *testing.T) {
	s := alias.New()
	s.Set("ll", "ls -la")
	res, err := s.Expand(token.FromStrings([]string{"ll", "/tmp"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-la", "/tmp"}, res.Tokens.Strings())
}

func TestExpandEmptyIsNoOp(t *testing.T) {
	s := alias.New()
	s.Set("skip", "")
	res, err := s.Expand(token.FromStrings([]string{"skip", "x"}))
	require.NoError(t, err)
	assert.True(t, res.NoOp)
}

func TestExpandNoAliasMatchPassesThrough(t *testing.T) {
	s := alias.New()
	res, err := s.Expand(token.FromStrings([]string{"echo", "hi"}))
	require.NoError(t, err)
	assert.False(t, res.WasExpanded)
	assert.Equal(t, []string{"echo", "hi"}, res.Tokens.Strings())
}

func TestNotRecursive(t *testing.T) {
	s := alias.New()
	s.Set("a", "b")
	s.Set("b", "c")
	res, err := s.Expand(token.FromStrings([]string{"a"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.Tokens.Strings())
}
