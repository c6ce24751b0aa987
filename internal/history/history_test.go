package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/history"
)

func seeded(t *testing.T, entries ...string) *history.Store {
	t.Helper()
	s := history.New(nil, 0)
	for _, e := range entries {
		s.Append(e)
	}
	return s
}

func TestAppendCollapsesConsecutiveHistory(t *testing.T) {
	s := seeded(t, "echo a")
	s.Append("history")
	s.Append("history")
	assert.Equal(t, []string{"echo a", "history"}, s.All())
}

func TestAppendCapacityCeiling(t *testing.T) {
	s := history.New(nil, 2)
	s.Append("a")
	s.Append("b")
	s.Append("c")
	assert.Equal(t, []string{"b", "c"}, s.All())
}

func TestExpandBangBang(t *testing.T) {
	s := seeded(t, "echo ping")
	got, err := history.Expand("!!", s)
	require.NoError(t, err)
	assert.Equal(t, "echo ping", got)
}

func TestExpandBangN(t *testing.T) {
	s := seeded(t, "echo one", "echo two", "echo three")
	got, err := history.Expand("!2", s)
	require.NoError(t, err)
	assert.Equal(t, "echo two", got)
}

func TestExpandBangMinusN(t *testing.T) {
	s := seeded(t, "echo one", "echo two", "echo three")
	got, err := history.Expand("!-2", s)
	require.NoError(t, err)
	assert.Equal(t, "echo two", got)
}

func TestExpandLoneBangLiteral(t *testing.T) {
	s := seeded(t)
	got, err := history.Expand("echo hi!", s)
	require.NoError(t, err)
	assert.Equal(t, "echo hi!", got)
}

func TestExpandEventNotFound(t *testing.T) {
	s := seeded(t)
	_, err := history.Expand("!5", s)
	assert.Error(t, err)

	_, err = history.Expand("!xyz", s)
	assert.Error(t, err)
}

func TestNthAndFromEndOneIndexed(t *testing.T) {
	s := seeded(t, "first", "second", "third")
	v, ok := s.Nth(1)
	require.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = s.FromEnd(1)
	require.True(t, ok)
	assert.Equal(t, "third", v)
}
