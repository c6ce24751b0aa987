package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/lexer"
)

func TestSplitBySpace(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "echo hello world", []string{"echo", "hello", "world"}},
		{"collapsed spaces", "echo   hello    world", []string{"echo", "hello", "world"}},
		{"single quoted", "echo 'hello world'", []string{"echo", "hello world"}},
		{"double quoted", `echo "hello world"`, []string{"echo", "hello world"}},
		{"nested other kind preserved", `echo "it's fine"`, []string{"echo", "it's fine"}},
		{"nested other kind preserved 2", `echo 'she said "hi"'`, []string{"echo", `she said "hi"`}},
		{"paren region verbatim", "let N=( 2 + 3 )", []string{"let", "N=( 2 + 3 )"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := lexer.Split(c.in, " ")
			require.NoError(t, err)
			assert.Equal(t, c.want, got.Strings())
		})
	}
}

func TestSplitParenVerbatimSingleToken(t *testing.T) {
	// A parenthesized region is kept verbatim, parens included, and
	// becomes a single token when spaces surround it.
	got, err := lexer.Split("repeat (N) echo hi", " ")
	require.NoError(t, err)
	assert.Equal(t, []string{"repeat", "(N)", "echo", "hi"}, got.Strings())
}

func TestSplitSemicolon(t *testing.T) {
	got, err := lexer.Split("echo a ; echo b", ";")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo a ", " echo b"}, got.Strings())
}

func TestSplitQuotedDelimiterIgnored(t *testing.T) {
	got, err := lexer.Split(`echo "a;b" ; echo c`, ";")
	require.NoError(t, err)
	assert.Equal(t, []string{`echo a;b `, ` echo c`}, got.Strings())
}

func TestSplitUnterminatedQuoteIsError(t *testing.T) {
	_, err := lexer.Split(`echo "unterminated`, " ")
	require.Error(t, err)
}

func TestSplitNegativeParenBalanceIsError(t *testing.T) {
	_, err := lexer.Split("echo ) oops", " ")
	require.Error(t, err)
}

func TestSplitRoundTripInvariant(t *testing.T) {
	// Splitting by " " and rejoining with " " reproduces the input
	// modulo collapsed internal spaces.
	in := "echo   hello   world"
	got, err := lexer.Split(in, " ")
	require.NoError(t, err)
	assert.Equal(t, "echo hello world", got.Join(" "))
}
