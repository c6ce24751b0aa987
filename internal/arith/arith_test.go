package arith_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/arith"
)

func TestEvalBasic(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-2 + 3", 1},
		{"-(2 + 3)", -5},
		{"10 / 4", 2.5},
		{"1.5 + 1.5", 3},
		{"--2", 2},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			got, err := arith.Eval(c.expr, nil)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-9)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []string{
		"1 / 0",
		"1 +",
		"1.2.3",
		"1 @ 2",
		"(1 + 2",
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			_, err := arith.Eval(expr, nil)
			assert.Error(t, err)
		})
	}
}

func TestEvalResolvesBareVariable(t *testing.T) {
	resolve := func(name string) (string, bool) {
		if name == "N" {
			return "5", true
		}
		return "", false
	}
	got, err := arith.Eval("N", resolve)
	require.NoError(t, err)
	assert.InDelta(t, 5, got, 1e-9)

	got, err = arith.Eval("N * 2", resolve)
	require.NoError(t, err)
	assert.InDelta(t, 10, got, 1e-9)
}

func TestEvalResolvesVariableHoldingAnUnevaluatedExpression(t *testing.T) {
	// mirrors what "let N=( 2 + 3 )" actually stores: the literal,
	// unevaluated right-hand side, not its numeric result.
	resolve := func(name string) (string, bool) {
		if name == "N" {
			return "( 2 + 3 )", true
		}
		return "", false
	}
	got, err := arith.Eval("N", resolve)
	require.NoError(t, err)
	assert.InDelta(t, 5, got, 1e-9)
}

func TestEvalUndefinedVariableIsNameError(t *testing.T) {
	resolve := func(name string) (string, bool) { return "", false }
	_, err := arith.Eval("N", resolve)
	assert.Error(t, err)
}

func TestEvalBareVariableWithNilResolverIsNameError(t *testing.T) {
	_, err := arith.Eval("N", nil)
	assert.Error(t, err)
}

func TestStripParens(t *testing.T) {
	got, ok := arith.StripParens("( 2 + 3 )")
	assert.True(t, ok)
	assert.Equal(t, "2 + 3", got)

	_, ok = arith.StripParens("2 + 3")
	assert.False(t, ok)
}
