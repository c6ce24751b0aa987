package varsub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlanLuu/alsh/internal/varstore"
	"github.com/AlanLuu/alsh/internal/varsub"
)

func TestSubstituteLocal(t *testing.T) {
	store := varstore.New()
	store.SetLocal("X", "hello")

	got, err := varsub.Substitute("echo $X world", store)
	require.NoError(t, err)
	assert.Equal(t, "echo hello world", got)
}

func TestSubstituteUndefinedOutsideParensIsEmpty(t *testing.T) {
	store := varstore.New()
	got, err := varsub.Substitute("echo $UNDEFINED_ALSH_VAR end", store)
	require.NoError(t, err)
	assert.Equal(t, "echo  end", got)
}

func TestSubstituteUndefinedInsideParensIsError(t *testing.T) {
	store := varstore.New()
	_, err := varsub.Substitute("repeat ($UNDEFINED_ALSH_VAR) echo hi", store)
	assert.Error(t, err)
}

func TestSubstituteShortInputUnchanged(t *testing.T) {
	store := varstore.New()
	got, err := varsub.Substitute("$", store)
	require.NoError(t, err)
	assert.Equal(t, "$", got)
}

func TestSubstituteNoDollarUnchanged(t *testing.T) {
	store := varstore.New()
	got, err := varsub.Substitute("echo hi", store)
	require.NoError(t, err)
	assert.Equal(t, "echo hi", got)
}
