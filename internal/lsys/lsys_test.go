package lsys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThreeGenerationTrace(t *testing.T) {
	g, err := Parse("a=[*Ccrb]", "b=aYaYa", "r=PYR", "c=HSL")
	require.NoError(t, err)
	require.Equal(t, []string{
		"a",
		"[*Ccrb]",
		"[*CHSLPYRaYaYa]",
		"[*CHSLPYR[*Ccrb]Y[*Ccrb]Y[*Ccrb]]",
	}, g.Generations("a", 3))
}

func TestFixedPointStopsEarly(t *testing.T) {
	g, err := Parse("a>b")
	require.NoError(t, err)
	require.Equal(t, []string{"aa", "bb"}, g.Generations("aa", 5))
}

func TestParseRejectsBadProductions(t *testing.T) {
	for _, p := range []string{"ab=c", "=c", "abc", "a=b"} {
		_, err := Parse("a=x", p)
		require.True(t, errors.Is(err, ErrBadProduction), "%q: %v", p, err)
	}
}

func TestSymbols(t *testing.T) {
	g, err := Parse("a=[*Ccrb]", "b=aYaYa")
	require.NoError(t, err)
	require.Equal(t, "a[*Ccrb]Y", g.Symbols("a"))
}
