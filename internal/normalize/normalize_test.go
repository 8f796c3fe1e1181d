package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/translation"
)

func TestObservedToken(t *testing.T) {
	cases := []struct {
		alt, ref, want string
	}{
		{"T", "C", "sT"},
		{"<CNV>", "N", "sCNV"},
		{"A", "AT", "id-"},     // deletion
		{"AT", "A", "idT"},     // insertion, inserted suffix
		{"-", "C", NullAllele}, // null
	}
	for _, c := range cases {
		require.Equal(t, c.want, ObservedToken(c.alt, c.ref), "alt=%s ref=%s", c.alt, c.ref)
	}
}

func TestDefinitionTokens_IUPAC(t *testing.T) {
	n := New(config.DefaultIUPACCodes())

	tokens := n.DefinitionTokens(translation.VarTypeSubstitution, "R")
	require.ElementsMatch(t, []string{"sA", "sG"}, tokens)

	tokens = n.DefinitionTokens(translation.VarTypeInsertion, "AT")
	require.Equal(t, []string{"idAT"}, tokens)

	tokens = n.DefinitionTokens(translation.VarTypeDeletion, "A")
	require.Equal(t, []string{"id-"}, tokens)

	// Unknown IUPAC code passes through as a literal substitution token.
	tokens = n.DefinitionTokens(translation.VarTypeSubstitution, "Z")
	require.Equal(t, []string{"sZ"}, tokens)
}

func TestMatchCount(t *testing.T) {
	observed := []string{"sA", "sG"}
	require.Equal(t, 2, MatchCount(observed, []string{"sA", "sG"}))
	require.Equal(t, 1, MatchCount(observed, []string{"sA", "sC"}))
	require.Equal(t, 0, MatchCount(observed, []string{"sC", "sT"}))
}

func TestIsMissing(t *testing.T) {
	require.True(t, IsMissing([]string{NullAllele, NullAllele}))
	require.False(t, IsMissing([]string{NullAllele, "sA"}))
}
