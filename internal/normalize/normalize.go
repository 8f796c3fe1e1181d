// Package normalize canonicalises observed and definition alt alleles into
// a single comparable token alphabet (spec.md §4.1).
package normalize

import (
	"strings"

	"github.com/inodb/starcall/internal/translation"
)

// NullAllele is the observed-side token for a null/missing genotype call.
const NullAllele = "-"

// Normalizer maps observed and definition-side alleles into tokens,
// using a configurable IUPAC code table.
type Normalizer struct {
	iupac map[string][]string
}

// New builds a Normalizer from an IUPAC code table (code -> nucleotide set).
func New(iupacCodes map[string][]string) *Normalizer {
	return &Normalizer{iupac: iupacCodes}
}

// ObservedToken maps one observed allele (alt, with its ref) to a token.
// - symbolic alt (<X>) -> "s<X>" (angle brackets stripped)
// - len(ref) > len(alt) -> "id-" (deletion sentinel)
// - len(ref) < len(alt) -> "id" + alt[1:] (inserted suffix)
// - otherwise -> "s" + alt (substitution)
// - null allele ("-" or "") -> NullAllele
func ObservedToken(alt, ref string) string {
	if alt == "" || alt == NullAllele {
		return NullAllele
	}
	if translation.IsSymbolicAllele(alt) {
		return "s" + translation.StripSymbolicAllele(alt)
	}
	switch {
	case len(ref) > len(alt):
		return "id-"
	case len(ref) < len(alt):
		return "id" + alt[1:]
	default:
		return "s" + alt
	}
}

// DefinitionTokens maps one translation-table definition (var_type, alt) to
// the set of tokens it is satisfied by. Insertions and deletions map to a
// single token; substitutions expand through the IUPAC code table (unknown
// codes pass through as a single literal substitution token, spec.md §7).
func (n *Normalizer) DefinitionTokens(varType translation.VarType, alt string) []string {
	switch varType {
	case translation.VarTypeInsertion:
		return []string{"id" + alt}
	case translation.VarTypeDeletion:
		return []string{"id-"}
	case translation.VarTypeCNV:
		return []string{"s" + translation.StripSymbolicAllele(alt)}
	default:
		code := strings.ToUpper(alt)
		if nts, ok := n.iupac[code]; ok {
			tokens := make([]string, len(nts))
			for i, nt := range nts {
				tokens[i] = "s" + nt
			}
			return tokens
		}
		return []string{"s" + alt}
	}
}

// MatchCount counts how many of the observed tokens equal any of the
// definition tokens (spec.md §4.1 "Match count").
func MatchCount(observedTokens []string, definitionTokens []string) int {
	defSet := make(map[string]bool, len(definitionTokens))
	for _, t := range definitionTokens {
		defSet[t] = true
	}
	count := 0
	for _, obs := range observedTokens {
		if defSet[obs] {
			count++
		}
	}
	return count
}

// IsMissing reports whether an observed allele pair carries no information
// (both alleles null).
func IsMissing(observedTokens []string) bool {
	for _, t := range observedTokens {
		if t != NullAllele {
			return false
		}
	}
	return len(observedTokens) > 0
}
