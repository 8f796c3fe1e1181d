// Package match implements the Matcher: it annotates each translation-table
// row with a match count and phased-strand label against one sample's
// observed genotypes, then prunes rows and haplotypes that cannot appear in
// any diplotype (spec.md §4.2).
package match

import (
	"sort"

	"github.com/inodb/starcall/internal/gene"
	"github.com/inodb/starcall/internal/normalize"
	"github.com/inodb/starcall/internal/translation"
	"github.com/inodb/starcall/internal/variantsource"
)

// Strand labels (spec.md §3 "MatchedRow").
const (
	StrandUnknown = 0
	StrandLeft    = 1
	StrandRight   = -1
	StrandHomozyg = 3
)

// MatchedRow is a translation-table row enriched with its match outcome
// against one sample's genotypes.
type MatchedRow struct {
	Row      *translation.Row
	Match    int
	Strand   int
	PhaseSet int
	VarKey   string
}

// Result is the Matcher's output for one (sample, gene) pair.
type Result struct {
	// Rows is the pruned set of MatchedRows that survived both prune
	// steps (spec.md §4.2 steps 2-3).
	Rows []*MatchedRow

	// Variants maps each distinct var_key remaining to its minimum match
	// value (the maximum usable count across duplicate rows, spec.md
	// §4.2 step 4).
	Variants map[string]int

	// Haplotypes is the distinct set of candidate haplotype names
	// remaining after pruning.
	Haplotypes []string

	// NoVariants is true when the sample has no observed variants at all
	// in the gene's window; matching is skipped and callers must report
	// the gene NA for this sample (spec.md §4.2 "Failure mode").
	NoVariants bool
}

// Matcher matches one Gene Context's translation table against one
// sample's genotypes.
type Matcher struct {
	normalizer *normalize.Normalizer
	missing    int
}

// New builds a Matcher using normalizer for token canonicalisation and
// missingSentinel as the configured MISSING match value (spec.md §6.3
// "missing_variants", default 99).
func New(normalizer *normalize.Normalizer, missingSentinel int) *Matcher {
	return &Matcher{normalizer: normalizer, missing: missingSentinel}
}

// Match runs the matcher procedure for one sample against ctx's table,
// using the genotypes already fetched for ctx's window (spec.md §4.2).
func (m *Matcher) Match(ctx *gene.Context, sampleID string, genotypes map[string]map[string]*variantsource.ObservedGenotype) *Result {
	if !sampleHasAnyObservation(sampleID, genotypes) {
		return &Result{NoVariants: true}
	}

	matched := make([]*MatchedRow, 0, len(ctx.Table.Rows))
	for _, row := range ctx.Table.Rows {
		matched = append(matched, m.matchRow(row, sampleID, genotypes))
	}

	// Step 2: drop rows whose match is the MISSING sentinel.
	present := make([]*MatchedRow, 0, len(matched))
	for _, mr := range matched {
		if mr.Match == m.missing {
			continue
		}
		present = append(present, mr)
	}

	// Step 3: drop every haplotype for which any remaining row has
	// match == 0.
	zeroHap := make(map[string]bool)
	for _, mr := range present {
		if mr.Match == 0 {
			zeroHap[mr.Row.HaplotypeName] = true
		}
	}

	result := &Result{
		Variants: make(map[string]int),
	}
	hapSeen := make(map[string]bool)
	for _, mr := range present {
		if zeroHap[mr.Row.HaplotypeName] {
			continue
		}
		result.Rows = append(result.Rows, mr)
		if !hapSeen[mr.Row.HaplotypeName] {
			hapSeen[mr.Row.HaplotypeName] = true
			result.Haplotypes = append(result.Haplotypes, mr.Row.HaplotypeName)
		}
		if prev, ok := result.Variants[mr.VarKey]; !ok || mr.Match < prev {
			result.Variants[mr.VarKey] = mr.Match
		}
	}
	sort.Strings(result.Haplotypes)

	return result
}

// matchRow computes (match, strand, phase_set) for a single row.
func (m *Matcher) matchRow(row *translation.Row, sampleID string, genotypes map[string]map[string]*variantsource.ObservedGenotype) *MatchedRow {
	mr := &MatchedRow{
		Row:      row,
		VarKey:   row.VarKey(),
		Match:    m.missing,
		Strand:   StrandUnknown,
		PhaseSet: -1,
	}

	bySample, ok := genotypes[row.MatchVariantID()]
	if !ok {
		return mr
	}
	observed, ok := bySample[sampleID]
	if !ok {
		return mr
	}

	defTokens := m.normalizer.DefinitionTokens(row.VarType, row.AltAllele)

	if len(observed.Alleles) == 0 {
		return mr
	}

	// A CNV record without GT-derived dosage falls back to a single
	// CN-tag/symbolic token (internal/variantsource.alleleSeqs); there is
	// no zygosity to report beyond "present", so strand is Homozyg.
	if row.VarType == translation.VarTypeCNV && len(observed.Alleles) == 1 {
		tok := normalize.ObservedToken(observed.Alleles[0], observed.Ref)
		match := 0
		if normalize.MatchCount([]string{tok}, defTokens) > 0 {
			match = 1
		}
		mr.Match = match
		mr.Strand = StrandHomozyg
		mr.PhaseSet = observed.PhaseSet
		return mr
	}

	if len(observed.Alleles) < 2 {
		return mr
	}

	tokA := normalize.ObservedToken(observed.Alleles[0], observed.Ref)
	tokB := normalize.ObservedToken(observed.Alleles[1], observed.Ref)
	matchA := normalize.MatchCount([]string{tokA}, defTokens)
	matchB := normalize.MatchCount([]string{tokB}, defTokens)

	mr.Match = matchA + matchB
	mr.PhaseSet = -1

	switch {
	case mr.Match == 2:
		mr.Strand = StrandHomozyg
	case mr.Match == 1 && observed.Phased:
		mr.PhaseSet = observed.PhaseSet
		if matchA > 0 {
			mr.Strand = StrandLeft
		} else {
			mr.Strand = StrandRight
		}
	default:
		mr.Strand = StrandUnknown
	}

	return mr
}

// sampleHasAnyObservation reports whether sampleID appears anywhere in the
// fetched genotype map.
func sampleHasAnyObservation(sampleID string, genotypes map[string]map[string]*variantsource.ObservedGenotype) bool {
	for _, bySample := range genotypes {
		if _, ok := bySample[sampleID]; ok {
			return true
		}
	}
	return false
}
