// Package ilp builds and solves the max-variant-use integer program that
// picks a gene's diplotype from a Matcher's pruned rows (spec.md §4.3,
// §4.4). No third-party MILP library exists anywhere in the reference
// corpus this was grounded on (see DESIGN.md), so the solver is a small
// hand-built exhaustive enumeration sized to the problem: a handful of
// haplotype and variant variables per gene.
//
// Reduced form: each V_v is fully determined by the H vector (V_v is 1
// exactly when some selected haplotype defines v), so the variant-usage
// lower bound always holds and only the H_h need enumerating. A
// candidate H vector is feasible when every variant's usage
// Σ_h A[h][v]·H_h is at most M_v, or exactly M_v for a CNV variant, and
// Σ_h H_h ≤ K. Each H_h ranges over 0..2 whatever K is.
package ilp

import (
	"sort"

	"github.com/inodb/starcall/internal/match"
)

// Model is the explicit integer program for one (sample, gene) call:
// integer H_h ∈ [0, 2] per candidate haplotype (with Σ_h H_h ≤ K), binary
// V_v per matched variant (spec.md §4.3).
type Model struct {
	Haplotypes []string // index -> haplotype name, sorted for determinism
	Variants   []string // index -> var_key, sorted for determinism

	// A[h][v] is 1 iff haplotype h's surviving rows define variant v.
	A [][]int

	// M holds each variant's match value (1 or 2).
	M []int

	// IsCNV flags variants whose defining row has var_type CNV, which
	// must be used to exactly M_v copies (spec.md §4.3 constraint 4).
	IsCNV []bool

	// ObjCoeff[h] is the number of match>0 rows haplotype h contributes,
	// the per-haplotype objective weight (spec.md §4.3 "Objective").
	ObjCoeff []int

	MaxHaps int
}

// Build constructs a Model from a Matcher Result. When phased is true,
// haplotypes that fail the phase-compatibility test are pre-filtered
// before the model is assembled (spec.md §4.3 constraint 5).
func Build(result *match.Result, maxHaps int, phased bool) *Model {
	rowsByHap := make(map[string][]*match.MatchedRow)
	for _, mr := range result.Rows {
		rowsByHap[mr.Row.HaplotypeName] = append(rowsByHap[mr.Row.HaplotypeName], mr)
	}

	haps := append([]string(nil), result.Haplotypes...)
	if phased {
		haps = filterPhaseIncompatible(haps, rowsByHap)
	}
	sort.Strings(haps)

	variants := make([]string, 0, len(result.Variants))
	for v := range result.Variants {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	variantIndex := make(map[string]int, len(variants))
	for i, v := range variants {
		variantIndex[v] = i
	}

	m := &Model{
		Haplotypes: haps,
		Variants:   variants,
		A:          make([][]int, len(haps)),
		M:          make([]int, len(variants)),
		IsCNV:      make([]bool, len(variants)),
		ObjCoeff:   make([]int, len(haps)),
		MaxHaps:    maxHaps,
	}
	for i, v := range variants {
		m.M[i] = result.Variants[v]
	}

	for h, name := range haps {
		m.A[h] = make([]int, len(variants))
		rows := rowsByHap[name]
		m.ObjCoeff[h] = len(rows)
		for _, mr := range rows {
			if vi, ok := variantIndex[mr.VarKey]; ok {
				m.A[h][vi] = 1
				if mr.Row.VarType == "CNV" {
					m.IsCNV[vi] = true
				}
			}
		}
	}

	return m
}

// filterPhaseIncompatible drops haplotypes whose heterozygous rows
// disagree in strand label within a shared phase set (spec.md §4.3
// constraint 5).
func filterPhaseIncompatible(haps []string, rowsByHap map[string][]*match.MatchedRow) []string {
	kept := make([]string, 0, len(haps))
	for _, h := range haps {
		if isPhaseFeasible(rowsByHap[h]) {
			kept = append(kept, h)
		}
	}
	return kept
}

func isPhaseFeasible(rows []*match.MatchedRow) bool {
	strandByPhaseSet := make(map[int]int)
	for _, mr := range rows {
		if mr.Strand != match.StrandLeft && mr.Strand != match.StrandRight {
			continue
		}
		if prev, ok := strandByPhaseSet[mr.PhaseSet]; ok {
			if prev != mr.Strand {
				return false
			}
			continue
		}
		strandByPhaseSet[mr.PhaseSet] = mr.Strand
	}
	return true
}
