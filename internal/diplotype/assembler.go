// Package diplotype assembles Solver Driver results into the final,
// deduplicated set of candidate diplotypes for one (sample, gene) pair
// (spec.md §4.5).
package diplotype

import (
	"sort"

	"github.com/inodb/starcall/internal/ilp"
)

// Diplotype is an unordered pair of haplotype names, always stored with
// the lexicographically smaller name first so two instances naming the
// same pair compare equal (spec.md §5 "Ordering guarantee").
type Diplotype struct {
	A, B string
}

// canonical returns a Diplotype with its names in sorted order.
func canonical(a, b string) Diplotype {
	if a > b {
		a, b = b, a
	}
	return Diplotype{A: a, B: b}
}

func (d Diplotype) String() string {
	return d.A + "/" + d.B
}

// Call is one accepted solution expanded into a Diplotype, its consumed
// variants, and the reference-padding count used to build it.
type Call struct {
	Diplotype Diplotype
	Variants  []string
	Refs      int
}

// Result is the Assembler's final answer for one (sample, gene) pair: the
// deduplicated tie set and its confidence.
type Result struct {
	// Calls is the deduplicated, canonically-sorted tie set. Every
	// element was accepted by the Solver Driver (within optimal_decay of
	// the best objective) and survived the refs>0 preference, so it may
	// score below the best solution the solver found.
	Calls []Call

	// Confidence is 1 / len(Calls).
	Confidence float64

	// PossibleNovel flags that the subject's variant evidence exceeds
	// what any matched haplotype in the tie set explains -- a direct
	// byproduct of the objective gap between what was observed and what
	// was used, ported from hiMoon's AllelePicker.possible_novel.
	PossibleNovel bool
}

// Assemble converts a Driver's accepted solutions into the final
// deduplicated Result (spec.md §4.5).
func Assemble(referenceName string, model *ilp.Model, solutions []*ilp.Solution, observedVariantCount int) *Result {
	if len(solutions) == 0 {
		return &Result{
			Calls:      []Call{{Diplotype: canonical(referenceName, referenceName), Refs: 2}},
			Confidence: 1,
		}
	}

	calls := make([]Call, 0, len(solutions))
	for _, s := range solutions {
		calls = append(calls, assembleOne(referenceName, model, s))
	}

	calls = dedupe(calls)
	calls = preferRefPositive(calls)
	sortCalls(calls)

	usedMax := 0
	for _, c := range calls {
		if n := len(c.Variants); n > usedMax {
			usedMax = n
		}
	}

	return &Result{
		Calls:         calls,
		Confidence:    1 / float64(len(calls)),
		PossibleNovel: observedVariantCount > usedMax,
	}
}

// assembleOne expands one solution by H_h multiplicity into a canonical
// diplotype, reference-padding as needed (spec.md §4.5 cases).
func assembleOne(referenceName string, model *ilp.Model, s *ilp.Solution) Call {
	var names []string
	for h, count := range s.H {
		for i := 0; i < count; i++ {
			names = append(names, model.Haplotypes[h])
		}
	}

	refs := 0
	for len(names) < 2 {
		names = append(names, referenceName)
		refs++
	}
	sort.Strings(names)

	var dip Diplotype
	switch {
	case len(names) == 2:
		dip = canonical(names[0], names[1])
	default:
		// max_haps > 2: broader case, report the first two after sorting
		// by lexicographic order as the reported pair, since Diplotype is
		// defined as a size-2 multiset (spec.md §3).
		dip = canonical(names[0], names[1])
	}

	return Call{
		Diplotype: dip,
		Variants:  model.UsedVariants(s),
		Refs:      refs,
	}
}

// dedupe removes exact-duplicate diplotypes (same canonical pair), keeping
// the first-seen variant list.
func dedupe(calls []Call) []Call {
	seen := make(map[Diplotype]bool, len(calls))
	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		if seen[c.Diplotype] {
			continue
		}
		seen[c.Diplotype] = true
		out = append(out, c)
	}
	return out
}

// preferRefPositive implements the post-processing rule: if any call has
// refs > 0, keep only those, since they represent the biologically
// conservative reading (spec.md §4.5).
func preferRefPositive(calls []Call) []Call {
	hasRefPositive := false
	for _, c := range calls {
		if c.Refs > 0 {
			hasRefPositive = true
			break
		}
	}
	if !hasRefPositive {
		return calls
	}
	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		if c.Refs > 0 {
			out = append(out, c)
		}
	}
	return out
}

func sortCalls(calls []Call) {
	sort.Slice(calls, func(i, j int) bool {
		if calls[i].Diplotype.A != calls[j].Diplotype.A {
			return calls[i].Diplotype.A < calls[j].Diplotype.A
		}
		return calls[i].Diplotype.B < calls[j].Diplotype.B
	})
}
