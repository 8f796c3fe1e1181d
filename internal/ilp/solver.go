package ilp

import (
	"sort"

	"github.com/inodb/starcall/internal/logx"
	"github.com/inodb/starcall/internal/match"
)

// Solution is one feasible (optimal or near-optimal) assignment: the
// per-haplotype copy count H_h and the derived objective value.
type Solution struct {
	H         []int // indexed like Model.Haplotypes
	Objective int

	// L is the number of haplotypes with H_h > 0 (spec.md §4.4).
	L int
}

// SelectedHaplotypes returns the haplotype-name -> copy-count map for a
// solution's non-zero entries.
func (m *Model) SelectedHaplotypes(s *Solution) map[string]int {
	selected := make(map[string]int)
	for h, v := range s.H {
		if v > 0 {
			selected[m.Haplotypes[h]] = v
		}
	}
	return selected
}

// UsedVariants returns the var_keys with non-zero usage under s.
func (m *Model) UsedVariants(s *Solution) []string {
	var used []string
	for v, key := range m.Variants {
		sum := 0
		for h := range m.Haplotypes {
			sum += m.A[h][v] * s.H[h]
		}
		if sum > 0 {
			used = append(used, key)
		}
	}
	sort.Strings(used)
	return used
}

// solveAll brute-force enumerates every feasible H vector (spec.md §4.3's
// reduced constraint set; see model.go doc comment) and returns them sorted
// by descending objective, then by canonical (lexicographic) H vector for
// deterministic tie-breaking (spec.md §5 "Ordering guarantee").
func (m *Model) solveAll() []*Solution {
	n := len(m.Haplotypes)
	H := make([]int, n)
	var solutions []*Solution

	var search func(idx, remaining int)
	search = func(idx, remaining int) {
		if idx == n {
			if !m.feasible(H) {
				return
			}
			snap := append([]int(nil), H...)
			solutions = append(solutions, &Solution{
				H:         snap,
				Objective: m.objective(snap),
				L:         countNonZero(snap),
			})
			return
		}
		maxH := 2
		if maxH > remaining {
			maxH = remaining
		}
		for v := 0; v <= maxH; v++ {
			H[idx] = v
			search(idx+1, remaining-v)
		}
		H[idx] = 0
	}
	search(0, m.MaxHaps)

	sort.Slice(solutions, func(i, j int) bool {
		if solutions[i].Objective != solutions[j].Objective {
			return solutions[i].Objective > solutions[j].Objective
		}
		return lessLexicographic(solutions[i].H, solutions[j].H)
	})

	return solutions
}

func (m *Model) feasible(H []int) bool {
	for v := range m.Variants {
		sum := 0
		for h := range m.Haplotypes {
			sum += m.A[h][v] * H[h]
		}
		if m.IsCNV[v] {
			if sum != m.M[v] {
				return false
			}
			continue
		}
		if sum > m.M[v] {
			return false
		}
	}
	return true
}

func (m *Model) objective(H []int) int {
	total := 0
	for h, v := range H {
		total += m.ObjCoeff[h] * v
	}
	return total
}

func countNonZero(H []int) int {
	n := 0
	for _, v := range H {
		if v > 0 {
			n++
		}
	}
	return n
}

func lessLexicographic(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Driver runs the Solver Driver procedure: solve, then enumerate
// alternate optima by successive exclusion of previously accepted
// solutions, bounded by optimal_decay (spec.md §4.4).
type Driver struct {
	OptimalDecay int
	Logger       *logx.Logger
}

// NewDriver builds a Driver using logger for the non-fatal conditions in
// spec.md §7 (infeasible-with-phasing retry, solver abort).
func NewDriver(optimalDecay int, logger *logx.Logger) *Driver {
	return &Driver{OptimalDecay: optimalDecay, Logger: logger}
}

// Run solves for result and discards the built Model, returning only the
// accepted solutions. Callers that also need SelectedHaplotypes/
// UsedVariants should call RunWithModel instead.
func (d *Driver) Run(result *match.Result, maxHaps int, phased bool) []*Solution {
	_, solutions := RunWithModel(d, result, maxHaps, phased)
	return solutions
}

// enumerate applies the alternate-optimum acceptance rules (spec.md §4.4):
// within optimal_decay of the first (best) objective, not all-reference,
// and with an H vector different from the previously accepted one.
// Solutions that differ in H but assemble to the same diplotype are
// deduplicated later by the Diplotype Assembler.
func (d *Driver) enumerate(model *Model, solutions []*Solution) []*Solution {
	maxOpt := solutions[0].Objective
	accepted := []*Solution{solutions[0]}
	prev := solutions[0]

	for _, s := range solutions[1:] {
		if maxOpt-s.Objective > d.OptimalDecay {
			break
		}
		if s.L == 0 {
			continue
		}
		if sameSolution(prev, s) {
			continue
		}
		accepted = append(accepted, s)
		prev = s
	}

	return accepted
}

func sameSolution(a, b *Solution) bool {
	if len(a.H) != len(b.H) {
		return false
	}
	for i := range a.H {
		if a.H[i] != b.H[i] {
			return false
		}
	}
	return true
}

// RunWithModel solves model and, if the first solve is infeasible and
// phased was requested, rebuilds the model without the phase pre-filter
// and retries once (spec.md §4.4), returning the Model the accepted
// solutions were computed against (needed for SelectedHaplotypes/
// UsedVariants).
func RunWithModel(d *Driver, result *match.Result, maxHaps int, phased bool) (*Model, []*Solution) {
	model := Build(result, maxHaps, phased)
	solutions := model.solveAll()

	if len(solutions) == 0 && phased {
		if d.Logger != nil {
			d.Logger.Warnf("ilp: infeasible with phase pre-filter for %d candidate haplotypes, retrying unphased", len(result.Haplotypes))
		}
		model = Build(result, maxHaps, false)
		solutions = model.solveAll()
	}

	if len(solutions) == 0 {
		if d.Logger != nil {
			d.Logger.Warnf("ilp: no feasible solution, returning empty result")
		}
		return model, nil
	}

	return model, d.enumerate(model, solutions)
}
