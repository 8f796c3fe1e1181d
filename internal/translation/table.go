package translation

// Table is the typed, row-oriented translation table for one gene, with
// columnar indices for HaplotypeName and VarKey (spec.md §9 "Tabular data
// structures": named-field access replaces dataframe column-position
// indexing).
type Table struct {
	Rows []*Row

	// Version is the tag from the file's "#version=<tag>" header line.
	Version string

	// Gene / Chromosome / ReferenceSequenceTag are shared by every row
	// (spec.md §3 invariant).
	Gene                 string
	Chromosome           string
	ReferenceSequenceTag string

	// ReferenceName is the haplotype name carrying ReferenceTag, or
	// DefaultReferenceName if no row carries it.
	ReferenceName string

	byHaplotype map[string][]*Row
	byVarKey    map[string][]*Row
}

// Index builds (or rebuilds) the columnar indices over Rows. Callers must
// call Index after mutating Rows directly; NewTable and Clone call it for
// you.
func (t *Table) Index() {
	t.byHaplotype = make(map[string][]*Row, len(t.Rows))
	t.byVarKey = make(map[string][]*Row, len(t.Rows))
	for _, r := range t.Rows {
		t.byHaplotype[r.HaplotypeName] = append(t.byHaplotype[r.HaplotypeName], r)
		t.byVarKey[r.VarKey()] = append(t.byVarKey[r.VarKey()], r)
	}
}

// Haplotypes returns the distinct haplotype names present, in first-seen
// order.
func (t *Table) Haplotypes() []string {
	seen := make(map[string]bool, len(t.byHaplotype))
	names := make([]string, 0, len(t.byHaplotype))
	for _, r := range t.Rows {
		if !seen[r.HaplotypeName] {
			seen[r.HaplotypeName] = true
			names = append(names, r.HaplotypeName)
		}
	}
	return names
}

// RowsForHaplotype returns every row defining the given haplotype.
func (t *Table) RowsForHaplotype(name string) []*Row {
	return t.byHaplotype[name]
}

// MinMaxStart returns the smallest and largest VariantStart across all
// rows that carry a position (CNV rows without a start are ignored).
func (t *Table) MinMaxStart() (min, max int64, ok bool) {
	first := true
	for _, r := range t.Rows {
		if r.VariantStart == nil {
			continue
		}
		v := *r.VariantStart
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, !first
}

// Clone returns a deep-enough copy suitable for a Matcher to mutate: the
// Row slice is copied (each *Row still points at the same, read-only
// definition data; matching never rewrites a Row's definition fields, only
// appends derived MatchedRows elsewhere).
func (t *Table) Clone() *Table {
	clone := &Table{
		Rows:                 append([]*Row(nil), t.Rows...),
		Version:              t.Version,
		Gene:                 t.Gene,
		Chromosome:           t.Chromosome,
		ReferenceSequenceTag: t.ReferenceSequenceTag,
		ReferenceName:        t.ReferenceName,
	}
	clone.Index()
	return clone
}

// NewTable builds a Table from rows sharing the given gene/chromosome/tag
// metadata, building its indices immediately.
func NewTable(rows []*Row, version, gene, chromosome, refTag, refName string) *Table {
	t := &Table{
		Rows:                 rows,
		Version:              version,
		Gene:                 gene,
		Chromosome:           chromosome,
		ReferenceSequenceTag: refTag,
		ReferenceName:        refName,
	}
	t.Index()
	return t
}
