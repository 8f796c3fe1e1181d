// Package gene holds the per-gene Gene Context: the immutable translation
// table plus the genomic window used to query a variant source (spec.md
// §4.6). A Context is built once per gene and shared, read-only, across
// every sample it is matched against (spec.md §5).
package gene

import (
	"fmt"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/translation"
	"github.com/inodb/starcall/internal/variantsource"
)

// Context is the read-only, per-gene unit of work. Every field is set once
// at construction and never mutated afterward, so a *Context may be shared
// freely across goroutines calling FetchGenotypes concurrently for
// different samples.
type Context struct {
	Table *translation.Table

	Gene          string
	Chromosome    string
	ReferenceName string
	Version       string

	// WindowMin / WindowMax are the genomic query bounds: the table's
	// min/max defining-variant position, padded by the configured
	// upstream/downstream offsets. Both are 0 when no row carries a
	// position.
	WindowMin int64
	WindowMax int64
}

// New builds a Context from an already-loaded translation table and the
// configured window offsets.
func New(table *translation.Table, cfg *config.Config) *Context {
	minPos, maxPos, ok := table.MinMaxStart()
	if !ok {
		minPos, maxPos = 0, 0
	}

	windowMin := minPos - cfg.UpstreamOffset
	if windowMin < 0 {
		windowMin = 0
	}
	windowMax := maxPos + cfg.DownstreamOffset
	if !ok {
		windowMin, windowMax = 0, 0
	}

	return &Context{
		Table:         table,
		Gene:          table.Gene,
		Chromosome:    table.Chromosome,
		ReferenceName: table.ReferenceName,
		Version:       table.Version,
		WindowMin:     windowMin,
		WindowMax:     windowMax,
	}
}

// FetchGenotypes queries src for every observed genotype in the Context's
// window, keyed by variant id and then by sample name.
func (c *Context) FetchGenotypes(src variantsource.VariantSource) (map[string]map[string]*variantsource.ObservedGenotype, error) {
	genotypes, err := src.GetRange(c.Chromosome, c.WindowMin, c.WindowMax)
	if err != nil {
		return nil, fmt.Errorf("fetch genotypes for %s on chromosome %s: %w", c.Gene, c.Chromosome, err)
	}
	return genotypes, nil
}

// SampleIDs returns the distinct sample names observed anywhere within the
// fetched genotype map, useful for driving per-sample matching without a
// separate sample manifest.
func SampleIDs(genotypes map[string]map[string]*variantsource.ObservedGenotype) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, bySample := range genotypes {
		for sample := range bySample {
			if !seen[sample] {
				seen[sample] = true
				ids = append(ids, sample)
			}
		}
	}
	return ids
}
