package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/gene"
	"github.com/inodb/starcall/internal/normalize"
	"github.com/inodb/starcall/internal/translation"
	"github.com/inodb/starcall/internal/variantsource"
)

func start(v int64) *int64 { return &v }

func buildContext(rows []*translation.Row) *gene.Context {
	tbl := translation.NewTable(rows, "1.0", "CYP2D6", "22", "NC_1", "CYP2D6(star)1")
	return gene.New(tbl, config.Default())
}

func TestMatcher_NoVariantsInWindow(t *testing.T) {
	ctx := buildContext([]*translation.Row{
		{HaplotypeName: "CYP2D6(star)1", Gene: "CYP2D6", ReferenceSequenceTag: translation.ReferenceTag, Chromosome: "22"},
	})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	result := m.Match(ctx, "S1", map[string]map[string]*variantsource.ObservedGenotype{})
	require.True(t, result.NoVariants)
}

func TestMatcher_HomozygousAltMatchesBothHaplotypes(t *testing.T) {
	variantRow := &translation.Row{
		HaplotypeName: "CYP2D6(star)4", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		VariantStart: start(100), RefAllele: "C", AltAllele: "T",
		VarType: translation.VarTypeSubstitution, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{variantRow})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_100_SID": {
			"S1": {Alleles: []string{"T", "T"}, Ref: "C"},
		},
	}

	result := m.Match(ctx, "S1", genotypes)
	require.False(t, result.NoVariants)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 2, result.Rows[0].Match)
	require.Equal(t, StrandHomozyg, result.Rows[0].Strand)
	require.Contains(t, result.Haplotypes, "CYP2D6(star)4")
}

func TestMatcher_HeterozygousPhased(t *testing.T) {
	variantRow := &translation.Row{
		HaplotypeName: "CYP2D6(star)4", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		VariantStart: start(100), RefAllele: "C", AltAllele: "T",
		VarType: translation.VarTypeSubstitution, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{variantRow})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_100_SID": {
			"S1": {Alleles: []string{"C", "T"}, Ref: "C", Phased: true, PhaseSet: 7},
		},
	}

	result := m.Match(ctx, "S1", genotypes)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 1, result.Rows[0].Match)
	require.Equal(t, StrandRight, result.Rows[0].Strand)
	require.Equal(t, 7, result.Rows[0].PhaseSet)
}

func TestMatcher_HomozygousCNVMatchesTwo(t *testing.T) {
	cnvRow := &translation.Row{
		HaplotypeName: "CYP2D6(star)5", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		AltAllele: "<DEL>", VarType: translation.VarTypeCNV, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{cnvRow})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_0_CNV": {
			"S1": {Alleles: []string{"<DEL>", "<DEL>"}, Ref: "N"},
		},
	}

	result := m.Match(ctx, "S1", genotypes)
	require.False(t, result.NoVariants)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 2, result.Rows[0].Match)
	require.Equal(t, StrandHomozyg, result.Rows[0].Strand)
}

func TestMatcher_HeterozygousCNVMatchesOne(t *testing.T) {
	cnvRow := &translation.Row{
		HaplotypeName: "CYP2D6(star)5", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		AltAllele: "<DEL>", VarType: translation.VarTypeCNV, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{cnvRow})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_0_CNV": {
			"S1": {Alleles: []string{"N", "<DEL>"}, Ref: "N"},
		},
	}

	result := m.Match(ctx, "S1", genotypes)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 1, result.Rows[0].Match)
}

func TestMatcher_ZeroMatchDropsWholeHaplotype(t *testing.T) {
	row1 := &translation.Row{
		HaplotypeName: "CYP2D6(star)10", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		VariantStart: start(100), RefAllele: "C", AltAllele: "T",
		VarType: translation.VarTypeSubstitution, Chromosome: "22",
	}
	row2 := &translation.Row{
		HaplotypeName: "CYP2D6(star)10", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		VariantStart: start(200), RefAllele: "G", AltAllele: "A",
		VarType: translation.VarTypeSubstitution, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{row1, row2})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_100_SID": {"S1": {Alleles: []string{"T", "T"}, Ref: "C"}},
		"c22_200_SID": {"S1": {Alleles: []string{"G", "G"}, Ref: "G"}}, // no A observed: match 0
	}

	result := m.Match(ctx, "S1", genotypes)
	require.Empty(t, result.Haplotypes)
	require.Empty(t, result.Rows)
}

func TestMatcher_MissingRowDropped(t *testing.T) {
	row := &translation.Row{
		HaplotypeName: "CYP2D6(star)4", Gene: "CYP2D6", ReferenceSequenceTag: "NC_1",
		VariantStart: start(100), RefAllele: "C", AltAllele: "T",
		VarType: translation.VarTypeSubstitution, Chromosome: "22",
	}
	otherRow := &translation.Row{
		HaplotypeName: "CYP2D6(star)1", Gene: "CYP2D6", ReferenceSequenceTag: translation.ReferenceTag, Chromosome: "22",
	}
	ctx := buildContext([]*translation.Row{row, otherRow})
	m := New(normalize.New(config.DefaultIUPACCodes()), 99)

	// Only an unrelated position is observed, so row's position has no
	// genotype entry at all and must resolve to MISSING and be dropped.
	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_999_SID": {"S1": {Alleles: []string{"A", "A"}, Ref: "A"}},
	}

	result := m.Match(ctx, "S1", genotypes)
	require.False(t, result.NoVariants)
	for _, mr := range result.Rows {
		require.NotEqual(t, row.VarKey(), mr.VarKey)
	}
}
