package gene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/translation"
	"github.com/inodb/starcall/internal/variantsource"
)

func start(v int64) *int64 { return &v }

func TestNew_Window(t *testing.T) {
	rows := []*translation.Row{
		{HaplotypeName: "G(star)1", Gene: "G", ReferenceSequenceTag: translation.ReferenceTag, Chromosome: "22"},
		{HaplotypeName: "G(star)2", Gene: "G", ReferenceSequenceTag: "NC_1", VariantStart: start(1000), Chromosome: "22"},
		{HaplotypeName: "G(star)3", Gene: "G", ReferenceSequenceTag: "NC_1", VariantStart: start(2000), Chromosome: "22"},
	}
	tbl := translation.NewTable(rows, "1.0", "G", "22", "NC_1", "G(star)1")

	cfg := config.Default()
	cfg.UpstreamOffset = 100
	cfg.DownstreamOffset = 50

	ctx := New(tbl, cfg)
	require.Equal(t, int64(900), ctx.WindowMin)
	require.Equal(t, int64(2050), ctx.WindowMax)
	require.Equal(t, "22", ctx.Chromosome)
	require.Equal(t, "G(star)1", ctx.ReferenceName)
}

func TestNew_NoPositionsYieldsZeroWindow(t *testing.T) {
	rows := []*translation.Row{
		{HaplotypeName: "G(star)1", Gene: "G", ReferenceSequenceTag: translation.ReferenceTag, Chromosome: "22"},
	}
	tbl := translation.NewTable(rows, "1.0", "G", "22", "NC_1", "G(star)1")

	ctx := New(tbl, config.Default())
	require.Equal(t, int64(0), ctx.WindowMin)
	require.Equal(t, int64(0), ctx.WindowMax)
}

func TestSampleIDs(t *testing.T) {
	genotypes := map[string]map[string]*variantsource.ObservedGenotype{
		"c22_100_SID": {"S1": {}, "S2": {}},
		"c22_200_SID": {"S2": {}},
	}
	require.ElementsMatch(t, []string{"S1", "S2"}, SampleIDs(genotypes))
}
