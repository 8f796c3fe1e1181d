package variantsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeVCF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVCFSource_GetRange_Substitution(t *testing.T) {
	vcfContent := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"chr22\t42128945\trs3892097\tC\tT\t100\tPASS\t.\tGT:PS\t0|1:50\n"
	path := writeVCF(t, vcfContent)

	src := NewVCFSource(path)
	rows, err := src.GetRange("22", 42128000, 42129000)
	require.NoError(t, err)

	obs, ok := rows["c22_42128945_SID"]
	require.True(t, ok)
	gt := obs["S1"]
	require.NotNil(t, gt)
	require.ElementsMatch(t, []string{"C", "T"}, gt.Alleles)
	require.True(t, gt.Phased)
	require.Equal(t, 50, gt.PhaseSet)
}

func TestVCFSource_GetRange_CNVMarker_Homozygous(t *testing.T) {
	vcfContent := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"22\t42130000\t.\tN\t<DEL>\t.\tPASS\tSVTYPE=DEL\tGT\t1/1\n"
	path := writeVCF(t, vcfContent)

	src := NewVCFSource(path)
	rows, err := src.GetRange("chr22", 42000000, 42200000)
	require.NoError(t, err)

	obs, ok := rows["c22_42130000_CNV"]
	require.True(t, ok)
	require.Equal(t, []string{"<DEL>", "<DEL>"}, obs["S1"].Alleles)
}

func TestVCFSource_GetRange_CNVMarker_Heterozygous(t *testing.T) {
	vcfContent := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"22\t42130000\t.\tN\t<DEL>\t.\tPASS\tSVTYPE=DEL\tGT\t0/1\n"
	path := writeVCF(t, vcfContent)

	src := NewVCFSource(path)
	rows, err := src.GetRange("chr22", 42000000, 42200000)
	require.NoError(t, err)

	obs, ok := rows["c22_42130000_CNV"]
	require.True(t, ok)
	require.Equal(t, []string{"N", "<DEL>"}, obs["S1"].Alleles)
}

func TestVCFSource_GetRange_MissingGenotypeSkipped(t *testing.T) {
	vcfContent := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"22\t100\t.\tC\tT\t.\tPASS\t.\tGT\t./.\n"
	path := writeVCF(t, vcfContent)

	src := NewVCFSource(path)
	rows, err := src.GetRange("22", 1, 200)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestVCFSource_GetRange_OutsideWindowExcluded(t *testing.T) {
	vcfContent := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"22\t500\t.\tC\tT\t.\tPASS\t.\tGT\t0/1\n"
	path := writeVCF(t, vcfContent)

	src := NewVCFSource(path)
	rows, err := src.GetRange("22", 1, 100)
	require.NoError(t, err)
	require.Empty(t, rows)
}
