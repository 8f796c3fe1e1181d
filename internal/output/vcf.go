package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/starcall/internal/pgx"
)

// VCFWriter renders one multi-sample VCF record per gene, whose ALT
// alleles are angle-bracketed star-allele tokens and whose per-sample
// FORMAT carries GT/VA/HC fields, adapted from hiMoon's
// write_variant_file (spec.md §6.4).
type VCFWriter struct {
	w       *bufio.Writer
	samples []string
}

// NewVCFWriter wraps w in a buffered writer, writes the VCF header, and
// fixes the sample column order for every subsequent gene record.
func NewVCFWriter(w io.Writer, samples []string) (*VCFWriter, error) {
	vw := &VCFWriter{w: bufio.NewWriter(w), samples: append([]string(nil), samples...)}

	lines := []string{
		"##fileformat=VCFv4.2",
		`##INFO=<ID=VARTYPE,Number=1,Type=String,Description="Record kind, always HAP for a haplotype call">`,
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype, indexing into this record's symbolic ALT list">`,
		`##FORMAT=<ID=VA,Number=.,Type=String,Description="Variant keys consumed by the called diplotype">`,
		`##FORMAT=<ID=HC,Number=1,Type=Float,Description="Haplotype call confidence, 1/|tie set|">`,
	}
	for _, l := range lines {
		if _, err := vw.w.WriteString(l + "\n"); err != nil {
			return nil, fmt.Errorf("write vcf header: %w", err)
		}
	}

	header := append([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}, vw.samples...)
	if _, err := vw.w.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return nil, fmt.Errorf("write vcf #CHROM line: %w", err)
	}

	return vw, nil
}

// WriteGene emits one record for gene at (chrom, pos), built from every
// sample's CallResult. Samples absent from calls (or reported NA) get a
// "./.:.:." no-call field.
func (vw *VCFWriter) WriteGene(geneName, chrom string, pos int64, referenceName string, calls map[string]*pgx.CallResult) error {
	alleles := alleleList(geneName, referenceName, calls)
	alleleIndex := make(map[string]int, len(alleles))
	for i, a := range alleles {
		alleleIndex[a] = i
	}

	ref := symbolicAllele(geneName, alleles[0])
	alt := "."
	if len(alleles) > 1 {
		altTokens := make([]string, len(alleles)-1)
		for i, a := range alleles[1:] {
			altTokens[i] = symbolicAllele(geneName, a)
		}
		alt = strings.Join(altTokens, ",")
	}

	row := []string{chrom, strconv.FormatInt(pos, 10), geneName + "_pgx", ref, alt, ".", ".", "VARTYPE=HAP", "GT:VA:HC"}

	for _, sample := range vw.samples {
		row = append(row, sampleField(calls[sample], referenceName, alleleIndex))
	}

	if _, err := vw.w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
		return fmt.Errorf("write vcf record for %s: %w", geneName, err)
	}
	return nil
}

// Flush flushes buffered output to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// alleleList returns [referenceName, alt1, alt2, ...] for every haplotype
// name appearing in any sample's accepted calls, reference first
// (hiMoon's vcf.py get_alleles).
func alleleList(geneName, referenceName string, calls map[string]*pgx.CallResult) []string {
	seen := map[string]bool{referenceName: true}
	alts := []string{}
	for _, call := range calls {
		if call == nil || call.NA || call.Result == nil {
			continue
		}
		for _, c := range call.Result.Calls {
			for _, name := range []string{c.Diplotype.A, c.Diplotype.B} {
				if !seen[name] {
					seen[name] = true
					alts = append(alts, name)
				}
			}
		}
	}
	sort.Strings(alts)
	return append([]string{referenceName}, alts...)
}

// sampleField builds one sample's "GT:VA:HC" column. A NA or missing call
// is rendered as a no-call.
func sampleField(call *pgx.CallResult, referenceName string, alleleIndex map[string]int) string {
	if call == nil || call.NA || call.Result == nil || len(call.Result.Calls) == 0 {
		return "./.:.:."
	}

	// Report the first accepted call; ties are reported in the flat
	// tabular form (spec.md §6.4), which carries every tie-set member.
	c := call.Result.Calls[0]
	a := alleleIndex[c.Diplotype.A]
	b := alleleIndex[c.Diplotype.B]
	gt := fmt.Sprintf("%d/%d", a, b)
	va := "."
	if len(c.Variants) > 0 {
		va = strings.Join(c.Variants, ",")
	}
	hc := strconv.FormatFloat(call.Result.Confidence, 'f', -1, 64)

	return fmt.Sprintf("%s:%s:%s", gt, va, hc)
}

// symbolicAllele strips the gene prefix from a haplotype name and renders
// it as an angle-bracketed VCF symbolic allele, e.g.
// "CYP2D6(star)4.001" -> "<*4.001>" (hiMoon's vcf.py allele token
// convention).
func symbolicAllele(geneName, haplotypeName string) string {
	short := strings.TrimPrefix(haplotypeName, geneName)
	short = strings.ReplaceAll(short, "(star)", "*")
	return "<" + short + ">"
}
