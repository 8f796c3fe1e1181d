package variantsource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/starcall/internal/vcf"
)

// NullAllele marks a no-call allele in an ObservedGenotype pair.
const NullAllele = "-"

// VCFSource implements VariantSource over a VCF (or VCF.gz) file via
// internal/vcf's Parser. Each GetRange call re-scans the file from the
// start; the parser has no index, and the spec only requires sequential
// per-thread range queries (spec.md §5).
type VCFSource struct {
	path string
}

// NewVCFSource builds a VCFSource reading from path ("-" for stdin).
func NewVCFSource(path string) *VCFSource {
	return &VCFSource{path: path}
}

// GetRange implements VariantSource.
func (s *VCFSource) GetRange(chrom string, min, max int64) (map[string]map[string]*ObservedGenotype, error) {
	parser, err := vcf.NewParser(s.path)
	if err != nil {
		return nil, fmt.Errorf("open variant source: %w", err)
	}
	defer parser.Close()

	wantChrom := normalizeChrom(chrom)
	result := make(map[string]map[string]*ObservedGenotype)

	for {
		v, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("read variant at line %d: %w", parser.LineNumber(), err)
		}
		if v == nil {
			break
		}
		if normalizeChrom(v.Chrom) != wantChrom {
			continue
		}
		if v.Pos < min || v.Pos > max {
			continue
		}
		if v.Samples == nil {
			continue
		}

		// GT indices refer to the record's full ALT list, so every split
		// row resolves them against that list.
		alts := strings.Split(v.Alt, ",")
		for _, variant := range vcf.SplitMultiAllelic(v) {
			variantID, perSample := observeVariant(wantChrom, variant, alts)
			if len(perSample) == 0 {
				continue
			}
			existing := result[variantID]
			if existing == nil {
				result[variantID] = perSample
				continue
			}
			for sample, gt := range perSample {
				existing[sample] = gt
			}
		}
	}

	return result, nil
}

// isCNVVariant reports whether v carries a structural-variant marker,
// either via a symbolic ALT or an SVTYPE INFO tag.
func isCNVVariant(v *vcf.Variant) bool {
	if strings.HasPrefix(v.Alt, "<") && strings.HasSuffix(v.Alt, ">") {
		return true
	}
	_, ok := v.Info["SVTYPE"]
	return ok
}

func observeVariant(chrom string, v *vcf.Variant, alts []string) (string, map[string]*ObservedGenotype) {
	suffix := "SID"
	isCNV := isCNVVariant(v)
	if isCNV {
		suffix = "CNV"
	}
	variantID := fmt.Sprintf("c%s_%d_%s", chrom, v.Pos, suffix)

	perSample := make(map[string]*ObservedGenotype, len(v.Samples))
	for sample, gt := range v.Samples {
		if gt.IsMissing() {
			continue
		}

		og := &ObservedGenotype{
			Phased:   gt.Phased,
			PhaseSet: -1,
			Ref:      v.Ref,
		}
		if ps, err := strconv.Atoi(gt.PhaseSet); err == nil {
			og.PhaseSet = ps
		}

		og.Alleles = alleleSeqs(gt, v.Ref, alts, v.Alt)

		perSample[sample] = og
	}

	return variantID, perSample
}

// alleleSeqs resolves every GT allele index to its nucleotide (or symbolic
// CNV) sequence, the same way for SID and CNV records: GT dosage decides
// how many copies of ALT/REF the sample carries, so a homozygous CNV call
// (GT 1/1) produces a 2-element pair just like a homozygous SNV does
// (hiMoon's vcf.py _get_alleles uses the GT-derived tuple in the normal
// case). Only when a sample carries no GT-derived alleles at all does this
// fall back to a single bare ALT token.
func alleleSeqs(gt *vcf.Genotype, ref string, alts []string, fallbackAlt string) []string {
	if len(gt.Alleles) == 0 {
		return []string{fallbackAlt}
	}
	alleles := make([]string, 0, len(gt.Alleles))
	for i := range gt.Alleles {
		seq := gt.AlleleSeq(i, ref, alts)
		if seq == "" {
			seq = NullAllele
		}
		alleles = append(alleles, seq)
	}
	return alleles
}

// normalizeChrom strips an optional "chr" prefix so callers may pass either
// "chr12" or "12" (spec.md §6.2).
func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		return chrom[3:]
	}
	return chrom
}
