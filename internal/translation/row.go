// Package translation parses per-gene translation tables: the catalogue
// mapping each named haplotype (star-allele) to its defining variants
// (spec.md §3, §6.1).
package translation

import (
	"fmt"
	"strings"
)

// VarType enumerates the kinds of defining variant a row can carry.
type VarType string

const (
	VarTypeSubstitution VarType = "substitution"
	VarTypeInsertion    VarType = "insertion"
	VarTypeDeletion     VarType = "deletion"
	VarTypeCNV          VarType = "CNV"
)

// ReferenceTag marks the row (or haplotype) that represents the gene's
// reference allele in the source translation table.
const ReferenceTag = "REFERENCE"

// DefaultReferenceName is used when no row in a gene's table carries
// ReferenceTag.
const DefaultReferenceName = "REF"

// Row is one defining variant of one named haplotype (spec.md §3).
type Row struct {
	HaplotypeName        string
	Gene                 string
	ReferenceSequenceTag string
	RSID                 string

	// VariantStart / VariantStop are 1-based positions; nil when absent
	// ("." in the source file).
	VariantStart *int64
	VariantStop  *int64

	RefAllele string
	AltAllele string
	VarType   VarType

	// Chromosome is resolved once at load time from the accession via the
	// config's chromosome-accession map, and is stamped onto every row so
	// downstream code never has to re-resolve it.
	Chromosome string
}

// CanonicalizeHaplotypeName replaces the literal "*" with "(star)" so
// downstream string handling (map keys, CNV cross-join names) never has to
// special-case the star character (spec.md §3).
func CanonicalizeHaplotypeName(name string) string {
	return strings.ReplaceAll(name, "*", "(star)")
}

// VariantID is the position-only identifier shared by every alt allele at a
// position: "c<chrom>_<start>_<SID|CNV>".
func (r *Row) VariantID() string {
	suffix := "SID"
	if r.VarType == VarTypeCNV {
		suffix = "CNV"
	}
	start := int64(0)
	if r.VariantStart != nil {
		start = *r.VariantStart
	}
	return fmt.Sprintf("c%s_%d_%s", r.Chromosome, start, suffix)
}

// VarKey additionally includes ref/alt, distinguishing multiple alt alleles
// defined at the same position.
func (r *Row) VarKey() string {
	return fmt.Sprintf("%s_%s_%s", r.VariantID(), r.RefAllele, r.AltAllele)
}

// IsSymbolicAllele reports whether alt is an angle-bracketed symbolic
// allele such as <CNV> or <DEL>.
func IsSymbolicAllele(alt string) bool {
	return strings.HasPrefix(alt, "<") && strings.HasSuffix(alt, ">")
}

// StripSymbolicAllele removes the angle brackets from a symbolic allele,
// e.g. "<CNV>" -> "CNV".
func StripSymbolicAllele(alt string) string {
	return strings.TrimSuffix(strings.TrimPrefix(alt, "<"), ">")
}

// MatchPosition is the position a definition row is actually matched
// against in the observed genotypes: substitutions match at VariantStart,
// insertions/deletions match one base upstream (VCF left-anchoring
// convention, spec.md §4.1 "Indel coordinate shift").
func (r *Row) MatchPosition() int64 {
	start := int64(0)
	if r.VariantStart != nil {
		start = *r.VariantStart
	}
	switch r.VarType {
	case VarTypeInsertion, VarTypeDeletion:
		return start - 1
	default:
		return start
	}
}

// MatchVariantID is the c<chrom>_<pos>_<SID|CNV> key used to look up the
// observed record for this row (accounting for the indel coordinate
// shift above).
func (r *Row) MatchVariantID() string {
	suffix := "SID"
	if r.VarType == VarTypeCNV {
		suffix = "CNV"
	}
	return fmt.Sprintf("c%s_%d_%s", r.Chromosome, r.MatchPosition(), suffix)
}
