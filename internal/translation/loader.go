package translation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/starcall/internal/config"
)

// column indices in a translation-table data row (spec.md §6.1):
// haplotype name, gene, rsID, reference-sequence accession, variant start,
// variant stop, reference allele, variant allele, type.
const (
	colHaplotype = 0
	colGene      = 1
	colRSID      = 2
	colAccession = 3
	colStart     = 4
	colStop      = 5
	colRef       = 6
	colAlt       = 7
	colType      = 8
	minColumns   = 9
)

// Loader reads a translation table file (and its optional .cnv companion)
// into a Table.
type Loader struct {
	cfg *config.Config
}

// NewLoader creates a Loader that resolves chromosome accessions using cfg.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load reads path (and its ".cnv" companion from cnvCompanionPath, if
// present) into a Table.
func (l *Loader) Load(path string) (*Table, error) {
	version, rows, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("load translation table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("load translation table %s: no rows after header", path)
	}

	cnvPath := cnvCompanionPath(path)
	if _, statErr := os.Stat(cnvPath); statErr == nil {
		_, cnvRows, err := l.readFile(cnvPath)
		if err != nil {
			return nil, fmt.Errorf("load CNV companion %s: %w", cnvPath, err)
		}
		resolveChromosome(cnvRows, l.cfg)
		rows = crossJoinCNV(rows, cnvRows)
	}

	resolveChromosome(rows, l.cfg)

	gene := rows[len(rows)-1].Gene
	chrom := rows[0].Chromosome
	refTag := rows[0].ReferenceSequenceTag
	refName := findReferenceName(rows)

	return NewTable(rows, version, gene, chrom, refTag, refName), nil
}

// resolveChromosome finds the first row whose reference-sequence tag is a
// real accession (i.e. not the literal "REFERENCE") and stamps every row
// in the table with the resolved chromosome, matching hiMoon/gene.py's
// table-wide accession lookup. An accession absent from the configured
// map resolves to "NA" (spec.md §7 "Unknown chromosome accession").
func resolveChromosome(rows []*Row, cfg *config.Config) {
	chrom := "NA"
	for _, r := range rows {
		if r.ReferenceSequenceTag == ReferenceTag {
			continue
		}
		if c, ok := cfg.ChromosomeAccessions[strings.ToUpper(r.ReferenceSequenceTag)]; ok {
			chrom = c
			break
		}
	}
	for _, r := range rows {
		r.Chromosome = chrom
	}
}

// cnvCompanionPath derives the ".cnv" sibling of a translation table path,
// e.g. "CYP2D6.tsv" -> "CYP2D6.cnv".
func cnvCompanionPath(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[:idx] + ".cnv"
	}
	return path + ".cnv"
}

// readFile parses the "#version=<tag>" header, skips the following blank
// or comment line, and parses every remaining row. Rows with an empty
// reference-sequence tag are dropped on load (spec.md §3 invariant).
func (l *Loader) readFile(path string) (version string, rows []*Row, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 {
			version = strings.Trim(strings.TrimPrefix(line, "#version="), "# \t")
			continue
		}
		if lineNum == 2 {
			// Blank or comment line, always skipped.
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := l.parseRow(line)
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if row == nil {
			continue // empty reference_sequence_tag: header/placeholder row
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("scan: %w", err)
	}

	return version, rows, nil
}

func (l *Loader) parseRow(line string) (*Row, error) {
	// Tab-separated lines keep empty columns (e.g. an empty accession);
	// other lines are split on runs of whitespace.
	fields := strings.Fields(line)
	if strings.Contains(line, "\t") {
		fields = strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	}
	if len(fields) < minColumns {
		return nil, fmt.Errorf("expected at least %d columns, found %d", minColumns, len(fields))
	}

	// Rows with an empty reference-sequence tag are headers/placeholders
	// and are dropped on load (spec.md §3 invariant). Chromosome
	// resolution happens once per file in resolveChromosome, since a
	// REFERENCE-tagged row carries no accession of its own.
	accession := strings.TrimSpace(fields[colAccession])
	if accession == "" {
		return nil, nil
	}

	row := &Row{
		HaplotypeName:        CanonicalizeHaplotypeName(fields[colHaplotype]),
		Gene:                 fields[colGene],
		ReferenceSequenceTag: accession,
		RSID:                 fields[colRSID],
		RefAllele:            fields[colRef],
		AltAllele:            fields[colAlt],
		VarType:              VarType(fields[colType]),
	}

	start, err := parseOptionalInt(fields[colStart])
	if err != nil {
		return nil, fmt.Errorf("variant start: %w", err)
	}
	row.VariantStart = start

	stop, err := parseOptionalInt(fields[colStop])
	if err != nil {
		return nil, fmt.Errorf("variant stop: %w", err)
	}
	row.VariantStop = stop

	return row, nil
}

func parseOptionalInt(field string) (*int64, error) {
	if field == "." || field == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// findReferenceName returns the haplotype name of the row whose
// ReferenceSequenceTag equals ReferenceTag, or DefaultReferenceName if no
// such row exists (spec.md §3 invariant: exactly one haplotype per gene
// carries the REFERENCE tag; if absent, use the literal name "REF").
func findReferenceName(rows []*Row) string {
	for _, r := range rows {
		if r.ReferenceSequenceTag == ReferenceTag {
			return r.HaplotypeName
		}
	}
	return DefaultReferenceName
}

// crossJoinCNV cross-joins CNV rows against same-base SID haplotype names,
// producing combined "<base>.<sid_suffix>_<cnv_suffix>" haplotype rows
// (spec.md §3, §6.1). The SID rows are kept unmodified alongside the
// generated combinations so a sample can still match a pure-SID haplotype
// with no CNV marker.
func crossJoinCNV(sidRows, cnvRows []*Row) []*Row {
	if len(cnvRows) == 0 {
		return sidRows
	}

	sidByBase := make(map[string][]*Row)
	for _, r := range sidRows {
		base, _ := splitHaplotypeSuffix(r.HaplotypeName)
		sidByBase[base] = append(sidByBase[base], r)
	}

	combined := append([]*Row(nil), sidRows...)

	for _, cnvRow := range cnvRows {
		cnvBase, cnvSuffix := splitHaplotypeSuffix(cnvRow.HaplotypeName)
		sidGroup, ok := sidByBase[cnvBase]
		if !ok {
			// No matching SID base: keep the CNV-only haplotype as-is.
			combined = append(combined, cnvRow)
			continue
		}

		bySuffix := make(map[string][]*Row)
		for _, r := range sidGroup {
			_, suffix := splitHaplotypeSuffix(r.HaplotypeName)
			bySuffix[suffix] = append(bySuffix[suffix], r)
		}

		for sidSuffix, sidRowsForSuffix := range bySuffix {
			combinedName := fmt.Sprintf("%s.%s_%s", cnvBase, sidSuffix, cnvSuffix)
			for _, r := range sidRowsForSuffix {
				clone := *r
				clone.HaplotypeName = combinedName
				combined = append(combined, &clone)
			}
			cnvClone := *cnvRow
			cnvClone.HaplotypeName = combinedName
			combined = append(combined, &cnvClone)
		}
	}

	return combined
}

// splitHaplotypeSuffix splits "CYP2D6(star)4.001" into base
// "CYP2D6(star)4" and suffix "001", the convention used for allele-suffix
// sub-definitions that the CNV cross-join keys off of.
func splitHaplotypeSuffix(name string) (base, suffix string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}
