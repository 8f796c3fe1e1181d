// Package output renders diplotype calls in the two encodings named by
// spec.md §6.4: a flat tabular form and a VCF-shaped form.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/starcall/internal/pgx"
)

// TabWriter renders one tab-separated row per (sample, gene, diplotype)
// call: subject, gene, genotype, variants, confidence (spec.md §6.4).
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter wraps w in a buffered writer and emits the header row.
func NewTabWriter(w io.Writer) (*TabWriter, error) {
	tw := &TabWriter{w: bufio.NewWriter(w)}
	if _, err := tw.w.WriteString("subject\tgene\tgenotype\tvariants\tconfidence\tpossible_novel\n"); err != nil {
		return nil, fmt.Errorf("write tab header: %w", err)
	}
	return tw, nil
}

// WriteCall appends every row of one (sample, gene) CallResult. An NA
// result (no observed variants in the window) is rendered with a literal
// "NA" genotype and empty variant list (spec.md §4.2 "Failure mode").
func (tw *TabWriter) WriteCall(call *pgx.CallResult) error {
	if call.NA {
		_, err := fmt.Fprintf(tw.w, "%s\t%s\tNA\t\t\tfalse\n", call.Sample, call.Gene)
		return err
	}

	for _, c := range call.Result.Calls {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%s\t%s\t%t\n",
			call.Sample,
			call.Gene,
			c.Diplotype.String(),
			strings.Join(c.Variants, ","),
			strconv.FormatFloat(call.Result.Confidence, 'f', -1, 64),
			call.Result.PossibleNovel,
		)
		if _, err := tw.w.WriteString(line); err != nil {
			return fmt.Errorf("write tab row: %w", err)
		}
	}
	return nil
}

// Flush flushes buffered output to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
