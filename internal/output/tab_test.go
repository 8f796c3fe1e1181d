package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/starcall/internal/diplotype"
	"github.com/inodb/starcall/internal/pgx"
)

func TestTabWriter_WriteCall(t *testing.T) {
	var buf bytes.Buffer
	tw, err := NewTabWriter(&buf)
	require.NoError(t, err)

	call := &pgx.CallResult{
		Sample: "S1",
		Gene:   "CYP2D6",
		Result: &diplotype.Result{
			Calls: []diplotype.Call{
				{Diplotype: diplotype.Diplotype{A: "CYP2D6(star)1", B: "CYP2D6(star)4"}, Variants: []string{"c22_100_SID_C_T"}, Refs: 1},
			},
			Confidence: 1,
		},
	}
	require.NoError(t, tw.WriteCall(call))
	require.NoError(t, tw.Flush())

	out := buf.String()
	require.Contains(t, out, "subject\tgene\tgenotype\tvariants\tconfidence\tpossible_novel\n")
	require.Contains(t, out, "S1\tCYP2D6\tCYP2D6(star)1/CYP2D6(star)4\tc22_100_SID_C_T\t1\tfalse\n")
}

func TestTabWriter_WriteCall_NA(t *testing.T) {
	var buf bytes.Buffer
	tw, err := NewTabWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, tw.WriteCall(&pgx.CallResult{Sample: "S1", Gene: "CYP2D6", NA: true}))
	require.NoError(t, tw.Flush())

	require.Contains(t, buf.String(), "S1\tCYP2D6\tNA\t\t\tfalse\n")
}
