package contentstream

import (
	"testing"

	"github.com/corpusreader/pdftext/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectOps(t *testing.T, src string) []Operation {
	t.Helper()
	tok := newTokenizer([]byte(src))
	var ops []Operation
	for {
		op, ok, err := tok.Next()
		require.NoError(t, err)
		if !ok {
			return ops
		}
		ops = append(ops, op)
	}
}

func TestTokenizerSimpleOperators(t *testing.T) {
	ops := collectOps(t, "q 1 0 0 1 100 700 cm Q")
	require.Len(t, ops, 3)
	assert.Equal(t, "q", ops[0].Operator)
	assert.Equal(t, "cm", ops[1].Operator)
	require.Len(t, ops[1].Operands, 6)
	assert.Equal(t, core.Integer(100), ops[1].Operands[4])
	assert.Equal(t, "Q", ops[2].Operator)
}

func TestTokenizerTextShowing(t *testing.T) {
	ops := collectOps(t, "BT /F1 12 Tf (Hello) Tj ET")
	require.Len(t, ops, 4)
	assert.Equal(t, "Tf", ops[1].Operator)
	assert.Equal(t, core.Name("F1"), ops[1].Operands[0])
	assert.Equal(t, "Tj", ops[2].Operator)
	b, ok := core.GetStringBytes(ops[2].Operands[0])
	require.True(t, ok)
	assert.Equal(t, "Hello", string(b))
}

func TestTokenizerTJArray(t *testing.T) {
	ops := collectOps(t, "[(A)-250(B)]TJ")
	require.Len(t, ops, 1)
	arr, ok := core.GetArray(ops[0].Operands[0])
	require.True(t, ok)
	require.Equal(t, 3, arr.Len())
	n, ok := core.GetNumberAsFloat(arr.Get(1))
	require.True(t, ok)
	assert.Equal(t, -250.0, n)
}

func TestTokenizerBDCWithInlineDict(t *testing.T) {
	ops := collectOps(t, "/Span << /MCID 3 >> BDC EMC")
	require.Len(t, ops, 2)
	assert.Equal(t, "BDC", ops[0].Operator)
	require.Len(t, ops[0].Operands, 2)
	assert.Equal(t, core.Name("Span"), ops[0].Operands[0])
	dict, ok := core.GetDict(ops[0].Operands[1])
	require.True(t, ok)
	mcid, ok := core.GetInt(dict.Get("MCID"))
	require.True(t, ok)
	assert.EqualValues(t, 3, mcid)
}

func TestTokenizerSkipsInlineImage(t *testing.T) {
	ops := collectOps(t, "q BI /W 1 /H 1 ID \xff\xfe\x00EI EI Q")
	require.Len(t, ops, 2)
	assert.Equal(t, "q", ops[0].Operator)
	assert.Equal(t, "Q", ops[1].Operator)
}
