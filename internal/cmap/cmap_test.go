package cmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBFChar(t *testing.T) {
	data := []byte(`
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0041> <0061>
<0042> <0062>
endbfchar
`)
	c, err := Parse("test", data)
	require.NoError(t, err)

	got, ok := c.ToUnicode(0x0041)
	require.True(t, ok)
	assert.Equal(t, []rune{'a'}, got)

	got, ok = c.ToUnicode(0x0042)
	require.True(t, ok)
	assert.Equal(t, []rune{'b'}, got)

	_, ok = c.ToUnicode(0x0043)
	assert.False(t, ok)
}

func TestParseBFRange(t *testing.T) {
	data := []byte(`
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0020> <007E> <0020>
endbfrange
`)
	c, err := Parse("test", data)
	require.NoError(t, err)

	got, ok := c.ToUnicode(0x0041)
	require.True(t, ok)
	assert.Equal(t, []rune{'A'}, got)

	got, ok = c.ToUnicode(0x0020)
	require.True(t, ok)
	assert.Equal(t, []rune{' '}, got)
}

func TestParseBFCharLigature(t *testing.T) {
	// A bfchar destination may be more than one code point (e.g. a font
	// that maps a single ligature glyph code to its decomposed spelling).
	data := []byte(`
1 beginbfchar
<01> <00660069>
endbfchar
`)
	c, err := Parse("test", data)
	require.NoError(t, err)
	got, ok := c.ToUnicode(0x01)
	require.True(t, ok)
	assert.Equal(t, []rune{'f', 'i'}, got)
}

func TestCIDRange(t *testing.T) {
	data := []byte(`
1 begincidrange
<0000> <00FF> 0
endcidrange
`)
	c, err := Parse("test", data)
	require.NoError(t, err)
	cid, ok := c.CIDFor(0x10)
	require.True(t, ok)
	assert.Equal(t, uint32(0x10), cid)
}

func TestCodespaceVariableWidth(t *testing.T) {
	data := []byte(`
2 begincodespacerange
<00> <80>
<8100> <FEFF>
endcodespacerange
`)
	c, err := Parse("test", data)
	require.NoError(t, err)

	runs := c.DecodeCodes([]byte{0x41, 0x81, 0x00, 0x42})
	require.Len(t, runs, 3)
	assert.Equal(t, CodeRun{Code: 0x41, Bytes: 1}, runs[0])
	assert.Equal(t, CodeRun{Code: 0x8100, Bytes: 2}, runs[1])
	assert.Equal(t, CodeRun{Code: 0x42, Bytes: 1}, runs[2])
}

func TestPredefinedIdentityH(t *testing.T) {
	c := Predefined("Identity-H")
	require.NotNil(t, c)
	runs := c.DecodeCodes([]byte{0x00, 0x41, 0x00, 0x42})
	require.Len(t, runs, 2)
	assert.Equal(t, uint32(0x0041), runs[0].Code)
}

func TestPredefinedUniGBUCS2H(t *testing.T) {
	c := Predefined("UniGB-UCS2-H")
	require.NotNil(t, c)
	runs := c.DecodeCodes([]byte{0x4F, 0x60, 0x59, 0x7D})
	require.Len(t, runs, 2)
	r1, ok := c.ToUnicode(runs[0].Code)
	require.True(t, ok)
	r2, ok := c.ToUnicode(runs[1].Code)
	require.True(t, ok)
	assert.Equal(t, "你好", string(r1)+string(r2))
}

func TestSortedCodesHelper(t *testing.T) {
	c := New("x")
	c.addBFChar(5, []rune{'a'})
	c.addBFChar(1, []rune{'b'})
	assert.Equal(t, []uint32{1, 5}, c.sortedCodes())
}
