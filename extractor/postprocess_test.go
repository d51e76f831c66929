package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceLigatures(t *testing.T) {
	assert.Equal(t, "difficult", replaceLigatures("diﬃcult"))
	assert.Equal(t, "stuff", replaceLigatures("ﬆuff"))
	assert.Equal(t, "plain", replaceLigatures("plain"))
}

func TestExpandLigaturesSkipsActualText(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{{Words: []Word{
			{Text: "oﬃce", fromActualText: false},
			{Text: "oﬃce", fromActualText: true},
		}}},
	}}
	expandLigatures(blocks)
	assert.Equal(t, "office", blocks[0].Lines[0].Words[0].Text)
	assert.Equal(t, "oﬃce", blocks[0].Lines[0].Words[1].Text)
}

func TestReconstructHyphenationMergesSoftWrap(t *testing.T) {
	lines := []Line{
		{Words: []Word{{Text: "exam-"}}},
		{Words: []Word{{Text: "ple"}, {Text: "text"}}},
	}
	out := reconstructHyphenation(lines)
	require.Len(t, out, 2)
	assert.Equal(t, "example", out[0].Words[0].Text)
	assert.Equal(t, "text", out[1].Words[0].Text)
}

func TestReconstructHyphenationKeepsCapitalizedCompound(t *testing.T) {
	lines := []Line{
		{Words: []Word{{Text: "Anglo-"}}},
		{Words: []Word{{Text: "saxon"}}},
	}
	out := reconstructHyphenation(lines)
	require.Len(t, out, 2)
	assert.Equal(t, "Anglo-", out[0].Words[0].Text)
}

func TestCheckReplacementCharShareWarnsAboveThreshold(t *testing.T) {
	var got string
	warn := func(format string, args ...interface{}) { got = format }
	checkReplacementCharShare("���ab", warn)
	assert.Contains(t, got, "U+FFFD")
}

func TestCheckReplacementCharShareSilentBelowThreshold(t *testing.T) {
	var got string
	warn := func(format string, args ...interface{}) { got = format }
	checkReplacementCharShare("hello world �", warn)
	assert.Empty(t, got)
}
