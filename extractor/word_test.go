package extractor

import (
	"testing"

	"github.com/corpusreader/pdftext/contentstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyphAt(text string, x, y, advance, size float64) contentstream.GlyphRecord {
	return contentstream.GlyphRecord{
		Text:     text,
		X:        x,
		Y:        y,
		Advance:  advance,
		FontSize: size,
		Quad: contentstream.Quad{
			{x, y}, {x + advance, y}, {x + advance, y + size}, {x, y + size},
		},
	}
}

func TestSplitRowIntoWordsBreaksOnWideGap(t *testing.T) {
	row := []contentstream.GlyphRecord{
		glyphAt("H", 0, 700, 6, 12),
		glyphAt("i", 6, 700, 4, 12),
		glyphAt("t", 40, 700, 5, 12), // gap of 30 >> 0.25*12
		glyphAt("h", 45, 700, 6, 12),
		glyphAt("e", 51, 700, 6, 12),
	}
	words := splitRowIntoWords(row)
	require.Len(t, words, 2)
	assert.Equal(t, "Hi", words[0].Text)
	assert.Equal(t, "the", words[1].Text)
}

func TestSplitRowIntoWordsKeepsTightKerning(t *testing.T) {
	row := []contentstream.GlyphRecord{
		glyphAt("W", 0, 700, 10, 12),
		glyphAt("o", 10.2, 700, 6, 12),
		glyphAt("r", 16.3, 700, 4, 12),
		glyphAt("d", 20.4, 700, 6, 12),
	}
	words := splitRowIntoWords(row)
	require.Len(t, words, 1)
	assert.Equal(t, "Word", words[0].Text)
}

func TestClusterRowsGroupsByBaseline(t *testing.T) {
	glyphs := []contentstream.GlyphRecord{
		glyphAt("A", 0, 700, 6, 12),
		glyphAt("B", 6, 701, 6, 12),
		glyphAt("C", 0, 600, 6, 12),
	}
	rows := clusterRows(glyphs)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)
}

func TestBuildWordMajorityVote(t *testing.T) {
	g1 := glyphAt("a", 0, 0, 5, 10)
	g1.Bold = true
	g1.MCID = 3
	g2 := glyphAt("b", 5, 0, 5, 10)
	g2.Bold = true
	g2.MCID = 3
	g3 := glyphAt("c", 10, 0, 5, 10)
	g3.MCID = 7

	w := buildWord([]contentstream.GlyphRecord{g1, g2, g3})
	assert.Equal(t, "abc", w.Text)
	assert.True(t, w.Bold)
	assert.Equal(t, 3, w.MCID)
}
