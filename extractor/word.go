package extractor

import (
	"sort"

	"github.com/corpusreader/pdftext/contentstream"
	"github.com/corpusreader/pdftext/model"
)

// Word is a run of glyphs the character-clustering stage judged to belong
// to the same word: contiguous in its row, with no gap wide enough to
// count as a word break.
type Word struct {
	Text     string
	BBox     model.Rectangle
	FontSize float64
	Bold     bool
	Italic   bool

	// MCID is the marked-content id carried by most of the word's glyphs
	// (mixed-MCID words are rare -- an OCR/producer quirk), or -1 if they
	// carry none. Which id wins a tie is not defined.
	MCID int

	fromActualText bool
	glyphs         []contentstream.GlyphRecord
}

// wordBreakFraction is the fraction of the current font size a horizontal
// gap must exceed before two glyphs are judged to belong to different
// words.
const wordBreakFraction = 0.25

// rowEpsilonFactor scales the median glyph height of the row being built to decide
// how close two glyphs' baselines must be to belong to the same text row.
const rowEpsilonFactor = 1.5

// clusterWords runs Stage A (character clustering) over one page's
// upright-space glyph records: geometric row grouping followed by a
// word-break sweep within each row, in place of a spatial index (see
// DESIGN.md); at single-page glyph counts the O(n log n) sort-and-sweep
// below is no real loss.
func clusterWords(glyphs []contentstream.GlyphRecord) []Word {
	if len(glyphs) == 0 {
		return nil
	}
	rows := clusterRows(glyphs)
	var words []Word
	for _, row := range rows {
		words = append(words, splitRowIntoWords(row)...)
	}
	return words
}

// clusterRows groups glyphs whose baselines fall within rowEpsilonFactor
// times the row's median glyph height of each other, approximating the
// density-based row cluster: baseline_y is the cluster's geometric axis,
// height is the window.
func clusterRows(glyphs []contentstream.GlyphRecord) [][]contentstream.GlyphRecord {
	sorted := append([]contentstream.GlyphRecord(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y // top of page first (y-up)
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]contentstream.GlyphRecord
	var current []contentstream.GlyphRecord
	var currentY float64
	for _, g := range sorted {
		if len(current) == 0 {
			current = append(current, g)
			currentY = g.Y
			continue
		}
		epsilon := rowEpsilonFactor * medianHeight(current)
		if epsilon <= 0 {
			epsilon = rowEpsilonFactor * g.FontSize
		}
		if currentY-g.Y <= epsilon {
			current = append(current, g)
			continue
		}
		rows = append(rows, current)
		current = []contentstream.GlyphRecord{g}
		currentY = g.Y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func medianHeight(glyphs []contentstream.GlyphRecord) float64 {
	heights := make([]float64, len(glyphs))
	for i, g := range glyphs {
		heights[i] = g.FontSize
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

// splitRowIntoWords sorts one row's glyphs left to right and breaks it
// into words wherever the gap to the next glyph exceeds
// wordBreakFraction * the current font size, i.e. the threshold scales
// with font size rather than being a fixed page-space distance.
func splitRowIntoWords(row []contentstream.GlyphRecord) []Word {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var words []Word
	var current []contentstream.GlyphRecord
	prevEndX := 0.0
	for _, g := range row {
		if len(current) > 0 {
			gap := g.X - prevEndX
			if gap > wordBreakFraction*g.FontSize {
				words = append(words, buildWord(current))
				current = nil
			}
		}
		current = append(current, g)
		prevEndX = g.X + g.Advance
	}
	if len(current) > 0 {
		words = append(words, buildWord(current))
	}
	return words
}

func buildWord(glyphs []contentstream.GlyphRecord) Word {
	w := Word{MCID: -1, glyphs: glyphs}
	mcidVotes := map[int]int{}
	boldVotes, italicVotes := 0, 0
	var bbox model.Rectangle
	first := true
	for _, g := range glyphs {
		w.Text += g.Text
		if g.FromActualText {
			w.fromActualText = true
		}
		if g.Bold {
			boldVotes++
		}
		if g.Italic {
			italicVotes++
		}
		if g.MCID >= 0 {
			mcidVotes[g.MCID]++
		}
		w.FontSize = g.FontSize
		gb := glyphBBox(g)
		if first {
			bbox = gb
			first = false
			continue
		}
		bbox = unionRect(bbox, gb)
	}
	w.BBox = bbox
	w.Bold = boldVotes*2 >= len(glyphs)
	w.Italic = italicVotes*2 >= len(glyphs)
	w.MCID = majorityMCID(mcidVotes)
	return w
}

func majorityMCID(votes map[int]int) int {
	best, bestCount := -1, 0
	for mcid, count := range votes {
		if count > bestCount {
			best, bestCount = mcid, count
		}
	}
	return best
}

func glyphBBox(g contentstream.GlyphRecord) model.Rectangle {
	r := model.Rectangle{LLX: g.Quad[0][0], LLY: g.Quad[0][1], URX: g.Quad[0][0], URY: g.Quad[0][1]}
	for _, c := range g.Quad[1:] {
		if c[0] < r.LLX {
			r.LLX = c[0]
		}
		if c[0] > r.URX {
			r.URX = c[0]
		}
		if c[1] < r.LLY {
			r.LLY = c[1]
		}
		if c[1] > r.URY {
			r.URY = c[1]
		}
	}
	return r
}

func unionRect(a, b model.Rectangle) model.Rectangle {
	return model.Rectangle{
		LLX: min(a.LLX, b.LLX),
		LLY: min(a.LLY, b.LLY),
		URX: max(a.URX, b.URX),
		URY: max(a.URY, b.URY),
	}
}
