package extractor

import (
	"sort"

	"github.com/corpusreader/pdftext/model"
)

// Line is a run of Words the line-grouping stage judged to sit on the same
// text line.
type Line struct {
	Words []Word
	BBox  model.Rectangle
}

// lineEpsilonFactor scales a word's height to decide how close two words'
// vertical centers must be to belong to the same line.
const lineEpsilonFactor = 0.5

// clusterLines runs Stage B over one column's words: group into lines by
// vertical proximity, then sort each line's words left to right.
func clusterLines(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].BBox.LLY+sorted[i].BBox.Height()/2, sorted[j].BBox.LLY+sorted[j].BBox.Height()/2
		if ci != cj {
			return ci > cj
		}
		return sorted[i].BBox.LLX < sorted[j].BBox.LLX
	})

	var lines []Line
	var current []Word
	var currentCenter float64
	for _, w := range sorted {
		center := w.BBox.LLY + w.BBox.Height()/2
		if len(current) == 0 {
			current = append(current, w)
			currentCenter = center
			continue
		}
		epsilon := lineEpsilonFactor * current[0].BBox.Height()
		if epsilon <= 0 {
			epsilon = lineEpsilonFactor * w.FontSize
		}
		if abs(currentCenter-center) <= epsilon {
			current = append(current, w)
			continue
		}
		lines = append(lines, buildLine(current))
		current = []Word{w}
		currentCenter = center
	}
	if len(current) > 0 {
		lines = append(lines, buildLine(current))
	}
	return lines
}

func buildLine(words []Word) Line {
	sort.SliceStable(words, func(i, j int) bool { return words[i].BBox.LLX < words[j].BBox.LLX })
	line := Line{Words: words, BBox: words[0].BBox}
	for _, w := range words[1:] {
		line.BBox = unionRect(line.BBox, w.BBox)
	}
	return line
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
