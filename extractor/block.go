package extractor

import (
	"sort"

	"github.com/corpusreader/pdftext/model"
)

// Block is a group of Lines the column/block segmentation stage judged to
// belong to the same region of the page: a paragraph, a table cell's
// stacked lines, a caption.
type Block struct {
	ReadingOrder int
	BBox         model.Rectangle
	StructType   model.StructElemType // "" if the block has no structure-tree element
	HeadingLevel int                  // 0 = not classified as a heading

	Lines []Line
}

// maxBlockRecursionDepth bounds the projection-based split's recursion.
const maxBlockRecursionDepth = 10

// blockGapFraction is the default fraction of page height a vertical gap
// between lines must exceed to count as a block boundary.
const blockGapFraction = 0.05

// segmentBlocks runs Stage C: recursive projection-based segmentation of
// a page's lines into vertical blocks, and within each block, further
// column splits along the x-axis. Projection gaps are smoothed with a
// small moving-average window instead of a true Gaussian kernel (see
// DESIGN.md); the effect -- not splitting on a single isolated outlier
// gap -- is the same.
func segmentBlocks(lines []Line, pageHeight, pageWidth float64) []Block {
	if len(lines) == 0 {
		return nil
	}
	return splitVertical(lines, pageHeight, pageWidth, 0)
}

func splitVertical(lines []Line, pageHeight, pageWidth float64, depth int) []Block {
	groups := projectionSplit(lines, pageHeight, depth, func(l Line) (float64, float64) {
		return l.BBox.LLY, l.BBox.URY
	})
	if len(groups) <= 1 || depth >= maxBlockRecursionDepth {
		return []Block{blockFromLines(groupOrAll(groups, lines))}
	}
	var blocks []Block
	for _, g := range groups {
		blocks = append(blocks, splitHorizontal(g, pageHeight, pageWidth, depth+1)...)
	}
	return blocks
}

func splitHorizontal(lines []Line, pageHeight, pageWidth float64, depth int) []Block {
	groups := projectionSplit(lines, pageWidth, depth, func(l Line) (float64, float64) {
		return l.BBox.LLX, l.BBox.URX
	})
	if len(groups) <= 1 || depth >= maxBlockRecursionDepth {
		return []Block{blockFromLines(groupOrAll(groups, lines))}
	}
	var blocks []Block
	for _, g := range groups {
		blocks = append(blocks, splitVertical(g, pageHeight, pageWidth, depth+1)...)
	}
	return blocks
}

func groupOrAll(groups [][]Line, all []Line) []Line {
	if len(groups) == 1 {
		return groups[0]
	}
	return all
}

// projectionSplit projects each line's [lo,hi] extent along one axis,
// accumulates a coverage histogram, smooths it, and splits wherever a
// sufficiently wide gap appears.
func projectionSplit(lines []Line, axisExtent float64, depth int, span func(Line) (float64, float64)) [][]Line {
	if axisExtent <= 0 || len(lines) < 2 {
		return [][]Line{lines}
	}
	const buckets = 200
	hist := make([]float64, buckets)
	bucketSize := axisExtent / buckets
	if bucketSize <= 0 {
		return [][]Line{lines}
	}
	for _, l := range lines {
		lo, hi := span(l)
		startBucket := clampBucket(int(lo/bucketSize), buckets)
		endBucket := clampBucket(int(hi/bucketSize), buckets)
		for b := startBucket; b <= endBucket; b++ {
			hist[b]++
		}
	}
	smoothed := movingAverage(hist, smoothingWindow(depth))

	threshold := blockGapFraction * axisExtent
	gapBuckets := int(threshold / bucketSize)
	if gapBuckets < 1 {
		gapBuckets = 1
	}

	var cuts []int
	run := 0
	for b, v := range smoothed {
		if v == 0 {
			run++
			if run == gapBuckets {
				cuts = append(cuts, b-gapBuckets+1)
			}
		} else {
			run = 0
		}
	}
	if len(cuts) == 0 {
		return [][]Line{lines}
	}
	return splitLinesAtCuts(lines, cuts, bucketSize, span)
}

// smoothingWindow adapts the moving-average window to recursion depth,
// standing in for the sigma-schedule {0.5, 1.5, 2.5} a Gaussian kernel
// would use: wider windows near the root, where gross column structure is
// being found, narrower windows as recursion descends into denser text.
func smoothingWindow(depth int) int {
	switch {
	case depth == 0:
		return 5
	case depth == 1:
		return 3
	default:
		return 1
	}
}

func movingAverage(hist []float64, window int) []float64 {
	if window <= 1 {
		return hist
	}
	out := make([]float64, len(hist))
	half := window / 2
	for i := range hist {
		var sum float64
		var n int
		for k := i - half; k <= i+half; k++ {
			if k < 0 || k >= len(hist) {
				continue
			}
			sum += hist[k]
			n++
		}
		out[i] = sum / float64(n)
	}
	return out
}

func clampBucket(b, buckets int) int {
	if b < 0 {
		return 0
	}
	if b >= buckets {
		return buckets - 1
	}
	return b
}

func splitLinesAtCuts(lines []Line, cuts []int, bucketSize float64, span func(Line) (float64, float64)) [][]Line {
	boundaries := make([]float64, len(cuts))
	for i, c := range cuts {
		boundaries[i] = float64(c) * bucketSize
	}
	groups := make([][]Line, len(boundaries)+1)
	for _, l := range lines {
		lo, _ := span(l)
		idx := sort.SearchFloat64s(boundaries, lo)
		groups[idx] = append(groups[idx], l)
	}
	var nonEmpty [][]Line
	for _, g := range groups {
		if len(g) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}
	if len(nonEmpty) == 0 {
		return [][]Line{lines}
	}
	return nonEmpty
}

func blockFromLines(lines []Line) Block {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].BBox.LLY > lines[j].BBox.LLY })
	b := Block{Lines: lines, BBox: lines[0].BBox}
	for _, l := range lines[1:] {
		b.BBox = unionRect(b.BBox, l.BBox)
	}
	return b
}
