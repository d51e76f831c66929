package extractor

import (
	"sort"

	"github.com/corpusreader/pdftext/model"
)

// orderBlocks runs Stage D. When the document's structure tree is trusted
// for reading order, blocks are ordered by the position of their first
// MCID in the tree's per-page MCID order; blocks with no MCID in the tree
// (annotations, page furniture the tree never referenced) follow all the
// tagged blocks, in geometric order among themselves, and are not
// interleaved with the tagged ones. Otherwise, blocks are sorted by
// orderGeometrically.
func orderBlocks(blocks []Block, mcidOrder []int, trustStructure bool) []Block {
	if trustStructure && len(mcidOrder) > 0 {
		blocks = orderByMCID(blocks, mcidOrder)
	} else {
		blocks = orderGeometrically(blocks)
	}
	for i := range blocks {
		blocks[i].ReadingOrder = i
	}
	return blocks
}

func blockMCIDs(b Block) []int {
	var ids []int
	for _, l := range b.Lines {
		for _, w := range l.Words {
			if w.MCID >= 0 {
				ids = append(ids, w.MCID)
			}
		}
	}
	return ids
}

// orderByMCID sorts blocks by the earliest position, in mcidOrder, of any
// MCID the block carries. Blocks that reference no MCID in the tree are
// stable-sorted after the tagged ones, in their original (geometric)
// order, rather than dropped: the tree orders tagged content, it does not
// account for every mark on the page.
func orderByMCID(blocks []Block, mcidOrder []int) []Block {
	rank := make(map[int]int, len(mcidOrder))
	for i, mcid := range mcidOrder {
		if _, exists := rank[mcid]; !exists {
			rank[mcid] = i
		}
	}
	geometric := orderGeometrically(blocks)

	type scored struct {
		block Block
		rank  int
		tagged bool
	}
	scoredBlocks := make([]scored, len(geometric))
	for i, b := range geometric {
		best := -1
		for _, mcid := range blockMCIDs(b) {
			if r, ok := rank[mcid]; ok && (best == -1 || r < best) {
				best = r
			}
		}
		scoredBlocks[i] = scored{block: b, rank: best, tagged: best != -1}
	}
	sort.SliceStable(scoredBlocks, func(i, j int) bool {
		si, sj := scoredBlocks[i], scoredBlocks[j]
		if si.tagged != sj.tagged {
			return si.tagged
		}
		if si.tagged {
			return si.rank < sj.rank
		}
		return false // preserve original geometric relative order
	})
	out := make([]Block, len(scoredBlocks))
	for i, s := range scoredBlocks {
		out[i] = s.block
	}
	return out
}

// orderGeometrically sorts blocks by the exact x of their left edge (left
// to right), then by top edge (top to bottom) among blocks whose left
// edges are equal. There is no column detection or x-bucketing: blocks of
// one column whose left edges differ, such as an indented paragraph, are
// not grouped together, and a block sorts after every block whose left
// edge lies further left, whatever their vertical positions.
func orderGeometrically(blocks []Block) []Block {
	out := append([]Block(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BBox.LLX != out[j].BBox.LLX {
			return out[i].BBox.LLX < out[j].BBox.LLX
		}
		return out[i].BBox.URY > out[j].BBox.URY
	})
	return out
}

// applyHeadingDetection classifies blocks as headings by clustering the
// distinct line font sizes found across the page: the tallest one to
// three unique sizes map to H1-H3, in descending size order.
func applyHeadingDetection(blocks []Block) {
	sizes := map[float64]bool{}
	for _, b := range blocks {
		for _, l := range b.Lines {
			if sz := dominantFontSize(l); sz > 0 {
				sizes[sz] = true
			}
		}
	}
	if len(sizes) == 0 {
		return
	}
	unique := make([]float64, 0, len(sizes))
	for sz := range sizes {
		unique = append(unique, sz)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(unique)))
	if len(unique) > 3 {
		unique = unique[:3]
	}
	level := make(map[float64]int, len(unique))
	for i, sz := range unique {
		level[sz] = i + 1
	}
	for i := range blocks {
		if len(blocks[i].Lines) == 0 {
			continue
		}
		sz := dominantFontSize(blocks[i].Lines[0])
		blocks[i].HeadingLevel = level[sz]
	}
}

func dominantFontSize(l Line) float64 {
	if len(l.Words) == 0 {
		return 0
	}
	counts := map[float64]int{}
	for _, w := range l.Words {
		counts[w.FontSize]++
	}
	best, bestCount := 0.0, 0
	for sz, c := range counts {
		if c > bestCount {
			best, bestCount = sz, c
		}
	}
	return best
}

// structTypeForBlock looks up the structure type of the element, if any,
// that owns the block's first tagged line -- used to annotate the public
// Block.StructType hint the serializer consumes.
func structTypeForBlock(tree *model.StructTree, b Block) model.StructElemType {
	if tree == nil {
		return ""
	}
	ids := blockMCIDs(b)
	if len(ids) == 0 {
		return ""
	}
	return elemTypeForMCID(tree.Roots, ids[0])
}

func elemTypeForMCID(elems []*model.StructElem, mcid int) model.StructElemType {
	for _, e := range elems {
		for _, id := range e.MCIDs {
			if id == mcid {
				return e.Type
			}
		}
		if t := elemTypeForMCID(e.Children, mcid); t != "" {
			return t
		}
	}
	return ""
}
