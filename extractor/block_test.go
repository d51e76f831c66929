package extractor

import (
	"testing"

	"github.com/corpusreader/pdftext/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineAt(llx, lly, urx, ury float64) Line {
	return Line{
		Words: []Word{{Text: "x", BBox: model.Rectangle{LLX: llx, LLY: lly, URX: urx, URY: ury}, FontSize: ury - lly}},
		BBox:  model.Rectangle{LLX: llx, LLY: lly, URX: urx, URY: ury},
	}
}

func TestSegmentBlocksSplitsOnLargeVerticalGap(t *testing.T) {
	lines := []Line{
		lineAt(50, 700, 550, 720),
		lineAt(50, 680, 550, 700),
		lineAt(50, 100, 550, 120), // big vertical gap down the page
	}
	blocks := segmentBlocks(lines, 792, 612)
	require.Len(t, blocks, 2)
}

func TestSegmentBlocksKeepsTightLinesTogether(t *testing.T) {
	lines := []Line{
		lineAt(50, 700, 550, 720),
		lineAt(50, 682, 550, 700),
		lineAt(50, 664, 550, 682),
	}
	blocks := segmentBlocks(lines, 792, 612)
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Lines, 3)
}

func TestSegmentBlocksEmptyInput(t *testing.T) {
	assert.Nil(t, segmentBlocks(nil, 792, 612))
}
