package extractor

import (
	"testing"

	"github.com/corpusreader/pdftext/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockWithMCID(llx, lly, urx, ury float64, mcid int) Block {
	return Block{
		BBox: model.Rectangle{LLX: llx, LLY: lly, URX: urx, URY: ury},
		Lines: []Line{{
			Words: []Word{{MCID: mcid, FontSize: ury - lly}},
			BBox:  model.Rectangle{LLX: llx, LLY: lly, URX: urx, URY: ury},
		}},
	}
}

func TestOrderGeometricallyColumnsLeftToRight(t *testing.T) {
	blocks := []Block{
		blockWithMCID(300, 500, 550, 600, -1), // right column
		blockWithMCID(50, 500, 280, 600, -1),  // left column
	}
	out := orderGeometrically(blocks)
	assert.Equal(t, 50.0, out[0].BBox.LLX)
	assert.Equal(t, 300.0, out[1].BBox.LLX)
}

func TestOrderByMCIDFollowsStructureTreeOrder(t *testing.T) {
	blocks := []Block{
		blockWithMCID(50, 100, 550, 150, 5),
		blockWithMCID(50, 600, 550, 650, 2),
	}
	out := orderByMCID(blocks, []int{2, 5})
	require.Len(t, out, 2)
	assert.Equal(t, 2, blockMCIDs(out[0])[0])
	assert.Equal(t, 5, blockMCIDs(out[1])[0])
}

func TestOrderByMCIDPutsUntaggedBlocksAfterTagged(t *testing.T) {
	blocks := []Block{
		blockWithMCID(50, 100, 550, 150, -1),
		blockWithMCID(50, 600, 550, 650, 1),
	}
	out := orderByMCID(blocks, []int{1})
	require.Len(t, out, 2)
	assert.Equal(t, 1, blockMCIDs(out[0])[0])
}

func TestApplyHeadingDetectionClustersTopSizes(t *testing.T) {
	blocks := []Block{
		{Lines: []Line{{Words: []Word{{FontSize: 24}}}}},
		{Lines: []Line{{Words: []Word{{FontSize: 12}}}}},
		{Lines: []Line{{Words: []Word{{FontSize: 12}}}}},
	}
	applyHeadingDetection(blocks)
	assert.Equal(t, 1, blocks[0].HeadingLevel)
	assert.Equal(t, 2, blocks[1].HeadingLevel)
}
