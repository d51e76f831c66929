package extractor

import (
	"testing"

	"github.com/corpusreader/pdftext/model"
	"github.com/stretchr/testify/assert"
)

func TestUprightBoxSwapsDimensionsAt90(t *testing.T) {
	mb := model.Rectangle{LLX: 0, LLY: 0, URX: 612, URY: 792}
	box := uprightBox(mb, 90)
	assert.Equal(t, 792.0, box.URX)
	assert.Equal(t, 612.0, box.URY)
}

func TestUprightBoxUnchangedAt0(t *testing.T) {
	mb := model.Rectangle{LLX: 0, LLY: 0, URX: 612, URY: 792}
	box := uprightBox(mb, 0)
	assert.Equal(t, mb.Width(), box.Width())
	assert.Equal(t, mb.Height(), box.Height())
}

func TestUprightPointTopLeftMapsToBottomRightAt180(t *testing.T) {
	mb := model.Rectangle{LLX: 0, LLY: 0, URX: 612, URY: 792}
	x, y := uprightPoint(0, 792, mb, 180)
	assert.InDelta(t, 612.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)
}
