package contentstream

import (
	"testing"

	"github.com/corpusreader/pdftext/core"
	"github.com/corpusreader/pdftext/internal/transform"
	"github.com/stretchr/testify/assert"
)

func TestCmykToRGBPureBlack(t *testing.T) {
	c := cmykToRGB(0, 0, 0, 1)
	assert.Equal(t, Color{0, 0, 0}, c)
}

func TestCmykToRGBPureWhite(t *testing.T) {
	c := cmykToRGB(0, 0, 0, 0)
	assert.Equal(t, Color{1, 1, 1}, c)
}

func TestMatrixOperandRequiresSixOperands(t *testing.T) {
	_, ok := matrixOperand([]core.Object{core.Real(1), core.Real(0)})
	assert.False(t, ok)
}

func TestMatrixOperandParsesSixNumbers(t *testing.T) {
	ops := []core.Object{core.Integer(1), core.Integer(0), core.Integer(0), core.Integer(1), core.Real(100), core.Real(700)}
	m, ok := matrixOperand(ops)
	assert.True(t, ok)
	x, y := m.Transform(0, 0)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 700.0, y)
}

func TestNumOutOfRangeIsNotOK(t *testing.T) {
	_, ok := num([]core.Object{core.Integer(1)}, 5)
	assert.False(t, ok)
}

func TestGlyphQuadIdentityMatrixIsUnitSquare(t *testing.T) {
	q := glyphQuad(transform.IdentityMatrix())
	assert.Equal(t, [2]float64{0, 0}, q[0])
	assert.Equal(t, [2]float64{1, 0}, q[1])
	assert.Equal(t, [2]float64{1, 1}, q[2])
	assert.Equal(t, [2]float64{0, 1}, q[3])
}
