package extractor

import (
	"github.com/corpusreader/pdftext/contentstream"
	"github.com/corpusreader/pdftext/model"
)

// uprightBox returns mb's extent after a page with rotation degrees
// (0/90/180/270, clockwise, per /Rotate) is rotated for display, so a
// caller never has to reason about the declared rotation itself. 90 and
// 270 swap width and height; the returned rectangle is always re-based at
// the origin, matching how every other page-coordinate value this package
// exposes is expressed relative to (0,0).
func uprightBox(mb model.Rectangle, rotation int) model.Rectangle {
	w, h := mb.Width(), mb.Height()
	switch rotation {
	case 90, 270:
		return model.Rectangle{LLX: 0, LLY: 0, URX: h, URY: w}
	default:
		return model.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h}
	}
}

// uprightPoint maps x,y (in the page's native, unrotated MediaBox space)
// to the upright display space uprightBox describes.
func uprightPoint(x, y float64, mb model.Rectangle, rotation int) (float64, float64) {
	u, v := x-mb.LLX, y-mb.LLY
	w, h := mb.Width(), mb.Height()
	switch rotation {
	case 90:
		return v, w - u
	case 180:
		return w - u, h - v
	case 270:
		return h - v, u
	default:
		return u, v
	}
}

// uprightGlyphs returns records with X, Y and Quad remapped into upright
// display space, leaving every other field (text, font, MCID, color)
// untouched. The Content-Stream Interpreter deliberately emits in native
// MediaBox space (contentstream.GlyphRecord's doc comment); rotation is
// applied here, once, on the way out to a caller instead of inside the
// interpreter's hot loop.
func uprightGlyphs(records []contentstream.GlyphRecord, mb model.Rectangle, rotation int) []contentstream.GlyphRecord {
	if rotation == 0 {
		return records
	}
	out := make([]contentstream.GlyphRecord, len(records))
	for i, r := range records {
		r.X, r.Y = uprightPoint(r.X, r.Y, mb, rotation)
		var q contentstream.Quad
		for j, c := range r.Quad {
			q[j][0], q[j][1] = uprightPoint(c[0], c[1], mb, rotation)
		}
		r.Quad = q
		out[i] = r
	}
	return out
}
