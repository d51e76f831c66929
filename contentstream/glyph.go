package contentstream

import "github.com/corpusreader/pdftext/model"

// Color is a normalized RGB color in [0,1], resolved from whichever color
// operator (g/rg/k/sc/scn) last set the fill color before a glyph was
// emitted. Only CTM and color affect text output; stroke state is ignored.
type Color struct {
	R, G, B float64
}

// Quad is a glyph's bounding box as four corners, ordered
// bottom-left/bottom-right/top-right/top-left in text space, so rotated
// text still carries a faithful box.
type Quad [4][2]float64

// GlyphRecord is the interpreter's emission unit: one decoded character
// code's rendered position, metrics and provenance.
type GlyphRecord struct {
	Text string // 0..N Unicode code points decoded from this glyph's code

	X, Y      float64 // baseline origin, in unrotated page (MediaBox) space
	Advance   float64 // advance width along the text line, page-space units
	Quad      Quad
	FontSize  float64 // effective size: Tf size scaled by the text rendering matrix
	Rotation  float64 // degrees, atan2(trm.b, trm.a)
	Color     Color
	Font      *model.Font
	MCID      int // marked-content id, or -1 if none
	IsArtifact bool
	ArtifactSubtype model.ArtifactSubtype

	// FromActualText marks a record whose Text came from a /Span
	// /ActualText substitution rather than the font's own code->Unicode
	// path: ligature expansion must leave it alone (ActualText always
	// wins).
	FromActualText bool

	// Invisible marks a glyph shown under Tr 3 (render mode "neither fill
	// nor stroke"), commonly a hidden OCR text layer under a scanned image:
	// still emitted so its text stays extractable, just distinguishable
	// from visibly rendered text.
	Invisible bool

	Bold, Italic bool
}
