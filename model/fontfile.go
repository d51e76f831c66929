package model

import (
	"bytes"

	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
	"github.com/unidoc/unitype"
)

// embeddedFontProgram opens a font's embedded program (/FontFile,
// /FontFile2 or /FontFile3) as a parsed TrueType/OpenType font, when one
// is present and decodes cleanly. Only its glyph count is used:
// compositeFont.width checks it through hasGlyphForCID before applying a
// /W entry. Simple fonts do not load the program, and its cmap and hmtx
// tables are not read.
func embeddedFontProgram(doc *Document, descriptor *core.Dict) *unitype.Font {
	if descriptor == nil {
		return nil
	}
	for _, key := range []core.Name{"FontFile2", "FontFile3", "FontFile"} {
		stream, ok := core.GetStream(descriptor.Get(key))
		if !ok {
			continue
		}
		decoded, err := core.DecodeStream(stream, doc.limits)
		if err != nil {
			doc.Warnf("font: could not decode embedded %s: %v", key, err)
			continue
		}
		fnt, err := unitype.Parse(bytes.NewReader(decoded))
		if err != nil {
			common.Log.Debug("font: embedded %s did not parse as TrueType/OpenType: %v", key, err)
			continue
		}
		return fnt
	}
	return nil
}

// hasGlyphForCID reports whether an embedded TrueType/OpenType CID font
// program has a glyph at index gid, so an out-of-range CID degrades to the
// font's default width instead of a bogus one. Callers pass the CID itself
// as gid; /CIDToGIDMap is not consulted.
func hasGlyphForCID(fnt *unitype.Font, gid uint32) bool {
	if fnt == nil {
		return true
	}
	n := fnt.NumGlyphs()
	if n <= 0 {
		return true
	}
	return gid < uint32(n)
}
