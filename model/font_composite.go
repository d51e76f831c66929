package model

import (
	"github.com/corpusreader/pdftext/core"
	"github.com/corpusreader/pdftext/internal/cmap"
	"github.com/unidoc/unitype"
)

// compositeFont backs Font for Type0 composite fonts: a font-space CMap
// segments content-stream bytes into character codes, the same CMap maps
// codes to CIDs (identity where it has no CID mapping for a code), and /W
// supplies per-CID widths with /DW as the default.
type compositeFont struct {
	cmap         *cmap.CMap // the font's /Encoding: predefined or embedded
	toUnicodeMap *cmap.CMap // descendant /ToUnicode, highest priority when present

	defaultWidth float64
	widths       map[uint32]float64 // keyed by CID

	embedded *unitype.Font // /FontFile2, /FontFile3 or /FontFile, nil if absent or unparseable
}

func buildCompositeFont(doc *Document, type0Dict, descFont *core.Dict) (*compositeFont, error) {
	cf := &compositeFont{defaultWidth: 1000}

	c, err := buildEmbeddedOrPredefinedCMap(doc, type0Dict.Get("Encoding"))
	if err != nil {
		return nil, err
	}
	cf.cmap = c

	if tu, ok := core.GetStream(type0Dict.Get("ToUnicode")); ok {
		decoded, err := core.DecodeStream(tu, doc.limits)
		if err == nil {
			if parsed, err := cmap.Parse("ToUnicode", decoded); err == nil {
				cf.toUnicodeMap = parsed
			} else {
				doc.Warnf("Type0 font: malformed /ToUnicode CMap: %v", err)
			}
		} else {
			doc.Warnf("Type0 font: could not decode /ToUnicode stream: %v", err)
		}
	}

	if dw, ok := core.GetNumberAsFloat(descFont.Get("DW")); ok {
		cf.defaultWidth = dw
	}
	if wArr, ok := core.GetArray(descFont.Get("W")); ok {
		cf.widths = parseCIDWidths(wArr)
	}

	descriptor, _ := core.GetDict(descFont.Get("FontDescriptor"))
	cf.embedded = embeddedFontProgram(doc, descriptor)
	return cf, nil
}

// parseCIDWidths decodes the /W array's two shorthand forms (ISO 32000-1
// 9.7.4.3): "c [w1 w2 ... wn]" (individual widths starting at CID c) and
// "c_first c_last w" (one width applied to the whole inclusive range).
func parseCIDWidths(w *core.Array) map[uint32]float64 {
	out := make(map[uint32]float64)
	elems := w.Elements()
	i := 0
	for i < len(elems) {
		first, ok := core.GetInt(elems[i])
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(elems) {
			break
		}
		if arr, ok := core.GetArray(elems[i]); ok {
			cid := first
			for _, wObj := range arr.Elements() {
				if width, ok := core.GetNumberAsFloat(wObj); ok {
					out[uint32(cid)] = width
				}
				cid++
			}
			i++
			continue
		}
		last, ok := core.GetInt(elems[i])
		if !ok || i+1 >= len(elems) {
			break
		}
		width, _ := core.GetNumberAsFloat(elems[i+1])
		for cid := first; cid <= last; cid++ {
			out[uint32(cid)] = width
		}
		i += 2
	}
	return out
}

func (cf *compositeFont) toUnicode(code uint32) (string, bool) {
	if cf.toUnicodeMap != nil {
		if rs, ok := cf.toUnicodeMap.ToUnicode(code); ok {
			return string(rs), true
		}
	}
	// When the font's own CMap is one of the predefined CJK "UCS2"
	// variants, code->CID doubles as code->Unicode directly (the
	// simplification documented in cmap.Predefined).
	if rs, ok := cf.cmap.ToUnicode(code); ok {
		return string(rs), true
	}
	return "", false
}

func (cf *compositeFont) width(code uint32) float64 {
	cid, ok := cf.cmap.CIDFor(code)
	if !ok {
		cid = code // Identity-H/V: CID equals code by construction
	}
	if w, ok := cf.widths[cid]; ok && hasGlyphForCID(cf.embedded, cid) {
		return w
	}
	return cf.defaultWidth
}
