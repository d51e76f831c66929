package model

import (
	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
	"github.com/corpusreader/pdftext/internal/cmap"
)

// simpleFont backs Font for Type1, TrueType and MMType1 subtypes (Type3
// fonts are rejected by BuildFont and have no simpleFont):
// single-byte codes indexing a 256-glyph encoding, one width per code.
type simpleFont struct {
	baseEncoding map[byte]rune   // StandardEncoding/WinAnsiEncoding/MacRomanEncoding/MacExpertEncoding
	differences  map[byte]string // /Differences glyph names, override baseEncoding
	toUnicodeMap *cmap.CMap      // embedded /ToUnicode, highest priority when present

	firstChar int64
	widths    []float64 // widths[code-firstChar], parallel to /Widths
	missing   float64   // /FontDescriptor /MissingWidth, or a standard-14 metric
	std14     map[rune]float64
}

func buildSimpleFont(doc *Document, dict *core.Dict, descriptor *core.Dict) (*simpleFont, error) {
	sf := &simpleFont{}

	baseFont, _ := core.GetName(dict.Get("BaseFont"))
	encObj := dict.Get("Encoding")
	sf.baseEncoding, sf.differences = resolveSimpleEncoding(encObj, baseFont, dict)

	if tu, ok := core.GetStream(dict.Get("ToUnicode")); ok {
		decoded, err := core.DecodeStream(tu, doc.limits)
		if err == nil {
			if cm, err := cmap.Parse("ToUnicode", decoded); err == nil {
				sf.toUnicodeMap = cm
			} else {
				doc.Warnf("font %q: malformed /ToUnicode CMap: %v", baseFont, err)
			}
		} else {
			doc.Warnf("font %q: could not decode /ToUnicode stream: %v", baseFont, err)
		}
	}

	sf.firstChar, _ = core.GetInt(dict.Get("FirstChar"))
	if widthsArr, ok := core.GetArray(dict.Get("Widths")); ok {
		sf.widths = make([]float64, widthsArr.Len())
		for i, w := range widthsArr.Elements() {
			sf.widths[i], _ = core.GetNumberAsFloat(w)
		}
	}
	if descriptor != nil {
		sf.missing, _ = core.GetNumberAsFloat(descriptor.Get("MissingWidth"))
	}
	if sf.widths == nil {
		if metrics, ok := standard14Metrics(baseFont); ok {
			sf.std14 = metrics
			if sf.baseEncoding == nil {
				sf.baseEncoding = standard14DefaultEncoding(baseFont)
			}
		}
	}
	if sf.baseEncoding == nil {
		sf.baseEncoding = standardEncoding
	}
	return sf, nil
}

// resolveSimpleEncoding implements simple-font encoding resolution:
// /Encoding is either a name (one of the four predefined tables), or a
// dictionary naming a /BaseEncoding plus a /Differences array of
// code/name pairs that override specific codes.
func resolveSimpleEncoding(encObj core.Object, baseFont string, dict *core.Dict) (map[byte]rune, map[byte]string) {
	if name, ok := core.GetName(encObj); ok {
		return namedEncodingTable(name), nil
	}
	encDict, ok := core.GetDict(encObj)
	if !ok {
		return nil, nil
	}
	var base map[byte]rune
	if name, ok := core.GetName(encDict.Get("BaseEncoding")); ok {
		base = namedEncodingTable(name)
	}
	diffArr, ok := core.GetArray(encDict.Get("Differences"))
	if !ok {
		return base, nil
	}
	diffs := make(map[byte]string)
	var code int64
	for _, el := range diffArr.Elements() {
		if n, ok := core.GetInt(el); ok {
			code = n
			continue
		}
		if name, ok := core.GetName(el); ok {
			if code >= 0 && code <= 255 {
				diffs[byte(code)] = name
			}
			code++
		}
	}
	return base, diffs
}

func namedEncodingTable(name string) map[byte]rune {
	switch name {
	case "WinAnsiEncoding":
		return winAnsiEncoding
	case "MacRomanEncoding":
		return macRomanEncoding
	case "MacExpertEncoding":
		return macExpertEncoding
	case "StandardEncoding":
		return standardEncoding
	default:
		return nil
	}
}

// toUnicode implements the priority chain for simple fonts: (1) embedded
// ToUnicode CMap, (2) /Differences glyph name via AGL, (3) base encoding
// table. The final U+FFFD fallback is applied by the caller.
func (sf *simpleFont) toUnicode(code uint32) (string, bool) {
	if sf.toUnicodeMap != nil {
		if rs, ok := sf.toUnicodeMap.ToUnicode(code); ok {
			return string(rs), true
		}
	}
	if code <= 255 {
		b := byte(code)
		if name, ok := sf.differences[b]; ok {
			if r, ok := glyphNameToRune(name); ok {
				return string(r), true
			}
		}
		if r, ok := sf.baseEncoding[b]; ok {
			return string(r), true
		}
	}
	return "", false
}

func (sf *simpleFont) width(code uint32) float64 {
	idx := int64(code) - sf.firstChar
	if idx >= 0 && idx < int64(len(sf.widths)) {
		if w := sf.widths[idx]; w != 0 {
			return w
		}
	}
	if sf.std14 != nil {
		if code <= 255 {
			r := sf.baseEncoding[byte(code)]
			if w, ok := sf.std14[r]; ok {
				return w
			}
		}
	}
	if sf.missing != 0 {
		return sf.missing
	}
	common.Log.Debug("no width for code %#x, defaulting to 500", code)
	return 500
}
