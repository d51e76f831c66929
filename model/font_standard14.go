package model

import "strings"

// standard14Metrics returns a rune->width (thousandths of an em) table for
// one of the 14 standard fonts every PDF-1.x consumer is required to know
// without an embedded program (ISO 32000-1 Annex H), keyed by the font's
// canonical family name. Courier's family is exactly monospaced at 600;
// Helvetica/Times carry per-glyph widths for the printable ASCII range,
// which covers the overwhelming majority of real-world text extraction
// since accented/extended glyphs in Standard-14 documents are rare and
// fall back to the 500 default in simpleFont.width.
func standard14Metrics(baseFont string) (map[rune]float64, bool) {
	family := canonicalStd14Family(baseFont)
	if family == "" {
		return nil, false
	}
	switch family {
	case "Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique":
		return courierWidths, true
	case "Helvetica":
		return helveticaWidths, true
	case "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique":
		return helveticaWidths, true // width table is shared across the family's four faces
	case "Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic":
		return timesWidths, true
	case "Symbol", "ZapfDingbats":
		return nil, true // glyph set is non-Latin; widths degrade to the 500 default
	}
	return nil, false
}

func standard14DefaultEncoding(baseFont string) map[byte]rune {
	family := canonicalStd14Family(baseFont)
	if family == "Symbol" || family == "ZapfDingbats" {
		return standardEncoding // best-effort; Symbol/ZapfDingbats use their own private encodings
	}
	return standardEncoding
}

// canonicalStd14Family maps a /BaseFont value (which may carry a subset tag
// like "ABCDEF+Helvetica" per ISO 32000-1 9.6.4) to one of the 14 canonical
// names, or "" if baseFont isn't a standard font.
func canonicalStd14Family(baseFont string) string {
	name := baseFont
	if idx := strings.IndexByte(name, '+'); idx == 6 {
		name = name[idx+1:]
	}
	lower := strings.ToLower(name)
	bold := strings.Contains(lower, "bold")
	italic := strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	switch {
	case strings.Contains(lower, "courier"):
		switch {
		case bold && italic:
			return "Courier-BoldOblique"
		case bold:
			return "Courier-Bold"
		case italic:
			return "Courier-Oblique"
		default:
			return "Courier"
		}
	case strings.Contains(lower, "helvetica"), strings.Contains(lower, "arial"):
		switch {
		case bold && italic:
			return "Helvetica-BoldOblique"
		case bold:
			return "Helvetica-Bold"
		case italic:
			return "Helvetica-Oblique"
		default:
			return "Helvetica"
		}
	case strings.Contains(lower, "times"):
		switch {
		case bold && italic:
			return "Times-BoldItalic"
		case bold:
			return "Times-Bold"
		case italic:
			return "Times-Italic"
		default:
			return "Times-Roman"
		}
	case strings.Contains(lower, "symbol"):
		return "Symbol"
	case strings.Contains(lower, "zapfdingbats"), strings.Contains(lower, "dingbats"):
		return "ZapfDingbats"
	}
	return ""
}

var courierWidths = func() map[rune]float64 {
	m := make(map[rune]float64, 95)
	for r := rune(0x20); r <= 0x7E; r++ {
		m[r] = 600
	}
	return m
}()

// helveticaWidths carries the printable-ASCII advance widths for the
// Helvetica/Arial family (Annex H.3). Values not listed here (extended
// Latin, punctuation added by WinAnsi/MacRoman) fall back to 500 in
// simpleFont.width.
var helveticaWidths = map[rune]float64{
	' ': 278, '!': 278, '"': 355, '#': 556, '$': 556, '%': 889, '&': 667,
	'\'': 191, '(': 333, ')': 333, '*': 389, '+': 584, ',': 278, '-': 333,
	'.': 278, '/': 278, '0': 556, '1': 556, '2': 556, '3': 556, '4': 556,
	'5': 556, '6': 556, '7': 556, '8': 556, '9': 556, ':': 278, ';': 278,
	'<': 584, '=': 584, '>': 584, '?': 556, '@': 1015,
	'A': 667, 'B': 667, 'C': 722, 'D': 722, 'E': 667, 'F': 611, 'G': 778,
	'H': 722, 'I': 278, 'J': 500, 'K': 667, 'L': 556, 'M': 833, 'N': 722,
	'O': 778, 'P': 667, 'Q': 778, 'R': 722, 'S': 667, 'T': 611, 'U': 722,
	'V': 667, 'W': 944, 'X': 667, 'Y': 667, 'Z': 611,
	'[': 278, '\\': 278, ']': 278, '^': 469, '_': 556, '`': 333,
	'a': 556, 'b': 556, 'c': 500, 'd': 556, 'e': 556, 'f': 278, 'g': 556,
	'h': 556, 'i': 222, 'j': 222, 'k': 500, 'l': 222, 'm': 833, 'n': 556,
	'o': 556, 'p': 556, 'q': 556, 'r': 333, 's': 500, 't': 278, 'u': 556,
	'v': 500, 'w': 722, 'x': 500, 'y': 500, 'z': 500,
	'{': 334, '|': 260, '}': 334, '~': 584,
}

// timesWidths carries the printable-ASCII advance widths for the Times
// family (Annex H.3).
var timesWidths = map[rune]float64{
	' ': 250, '!': 333, '"': 408, '#': 500, '$': 500, '%': 833, '&': 778,
	'\'': 180, '(': 333, ')': 333, '*': 500, '+': 564, ',': 250, '-': 333,
	'.': 250, '/': 278, '0': 500, '1': 500, '2': 500, '3': 500, '4': 500,
	'5': 500, '6': 500, '7': 500, '8': 500, '9': 500, ':': 278, ';': 278,
	'<': 564, '=': 564, '>': 564, '?': 444, '@': 921,
	'A': 722, 'B': 667, 'C': 667, 'D': 722, 'E': 611, 'F': 556, 'G': 722,
	'H': 722, 'I': 333, 'J': 389, 'K': 722, 'L': 611, 'M': 889, 'N': 722,
	'O': 722, 'P': 556, 'Q': 722, 'R': 667, 'S': 556, 'T': 611, 'U': 722,
	'V': 722, 'W': 944, 'X': 722, 'Y': 722, 'Z': 611,
	'[': 333, '\\': 278, ']': 333, '^': 469, '_': 500, '`': 333,
	'a': 444, 'b': 500, 'c': 444, 'd': 500, 'e': 444, 'f': 333, 'g': 500,
	'h': 500, 'i': 278, 'j': 278, 'k': 500, 'l': 278, 'm': 778, 'n': 500,
	'o': 500, 'p': 500, 'q': 500, 'r': 333, 's': 389, 't': 278, 'u': 500,
	'v': 500, 'w': 722, 'x': 500, 'y': 500, 'z': 444,
	'{': 480, '|': 200, '}': 480, '~': 541,
}
