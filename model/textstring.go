package model

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// DecodePDFTextString decodes a PDF "text string" per ISO 32000-1 7.9.2.2:
// either PDFDocEncoding (single-byte, a superset of Latin-1 with a handful
// of typographic substitutions in 0x80-0x9F) or UTF-16BE with a leading
// 0xFE 0xFF byte-order mark. This is used for /Info dictionary values and,
// via the same rule, for structure-element /Alt, /ActualText, /Lang and /E
// attribute strings.
func DecodePDFTextString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := decoder.Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	return pdfDocEncodingToUTF8(b)
}

// pdfDocEncodingToUTF8 converts PDFDocEncoding bytes to UTF-8. PDFDocEncoding
// agrees with Latin-1 (ISO 8859-1) for 0x20-0x7E and 0xA0-0xFF; the range
// 0x80-0x9F carries typographic punctuation and a handful of accented
// letters not present in Latin-1, per Appendix D.2.
func pdfDocEncodingToUTF8(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		if r, ok := pdfDocSpecials[c]; ok {
			buf.WriteRune(r)
			continue
		}
		buf.WriteRune(rune(c))
	}
	return buf.String()
}

// pdfDocSpecials is the 0x18-0x9F subset of PDFDocEncoding that diverges
// from Latin-1 (Appendix D.2, ISO 32000-1).
var pdfDocSpecials = map[byte]rune{
	0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9,
	0x1C: 0x02DD, 0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
	0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026,
	0x84: 0x2014, 0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044,
	0x88: 0x2039, 0x89: 0x203A, 0x8A: 0x2212, 0x8B: 0x2030,
	0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D, 0x8F: 0x2018,
	0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
	0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160,
	0x98: 0x0178, 0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142,
	0x9C: 0x0153, 0x9D: 0x0161, 0x9E: 0x017E, 0x9F: 0xFFFD,
}
