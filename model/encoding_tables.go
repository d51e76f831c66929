package model

// The four predefined simple-font encodings named in ISO 32000-1 Annex D.
// Codes 0x20-0x7E are plain ASCII in WinAnsiEncoding and MacRomanEncoding,
// and in StandardEncoding except 0x27 (quoteright) and 0x60 (quoteleft);
// each table below only needs to carry its divergent codes, keyed as a
// byte->rune map per named encoding,
// leaving unmapped codes unresolved so AGL-via-glyph-name and /Differences
// can still override them.

func asciiRange() map[byte]rune {
	m := make(map[byte]rune, 0x7F-0x20)
	for c := byte(0x20); c <= 0x7E; c++ {
		m[c] = rune(c)
	}
	return m
}

// standardEncoding is Adobe's original Type 1 font encoding (Annex D.2).
var standardEncoding = func() map[byte]rune {
	m := asciiRange()
	m[0x27] = 0x2019 // quoteright
	m[0x60] = 0x2018 // quoteleft
	upper := map[byte]rune{
		0xA1: 0x00A1, 0xA2: 0x00A2, 0xA3: 0x00A3, 0xA4: 0x2044, 0xA5: 0x00A5,
		0xA6: 0x0192, 0xA7: 0x00A7, 0xA8: 0x00A4, 0xA9: 0x0027, 0xAA: 0x201C,
		0xAB: 0x00AB, 0xAC: 0x2039, 0xAD: 0x203A, 0xAE: 0xFB01, 0xAF: 0xFB02,
		0xB1: 0x2013, 0xB2: 0x2020, 0xB3: 0x2021, 0xB4: 0x00B7, 0xB6: 0x00B6,
		0xB7: 0x2022, 0xB8: 0x201A, 0xB9: 0x201E, 0xBA: 0x201D, 0xBB: 0x00BB,
		0xBC: 0x2026, 0xBD: 0x2030, 0xBF: 0x00BF,
		0xC1: 0x0060, 0xC2: 0x00B4, 0xC3: 0x02C6, 0xC4: 0x02DC, 0xC5: 0x00AF,
		0xC6: 0x02D8, 0xC7: 0x02D9, 0xC8: 0x00A8, 0xCA: 0x02DA, 0xCB: 0x00B8,
		0xCD: 0x02DD, 0xCE: 0x02DB, 0xCF: 0x02C7,
		0xD0: 0x2014, 0xE1: 0x00C6, 0xE3: 0x00AA, 0xE8: 0x0141, 0xE9: 0x00D8,
		0xEA: 0x0152, 0xEB: 0x00BA, 0xF1: 0x00E6, 0xF5: 0x0131, 0xF8: 0x0142,
		0xF9: 0x00F8, 0xFA: 0x0153, 0xFB: 0x00DF,
	}
	for k, v := range upper {
		m[k] = v
	}
	return m
}()

// winAnsiEncoding agrees with Windows-1252 / CP1252 (Annex D.2).
var winAnsiEncoding = func() map[byte]rune {
	m := asciiRange()
	m[0xA0] = 0x00A0
	for c := 0xA1; c <= 0xFF; c++ {
		m[byte(c)] = rune(c) // Latin-1 supplement, unchanged for most of the range
	}
	special := map[byte]rune{
		0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E, 0x85: 0x2026,
		0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6, 0x89: 0x2030, 0x8A: 0x0160,
		0x8B: 0x2039, 0x8C: 0x0152, 0x8E: 0x017D,
		0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C, 0x94: 0x201D, 0x95: 0x2022,
		0x96: 0x2013, 0x97: 0x2014, 0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161,
		0x9B: 0x203A, 0x9C: 0x0153, 0x9E: 0x017E, 0x9F: 0x0178,
	}
	for k, v := range special {
		m[k] = v
	}
	return m
}()

// macRomanEncoding is classic Mac OS Roman (Annex D.2).
var macRomanEncoding = func() map[byte]rune {
	m := asciiRange()
	upper := map[byte]rune{
		0x80: 0x00C4, 0x81: 0x00C5, 0x82: 0x00C7, 0x83: 0x00C9, 0x84: 0x00D1,
		0x85: 0x00D6, 0x86: 0x00DC, 0x87: 0x00E1, 0x88: 0x00E0, 0x89: 0x00E2,
		0x8A: 0x00E4, 0x8B: 0x00E3, 0x8C: 0x00E5, 0x8D: 0x00E7, 0x8E: 0x00E9,
		0x8F: 0x00E8, 0x90: 0x00EA, 0x91: 0x00EB, 0x92: 0x00ED, 0x93: 0x00EC,
		0x94: 0x00EE, 0x95: 0x00EF, 0x96: 0x00F1, 0x97: 0x00F3, 0x98: 0x00F2,
		0x99: 0x00F4, 0x9A: 0x00F6, 0x9B: 0x00F5, 0x9C: 0x00FA, 0x9D: 0x00F9,
		0x9E: 0x00FB, 0x9F: 0x00FC, 0xA0: 0x2020, 0xA1: 0x00B0, 0xA2: 0x00A2,
		0xA3: 0x00A3, 0xA4: 0x00A7, 0xA5: 0x2022, 0xA6: 0x00B6, 0xA7: 0x00DF,
		0xA8: 0x00AE, 0xA9: 0x00A9, 0xAA: 0x2122, 0xAB: 0x00B4, 0xAC: 0x00A8,
		0xAE: 0x00C6, 0xAF: 0x00D8, 0xB1: 0x00B1, 0xB4: 0x00A5, 0xB5: 0x00B5,
		0xBB: 0x00AA, 0xBC: 0x00BA, 0xBE: 0x00E6, 0xBF: 0x00F8, 0xC0: 0x00BF,
		0xC1: 0x00A1, 0xC2: 0x00AC, 0xC4: 0x0192, 0xC7: 0x00AB, 0xC8: 0x00BB,
		0xC9: 0x2026, 0xCA: 0x00A0, 0xCB: 0x00C0, 0xCC: 0x00C3, 0xCD: 0x00D5,
		0xCE: 0x0152, 0xCF: 0x0153, 0xD0: 0x2013, 0xD1: 0x2014, 0xD2: 0x201C,
		0xD3: 0x201D, 0xD4: 0x2018, 0xD5: 0x2019, 0xD6: 0x00F7, 0xD8: 0x00FF,
		0xD9: 0x0178, 0xDA: 0x2044, 0xDB: 0x20AC, 0xDC: 0x2039, 0xDD: 0x203A,
		0xDE: 0xFB01, 0xDF: 0xFB02, 0xE0: 0x2021, 0xE1: 0x00B7, 0xE2: 0x201A,
		0xE3: 0x201E, 0xE4: 0x2030, 0xE5: 0x00C2, 0xE6: 0x00CA, 0xE7: 0x00C1,
		0xE8: 0x00CB, 0xE9: 0x00C8, 0xEA: 0x00CD, 0xEB: 0x00CE, 0xEC: 0x00CF,
		0xED: 0x00CC, 0xEE: 0x00D3, 0xEF: 0x00D4, 0xF1: 0x00D2, 0xF2: 0x00DA,
		0xF3: 0x00DB, 0xF4: 0x00D9, 0xF5: 0x0131, 0xF6: 0x02C6, 0xF7: 0x02DC,
		0xF8: 0x00AF, 0xF9: 0x02D8, 0xFA: 0x02D9, 0xFB: 0x02DA, 0xFC: 0x00B8,
		0xFD: 0x02DD, 0xFE: 0x02DB, 0xFF: 0x02C7,
	}
	for k, v := range upper {
		m[k] = v
	}
	return m
}()

// macExpertEncoding is a small-caps/ligature-heavy encoding rarely seen
// outside legacy expert-set fonts; only the codes with a direct Unicode
// glyph-name equivalent are carried (Annex D.4). Glyphs without one (e.g.
// the small-caps letters, which AGL has no codepoint for) fall through to
// ToUnicode/Differences; this is a best-effort encoding, not a lossless one.
var macExpertEncoding = func() map[byte]rune {
	m := map[byte]rune{
		0x20: 0x0020, 0x21: 0x00A1, 0x22: 0x0021, 0x24: 0x0024, 0x27: 0x2019,
		0x28: 0x0028, 0x29: 0x0029, 0x2C: 0x002C, 0x2D: 0x002D, 0x2E: 0x002E,
		0x2F: 0x2044, 0x3A: 0x003A, 0x3B: 0x003B, 0x3F: 0x003F,
	}
	return m
}()
