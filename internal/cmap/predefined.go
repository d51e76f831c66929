package cmap

// Predefined compiles in the handful of predefined CMaps an embedded CMap
// resolver falls back to: Identity-H/V (CID==code, Unicode resolution
// left to ToUnicode or the descendant font's CIDSystemInfo table) and the
// "UCS2" family for the four registered CJK character collections
// (Adobe-GB1, Adobe-Japan1, Adobe-CNS1, Adobe-Korea1).
//
// The full Adobe "Uni*-UCS2-*" CMaps are a code-to-CID mapping keyed by
// registry-specific CID numbering (tens of thousands of entries per
// registry); reconstructing Unicode from a bare CID additionally requires
// the registry's own CID-to-Unicode correspondence table, which ships
// separately from these CMaps. This package instead applies the
// documented, common simplification used by several lightweight
// extractors: for the "UCS2" CMap variants the 2-byte input code already
// *is* the UCS-2 (BMP) code unit of the character being displayed (these
// CMaps exist specifically so producers can address glyphs directly by
// Unicode value), so ToUnicode(code) = rune(code) directly. This resolves
// the common case -- CJK text addressed via UniGB-UCS2-H with no embedded
// ToUnicode -- without requiring a multi-megabyte compiled-in
// correspondence table. See DESIGN.md for the full tradeoff discussion.
func Predefined(name string) *CMap {
	switch name {
	case "Identity-H", "Identity-V":
		c := New(name)
		c.addCodespace([]byte{0x00, 0x00}, []byte{0xFF, 0xFF})
		return c
	case "UniGB-UCS2-H", "UniGB-UCS2-V",
		"UniJIS-UCS2-H", "UniJIS-UCS2-V",
		"UniCNS-UCS2-H", "UniCNS-UCS2-V",
		"UniKS-UCS2-H", "UniKS-UCS2-V":
		return ucs2Identity(name)
	}
	return nil
}

// ucs2Identity returns a 2-byte-codespace CMap whose ToUnicode is the code
// value itself: the single declared range has lo=0 and a one-rune
// destination of 0, so CMap.ToUnicode's "dst[last] += code - lo" range
// arithmetic yields exactly rune(code) for every code in the BMP.
func ucs2Identity(name string) *CMap {
	c := New(name)
	c.addCodespace([]byte{0x00, 0x00}, []byte{0xFF, 0xFF})
	c.rangeUnicode = append(c.rangeUnicode, unicodeRange{lo: 0, hi: 0xFFFF, dst: []rune{0}})
	return c
}
