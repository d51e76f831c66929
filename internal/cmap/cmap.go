// Package cmap implements PDF CMap parsing: embedded ToUnicode CMaps
// (bfchar/bfrange operators) and embedded CID CMaps (cidchar/cidrange,
// used by a Type0 font's /Encoding when it is not one of the predefined
// names), plus a small set of compiled-in predefined CMaps (
// "CMap" data model and code-to-Unicode resolution priority 1 and 3).
package cmap

import (
	"sort"

	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
)

// codespaceRange is one `begincodespacerange` entry: codes between Low and
// High (inclusive, compared byte-wise at a fixed byte width) are NumBytes
// long. A CMap may declare several ranges of different widths, which is how
// variable-width code spaces are expressed ("Character-code
// segmentation").
type codespaceRange struct {
	Low, High []byte
	NumBytes  int
}

// bfEntry maps one source code to a decoded Unicode string (ToUnicode
// bfchar/bfrange may map a single code to more than one code point, e.g.
// ligature expansions supplied by the font itself).
type bfEntry struct {
	Dst []rune
}

// CMap is a parsed character-code-to-destination mapping: either a
// ToUnicode CMap (dst is Unicode text) or a CID CMap (dst is a CID, exposed
// through CIDFor instead of ToUnicode).
type CMap struct {
	Name       string
	codespaces []codespaceRange

	// single-code and ranged entries, kept separate so ranged lookups don't
	// require materializing every code in a potentially huge range.
	singleUnicode map[uint32][]rune
	rangeUnicode  []unicodeRange

	singleCID map[uint32]uint32
	rangeCID  []cidRange
}

type unicodeRange struct {
	lo, hi uint32
	dst    []rune // dst for code==lo; subsequent codes increment the last rune
}

type cidRange struct {
	lo, hi uint32
	cid    uint32
}

// New returns an empty CMap with no codespace ranges (the caller must
// either Parse bytes into it or, for predefined CMaps, rely on the compiled
// tables in predefined.go).
func New(name string) *CMap {
	return &CMap{
		Name:          name,
		singleUnicode: map[uint32][]rune{},
		singleCID:     map[uint32]uint32{},
	}
}

// CodeLength returns the byte length to consume for the next code at buf's
// start, per the declared codespace ranges, defaulting to 1 byte (simple
// font behavior) when no codespace was declared at all, and to the shortest
// declared width when no range matches (lenient fallback so a malformed
// embedded CMap doesn't stall segmentation).
func (c *CMap) CodeLength(buf []byte) int {
	if len(c.codespaces) == 0 {
		return 1
	}
	for _, r := range c.codespaces {
		n := r.NumBytes
		if n > len(buf) {
			continue
		}
		if inRange(buf[:n], r.Low, r.High) {
			return n
		}
	}
	// No exact match: use the shortest declared width, matching
	// real-world tolerant CMap interpreters (a malformed PDF's byte
	// sequence straying slightly outside its declared codespace should not
	// break segmentation for the rest of the string).
	min := c.codespaces[0].NumBytes
	for _, r := range c.codespaces[1:] {
		if r.NumBytes < min {
			min = r.NumBytes
		}
	}
	if min > len(buf) {
		min = len(buf)
	}
	if min == 0 {
		min = 1
	}
	return min
}

func inRange(code, lo, hi []byte) bool {
	if len(code) != len(lo) || len(code) != len(hi) {
		return false
	}
	for i := range code {
		if code[i] < lo[i] || code[i] > hi[i] {
			return false
		}
	}
	return true
}

// DecodeCodes splits buf into (code, byteLength) pairs according to the
// codespace ranges.
func (c *CMap) DecodeCodes(buf []byte) []CodeRun {
	var out []CodeRun
	for i := 0; i < len(buf); {
		n := c.CodeLength(buf[i:])
		if n <= 0 {
			n = 1
		}
		if i+n > len(buf) {
			n = len(buf) - i
		}
		out = append(out, CodeRun{Code: bytesToUint32(buf[i : i+n]), Bytes: n})
		i += n
	}
	return out
}

// CodeRun is one decoded character code and the number of raw bytes it
// consumed (Glyph Record emission walks a content-stream string one
// CodeRun at a time).
type CodeRun struct {
	Code  uint32
	Bytes int
}

func bytesToUint32(b []byte) uint32 {
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v
}

// ToUnicode returns the Unicode text a ToUnicode CMap maps code to.
func (c *CMap) ToUnicode(code uint32) ([]rune, bool) {
	if dst, ok := c.singleUnicode[code]; ok {
		return dst, true
	}
	for _, r := range c.rangeUnicode {
		if code >= r.lo && code <= r.hi {
			dst := append([]rune(nil), r.dst...)
			dst[len(dst)-1] += rune(code - r.lo)
			return dst, true
		}
	}
	return nil, false
}

// CIDFor returns the CID an embedded CID CMap maps code to (used by
// Type0 fonts whose /Encoding is not Identity-H/V and not one of the
// predefined CJK names).
func (c *CMap) CIDFor(code uint32) (uint32, bool) {
	if cid, ok := c.singleCID[code]; ok {
		return cid, true
	}
	for _, r := range c.rangeCID {
		if code >= r.lo && code <= r.hi {
			return r.cid + (code - r.lo), true
		}
	}
	return 0, false
}

func (c *CMap) addCodespace(lo, hi []byte) {
	n := len(lo)
	if len(hi) > n {
		n = len(hi)
	}
	c.codespaces = append(c.codespaces, codespaceRange{Low: lo, High: hi, NumBytes: n})
}

func (c *CMap) addBFChar(code uint32, dst []rune) {
	c.singleUnicode[code] = dst
}

func (c *CMap) addBFRange(lo, hi uint32, dst []rune) {
	if lo == hi {
		c.singleUnicode[lo] = dst
		return
	}
	c.rangeUnicode = append(c.rangeUnicode, unicodeRange{lo: lo, hi: hi, dst: dst})
}

func (c *CMap) addBFRangeArray(lo uint32, dsts [][]rune) {
	for i, d := range dsts {
		c.singleUnicode[lo+uint32(i)] = d
	}
}

func (c *CMap) addCIDChar(code, cid uint32) {
	c.singleCID[code] = cid
}

func (c *CMap) addCIDRange(lo, hi, cid uint32) {
	c.rangeCID = append(c.rangeCID, cidRange{lo: lo, hi: hi, cid: cid})
}

// Parse parses an embedded CMap stream body (ToUnicode or a non-predefined
// CID CMap). The grammar is PostScript-like: codespace/cid/bf sections
// bracketed by begin.../end... keyword pairs, with operands drawn from the
// ordinary PDF object syntax, so the shared lexer/parser primitives are
// reused rather than re-implemented.
func Parse(name string, data []byte) (*CMap, error) {
	c := New(name)
	lex := core.NewLexer(data)
	var stack []core.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == core.TokEOF {
			break
		}
		if tok.Kind == core.TokKeyword {
			switch string(tok.Payload) {
			case "begincodespacerange":
				stack = stack[:0]
			case "endcodespacerange":
				for i := 0; i+1 < len(stack); i += 2 {
					lo, loOK := tokenBytes(stack[i])
					hi, hiOK := tokenBytes(stack[i+1])
					if loOK && hiOK {
						c.addCodespace(lo, hi)
					}
				}
				stack = stack[:0]
			case "begincidchar", "beginbfchar":
				stack = stack[:0]
			case "endcidchar":
				for i := 0; i+1 < len(stack); i += 2 {
					code, ok1 := tokenUint(stack[i])
					cid, ok2 := tokenUint(stack[i+1])
					if ok1 && ok2 {
						c.addCIDChar(code, cid)
					}
				}
				stack = stack[:0]
			case "endbfchar":
				for i := 0; i+1 < len(stack); i += 2 {
					code, ok1 := tokenUint(stack[i])
					dst, ok2 := tokenRunes(stack[i+1])
					if ok1 && ok2 {
						c.addBFChar(code, dst)
					}
				}
				stack = stack[:0]
			case "begincidrange", "beginbfrange":
				stack = stack[:0]
			case "endcidrange":
				for i := 0; i+3 <= len(stack); i += 3 {
					lo, ok1 := tokenUint(stack[i])
					hi, ok2 := tokenUint(stack[i+1])
					cid, ok3 := tokenUint(stack[i+2])
					if ok1 && ok2 && ok3 {
						c.addCIDRange(lo, hi, cid)
					}
				}
				stack = stack[:0]
			case "endbfrange":
				parseBFRange(c, stack)
				stack = stack[:0]
			case "usecmap":
				// The preceding operand names a base CMap to inherit from;
				// it is dropped, and the base CMap's mappings are not merged
				// into this one.
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			default:
				// Unrelated content-stream-shaped keyword (e.g. "def",
				// "dict", "dup", "findresource" from the CMap's PostScript
				// wrapper): ignore, keeping whatever operand stack we have.
			}
			continue
		}
		stack = append(stack, tok)
		if len(stack) > 8192 {
			// A malformed CMap stream without matching end* keywords; drop
			// the oldest operands rather than growing unbounded.
			stack = stack[len(stack)-4096:]
		}
	}
	return c, nil
}

// parseBFRange handles both bfrange forms: "lo hi dst" (dst a string, or an
// array of per-code destination strings).
func parseBFRange(c *CMap, stack []core.Token) {
	i := 0
	for i+3 <= len(stack) {
		lo, ok1 := tokenUint(stack[i])
		hi, ok2 := tokenUint(stack[i+1])
		if !ok1 || !ok2 {
			i++
			continue
		}
		dstTok := stack[i+2]
		if dstTok.Kind == core.TokArrayOpen {
			// Array form: one destination string per code, starting at lo.
			var dsts [][]rune
			j := i + 3
			for ; j < len(stack) && stack[j].Kind != core.TokArrayClose; j++ {
				if d, ok := tokenRunes(stack[j]); ok {
					dsts = append(dsts, d)
				}
			}
			c.addBFRangeArray(lo, dsts)
			i = j + 1
			continue
		}
		dst, ok3 := tokenRunes(dstTok)
		if ok3 {
			c.addBFRange(lo, hi, dst)
		}
		i += 3
	}
}

func tokenBytes(t core.Token) ([]byte, bool) {
	switch t.Kind {
	case core.TokHexString, core.TokLiteralString:
		return t.Payload, true
	}
	return nil, false
}

func tokenUint(t core.Token) (uint32, bool) {
	switch t.Kind {
	case core.TokHexString, core.TokLiteralString:
		return bytesToUint32(t.Payload), true
	case core.TokInteger:
		return uint32(t.IntVal), true
	}
	return 0, false
}

func tokenRunes(t core.Token) ([]rune, bool) {
	switch t.Kind {
	case core.TokHexString, core.TokLiteralString:
		return utf16BEToRunes(t.Payload), true
	case core.TokName:
		common.Log.Debug("bfchar/bfrange destination is a name, not a string: %q", t.Payload)
	}
	return nil, false
}

// utf16BEToRunes decodes a ToUnicode CMap destination string, which per
// ISO 32000-1 9.10.3 is UTF-16BE (no byte-order mark).
func utf16BEToRunes(b []byte) []rune {
	if len(b)%2 == 1 {
		b = append(append([]byte{}, b...), 0)
	}
	var units []uint16
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	var out []rune
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF {
			r := (rune(u-0xD800) << 10) + rune(units[i+1]-0xDC00) + 0x10000
			out = append(out, r)
			i++
			continue
		}
		out = append(out, rune(u))
	}
	return out
}

// sortedCodes is a small test/debug helper returning c's single-code
// ToUnicode domain in ascending order.
func (c *CMap) sortedCodes() []uint32 {
	codes := make([]uint32, 0, len(c.singleUnicode))
	for k := range c.singleUnicode {
		codes = append(codes, k)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
