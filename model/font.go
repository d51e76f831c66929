package model

import (
	"strings"

	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
	"github.com/corpusreader/pdftext/internal/cmap"
	"github.com/corpusreader/pdftext/internal/glyphlist"
	"golang.org/x/xerrors"
)

// ErrType3FontNotSupported is returned by BuildFont for a /Type3 font:
// its glyphs are content-stream procedures, not widths and an encoding,
// so this core has nothing to drive code_to_unicode/code_to_width with.
// Wrapped around core.ErrNotSupported so callers can classify it with
// xerrors.Is without a type switch.
var ErrType3FontNotSupported = xerrors.Errorf("Type3 fonts are not supported: %w", core.ErrNotSupported)

// FontSubtype enumerates the /Subtype values a font dictionary carries.
type FontSubtype string

// Recognized font subtypes.
const (
	SubtypeType0    FontSubtype = "Type0"
	SubtypeType1    FontSubtype = "Type1"
	SubtypeTrueType FontSubtype = "TrueType"
	SubtypeType3    FontSubtype = "Type3"
	SubtypeMMType1  FontSubtype = "MMType1"
)

// Font is a flat capability set -- decode_code_sequence, code_to_unicode,
// code_to_width, is_bold, is_italic -- rather than a per-subtype interface
// hierarchy. Construction (BuildFont) selects the appropriate internal
// implementation per subtype; callers never branch on subtype themselves.
type Font struct {
	Subtype  FontSubtype
	BaseFont string

	simple    *simpleFont    // set for Type1/TrueType/MMType1; BuildFont rejects Type3
	composite *compositeFont // set for Type0

	bold, italic bool

	// warnedMissingUnicode guards the single "no code->Unicode path" debug
	// log line per font: font errors are soft and logged once, not per-glyph.
	warnedMissingUnicode bool
}

// CodeRun re-exports cmap.CodeRun: one decoded character code plus the
// number of raw content-stream bytes it consumed.
type CodeRun = cmap.CodeRun

// DecodeCodes segments a Tj/TJ string into character codes: 1 byte per
// code for simple fonts, the descendant CMap's declared code-space widths
// for Type0 fonts.
func (f *Font) DecodeCodes(s []byte) []CodeRun {
	if f.composite != nil {
		return f.composite.cmap.DecodeCodes(s)
	}
	out := make([]CodeRun, len(s))
	for i, b := range s {
		out[i] = CodeRun{Code: uint32(b), Bytes: 1}
	}
	return out
}

// ToUnicode resolves a character code to Unicode text, applying this
// priority order: ToUnicode CMap, then Encoding/Differences + AGL, then
// predefined CMap identity, then U+FFFD. The first unmapped code of a font
// is logged at debug level; nothing is added to the document's Warnings.
func (f *Font) ToUnicode(code uint32) string {
	if f.simple != nil {
		if s, ok := f.simple.toUnicode(code); ok {
			return s
		}
	}
	if f.composite != nil {
		if s, ok := f.composite.toUnicode(code); ok {
			return s
		}
	}
	if !f.warnedMissingUnicode {
		f.warnedMissingUnicode = true
		common.Log.Debug("font %q: no code->Unicode path for code %#x, emitting U+FFFD", f.BaseFont, code)
	}
	return "�"
}

// Width returns code's advance width in thousandths of an em (font-design
// units).
func (f *Font) Width(code uint32) float64 {
	if f.simple != nil {
		return f.simple.width(code)
	}
	if f.composite != nil {
		return f.composite.width(code)
	}
	return 0
}

// WordSpacingApplies reports whether the Tw (word spacing) operator
// applies to this code: word spacing applies only to single-byte 0x20 in
// simple fonts.
func (f *Font) WordSpacingApplies(code uint32, byteLen int) bool {
	return f.simple != nil && byteLen == 1 && code == 0x20
}

// IsBold reports the font's bold-weight classification.
func (f *Font) IsBold() bool { return f.bold }

// IsItalic reports the font's italic-flag classification.
func (f *Font) IsItalic() bool { return f.italic }

// Font resolves and caches the Font for a /Resources /Font entry, keyed by
// the dictionary's identity so repeated lookups of the same font across
// many content streams (the common case: a handful of fonts used on every
// page) build it once.
func (d *Document) Font(dict *core.Dict) (*Font, error) {
	if f, ok := d.fontCache[dict]; ok {
		return f, nil
	}
	f, err := BuildFont(d, dict)
	if err != nil {
		d.Warnf("font: %v", err)
		return nil, err
	}
	d.fontCache[dict] = f
	return f, nil
}

// BuildFont constructs a Font from a font dictionary, dispatching to the
// simple-font or composite-font builder. doc is used to
// chase indirect references (Encoding, ToUnicode, DescendantFonts) and to
// record soft-failure warnings.
func BuildFont(doc *Document, dict *core.Dict) (*Font, error) {
	subtype, _ := core.GetName(dict.Get("Subtype"))
	baseFont, _ := core.GetName(dict.Get("BaseFont"))
	f := &Font{Subtype: FontSubtype(subtype), BaseFont: baseFont}

	descriptor, _ := core.GetDict(dict.Get("FontDescriptor"))
	flags, hasFlags := int64(0), false
	if descriptor != nil {
		flags, hasFlags = core.GetInt(descriptor.Get("Flags"))
	}
	if hasFlags {
		f.italic = flags&(1<<6) != 0 // bit 7 (0-indexed bit 6): Italic
	}
	f.bold = classifyBoldFromWeight(descriptor) || looksBoldByName(baseFont)
	f.italic = f.italic || looksItalicByName(baseFont)

	switch FontSubtype(subtype) {
	case SubtypeType3:
		return nil, ErrType3FontNotSupported
	case SubtypeType0:
		descFont, err := descendantCIDFont(doc, dict)
		if err != nil {
			return nil, err
		}
		cf, err := buildCompositeFont(doc, dict, descFont)
		if err != nil {
			return nil, err
		}
		f.composite = cf
	default:
		sf, err := buildSimpleFont(doc, dict, descriptor)
		if err != nil {
			return nil, err
		}
		f.simple = sf
	}
	return f, nil
}

func descendantCIDFont(doc *Document, type0Dict *core.Dict) (*core.Dict, error) {
	arr, ok := core.GetArray(type0Dict.Get("DescendantFonts"))
	if !ok || arr.Len() == 0 {
		return nil, &core.ParseError{Reason: "Type0 font missing /DescendantFonts"}
	}
	d, ok := core.GetDict(arr.Get(0))
	if !ok {
		return nil, &core.ParseError{Reason: "Type0 /DescendantFonts[0] is not a dictionary"}
	}
	return d, nil
}

// classifyBoldFromWeight reads /FontDescriptor /StemV or /FontWeight: a
// StemV of 140 or more, or a named weight of Bold/Black/Heavy class (>=600
// on the common 100-900 OpenType scale), counts as bold.
func classifyBoldFromWeight(descriptor *core.Dict) bool {
	if descriptor == nil {
		return false
	}
	if stemV, ok := core.GetNumberAsFloat(descriptor.Get("StemV")); ok && stemV >= 140 {
		return true
	}
	if weight, ok := core.GetNumberAsFloat(descriptor.Get("FontWeight")); ok && weight >= 600 {
		return true
	}
	return false
}

// looksBoldByName / looksItalicByName fall back to matching the PostScript
// name for substrings like Bold, Black, Italic, Oblique, for fonts whose
// descriptor flags don't say.
func looksBoldByName(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range []string{"bold", "black", "heavy"} {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

func looksItalicByName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
}

// glyphNameToRune resolves a /Differences glyph name via the Adobe Glyph
// List.
func glyphNameToRune(name string) (rune, bool) {
	return glyphlist.ToRune(name)
}

// buildEmbeddedOrPredefinedCMap resolves a Type0 font's /Encoding, which is
// either a predefined CMap name (Identity-H/V, UniGB-UCS2-H, ...) or a
// stream containing an embedded CMap.
func buildEmbeddedOrPredefinedCMap(doc *Document, encObj core.Object) (*cmap.CMap, error) {
	if name, ok := core.GetName(encObj); ok {
		if c := cmap.Predefined(name); c != nil {
			return c, nil
		}
		// Unknown predefined name: fall back to a 2-byte Identity
		// codespace so segmentation still behaves sanely even though
		// Unicode resolution for it will rely entirely on ToUnicode.
		common.Log.Debug("unrecognized predefined CMap name %q; assuming 2-byte Identity codespace", name)
		return cmap.Predefined("Identity-H"), nil
	}
	if stream, ok := core.GetStream(encObj); ok {
		decoded, err := core.DecodeStream(stream, doc.limits)
		if err != nil {
			return nil, err
		}
		return cmap.Parse("embedded", decoded)
	}
	return nil, &core.ParseError{Reason: "Type0 font /Encoding is neither a name nor a stream"}
}
