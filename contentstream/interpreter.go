package contentstream

import (
	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
	"github.com/corpusreader/pdftext/internal/transform"
	"github.com/corpusreader/pdftext/model"
	"golang.org/x/xerrors"
)

// maxXObjectDepth bounds Form XObject Do recursion depth.
const maxXObjectDepth = 32

// gstate is the portion of graphics state q/Q saves and restores: CTM and
// fill color only. Text state lives within a BT…ET bracket instead, and
// does not survive a q/Q pair.
type gstate struct {
	ctm  transform.Matrix
	fill Color
}

// textState holds the Tc/Tw/Tz/TL/Tf/Tr/Ts parameters plus Tm/Tlm. It is
// fully reinitialized at each BT, diverging from ISO 32000-1's "text state
// persists across BT/ET" rule.
type textState struct {
	tm, tlm transform.Matrix

	font     *model.Font
	size     float64
	charSpace, wordSpace, leading, rise float64
	hscale   float64 // percent
	render   int64
}

func defaultTextState() textState {
	return textState{
		tm:     transform.IdentityMatrix(),
		tlm:    transform.IdentityMatrix(),
		hscale: 100,
	}
}

// markedContent is one entry of the BMC/BDC nesting stack.
type markedContent struct {
	isArtifact      bool
	artifactSubtype model.ArtifactSubtype
	mcid            int // -1 if this scope didn't carry one
	hasActualText   bool
	actualText      string
	actualTextUsed  bool
}

// Interpreter walks a page's content stream(s), maintaining graphics and
// text state, and accumulates the Glyph Records text-showing operators
// emit.
type Interpreter struct {
	doc *model.Document

	maxDepth            int
	maxDecompressedSize int64

	ctm  transform.Matrix
	fill Color
	gs   []gstate

	inText bool
	ts     textState

	mc []markedContent

	records []GlyphRecord
}

// New returns an Interpreter bound to doc, the source of font resolution
// and stream-decoding limits for any Form XObjects encountered, with the
// default Form XObject recursion ceiling.
func New(doc *model.Document) *Interpreter {
	return &Interpreter{doc: doc, maxDepth: maxXObjectDepth}
}

// SetLimits overrides the Form XObject recursion ceiling and the
// decompressed-stream size cap for this interpreter's next Run, letting a
// single extraction call tighten (or loosen) the interpreter's built-in
// recursion ceiling (maxXObjectDepth) and the document's open-time
// decompression cap. A zero value leaves the corresponding default in place.
func (ip *Interpreter) SetLimits(recursionLimit uint32, maxDecompressedSize uint64) {
	if recursionLimit > 0 {
		ip.maxDepth = int(recursionLimit)
	}
	if maxDecompressedSize > 0 {
		ip.maxDecompressedSize = int64(maxDecompressedSize)
	}
}

// Run interprets page's content stream(s) and returns the Glyph Records
// produced, in content-stream order.
func (ip *Interpreter) Run(page *model.Page) ([]GlyphRecord, error) {
	content, err := page.Contents()
	if err != nil {
		return nil, err
	}
	ip.ctm = transform.IdentityMatrix()
	ip.fill = Color{}
	ip.gs = nil
	ip.inText = false
	ip.mc = nil
	ip.records = nil

	if err := ip.execute(content, page.Resources(), 0); err != nil {
		return ip.records, err
	}
	return ip.records, nil
}

func (ip *Interpreter) execute(content []byte, res *model.Resources, depth int) error {
	if depth > ip.maxDepth {
		return &core.RecursionError{Ceiling: ip.maxDepth}
	}
	tok := newTokenizer(content)
	for {
		op, ok, err := tok.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		ip.apply(op, res, depth)
	}
}

// apply dispatches one operation. Malformed or unsupported operators are
// logged and skipped rather than aborting the whole page (Font and
// Structure errors are soft; an interpreter that stopped on every odd
// operator would make far more real-world files unreadable than one that
// tolerates them).
func (ip *Interpreter) apply(op Operation, res *model.Resources, depth int) {
	switch op.Operator {
	case "q":
		ip.gs = append(ip.gs, gstate{ctm: ip.ctm, fill: ip.fill})
	case "Q":
		if n := len(ip.gs); n > 0 {
			top := ip.gs[n-1]
			ip.gs = ip.gs[:n-1]
			ip.ctm, ip.fill = top.ctm, top.fill
		}
	case "cm":
		if m, ok := matrixOperand(op.Operands); ok {
			ip.ctm.Concat(m)
		}
	case "g":
		if v, ok := num(op.Operands, 0); ok {
			ip.fill = Color{v, v, v}
		}
	case "rg":
		if r, ok := num(op.Operands, 0); ok {
			g, _ := num(op.Operands, 1)
			b, _ := num(op.Operands, 2)
			ip.fill = Color{r, g, b}
		}
	case "k":
		if c, ok := num(op.Operands, 0); ok {
			m, _ := num(op.Operands, 1)
			y, _ := num(op.Operands, 2)
			kk, _ := num(op.Operands, 3)
			ip.fill = cmykToRGB(c, m, y, kk)
		}
	case "sc", "scn":
		ip.applyGenericColor(op.Operands)

	case "BT":
		ip.inText = true
		ip.ts = defaultTextState()
	case "ET":
		ip.inText = false

	case "Tf":
		if len(op.Operands) >= 2 {
			if name, ok := core.GetName(op.Operands[0]); ok {
				if dict, ok := res.FontDict(name); ok {
					f, err := ip.doc.Font(dict)
					switch {
					case err == nil:
						ip.ts.font = f
					case xerrors.Is(err, core.ErrNotSupported):
						// A font this core cannot drive (Type3): leave the
						// prior font in place rather than failing the whole
						// page over one unsupported resource.
						common.Log.Debug("font %q: %v", name, err)
					default:
						ip.doc.Warnf("font %q: %v", name, err)
					}
				}
			}
			ip.ts.size, _ = num(op.Operands, 1)
		}
	case "Tc":
		ip.ts.charSpace, _ = num(op.Operands, 0)
	case "Tw":
		ip.ts.wordSpace, _ = num(op.Operands, 0)
	case "Tz":
		ip.ts.hscale, _ = num(op.Operands, 0)
	case "TL":
		ip.ts.leading, _ = num(op.Operands, 0)
	case "Ts":
		ip.ts.rise, _ = num(op.Operands, 0)
	case "Tr":
		if v, ok := num(op.Operands, 0); ok {
			ip.ts.render = int64(v)
		}

	case "Td":
		tx, _ := num(op.Operands, 0)
		ty, _ := num(op.Operands, 1)
		ip.translateLine(tx, ty)
	case "TD":
		tx, _ := num(op.Operands, 0)
		ty, _ := num(op.Operands, 1)
		ip.ts.leading = -ty
		ip.translateLine(tx, ty)
	case "Tm":
		if m, ok := matrixOperand(op.Operands); ok {
			ip.ts.tm = m
			ip.ts.tlm = m
		}
	case "T*":
		ip.translateLine(0, -ip.ts.leading)

	case "Tj":
		if len(op.Operands) >= 1 {
			if b, ok := core.GetStringBytes(op.Operands[0]); ok {
				ip.showText(b)
			}
		}
	case "'":
		ip.translateLine(0, -ip.ts.leading)
		if len(op.Operands) >= 1 {
			if b, ok := core.GetStringBytes(op.Operands[0]); ok {
				ip.showText(b)
			}
		}
	case "\"":
		if len(op.Operands) >= 3 {
			ip.ts.wordSpace, _ = num(op.Operands, 0)
			ip.ts.charSpace, _ = num(op.Operands, 1)
			ip.translateLine(0, -ip.ts.leading)
			if b, ok := core.GetStringBytes(op.Operands[2]); ok {
				ip.showText(b)
			}
		}
	case "TJ":
		if len(op.Operands) >= 1 {
			if arr, ok := core.GetArray(op.Operands[0]); ok {
				ip.showTextArray(arr)
			}
		}

	case "BMC":
		tag, _ := core.GetName(firstOperand(op.Operands))
		ip.pushMarkedContent(tag, nil, res)
	case "BDC":
		tag, _ := core.GetName(firstOperand(op.Operands))
		var propsDict *core.Dict
		if len(op.Operands) >= 2 {
			if d, ok := core.GetDict(op.Operands[1]); ok {
				propsDict = d
			} else if name, ok := core.GetName(op.Operands[1]); ok {
				propsDict, _ = res.Properties(name)
			}
		}
		ip.pushMarkedContent(tag, propsDict, res)
	case "EMC":
		if n := len(ip.mc); n > 0 {
			ip.mc = ip.mc[:n-1]
		}
	case "MP", "DP":
		// Point markers carry no content scope; nothing to show-text can
		// attach to, so there's nothing to record.

	case "Do":
		if name, ok := core.GetName(firstOperand(op.Operands)); ok {
			ip.doXObject(name, res, depth)
		}
	}
}

func firstOperand(ops []core.Object) core.Object {
	if len(ops) == 0 {
		return nil
	}
	return ops[0]
}

func num(ops []core.Object, i int) (float64, bool) {
	if i < 0 || i >= len(ops) {
		return 0, false
	}
	return core.GetNumberAsFloat(ops[i])
}

func matrixOperand(ops []core.Object) (transform.Matrix, bool) {
	if len(ops) < 6 {
		return transform.Matrix{}, false
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, ok := core.GetNumberAsFloat(ops[i])
		if !ok {
			return transform.Matrix{}, false
		}
		vals[i] = v
	}
	return transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), true
}

func cmykToRGB(c, m, y, k float64) Color {
	return Color{
		R: (1 - c) * (1 - k),
		G: (1 - m) * (1 - k),
		B: (1 - y) * (1 - k),
	}
}

// applyGenericColor handles sc/scn, whose arity depends on the active
// color space (1 = gray/Indexed/Separation, 3 = RGB-like, 4 = CMYK-like); a
// trailing name operand names a pattern, which has no flat color and is
// left at the prior fill color.
func (ip *Interpreter) applyGenericColor(ops []core.Object) {
	nums := ops
	if len(ops) > 0 {
		if _, isName := ops[len(ops)-1].(core.Name); isName {
			nums = ops[:len(ops)-1]
		}
	}
	switch len(nums) {
	case 1:
		v, _ := core.GetNumberAsFloat(nums[0])
		ip.fill = Color{v, v, v}
	case 3:
		r, _ := core.GetNumberAsFloat(nums[0])
		g, _ := core.GetNumberAsFloat(nums[1])
		b, _ := core.GetNumberAsFloat(nums[2])
		ip.fill = Color{r, g, b}
	case 4:
		c, _ := core.GetNumberAsFloat(nums[0])
		m, _ := core.GetNumberAsFloat(nums[1])
		y, _ := core.GetNumberAsFloat(nums[2])
		k, _ := core.GetNumberAsFloat(nums[3])
		ip.fill = cmykToRGB(c, m, y, k)
	}
}

// translateLine implements Td/TD/T*'s shared step: Tm = Tlm = [1 0 0 1 tx
// ty] · Tlm.
func (ip *Interpreter) translateLine(tx, ty float64) {
	m := ip.ts.tlm
	m.Concat(transform.TranslationMatrix(tx, ty))
	ip.ts.tlm = m
	ip.ts.tm = m
}

func (ip *Interpreter) pushMarkedContent(tag string, props *core.Dict, res *model.Resources) {
	entry := markedContent{mcid: -1}
	if n := len(ip.mc); n > 0 {
		entry.isArtifact = ip.mc[n-1].isArtifact
		entry.artifactSubtype = ip.mc[n-1].artifactSubtype
	}
	if tag == "Artifact" {
		entry.isArtifact = true
		if props != nil {
			if sub, ok := core.GetName(props.Get("Subtype")); ok {
				switch st := model.ArtifactSubtype(sub); st {
				case model.ArtifactPagination, model.ArtifactLayout, model.ArtifactBackground:
					entry.artifactSubtype = st
				default:
					entry.artifactSubtype = model.ArtifactOther
				}
			}
		}
	}
	if props != nil {
		if mcid, ok := core.GetInt(props.Get("MCID")); ok {
			entry.mcid = int(mcid)
		}
		if b, ok := core.GetStringBytes(props.Get("ActualText")); ok {
			entry.hasActualText = true
			entry.actualText = model.DecodePDFTextString(b)
		}
	}
	ip.mc = append(ip.mc, entry)
}

func (ip *Interpreter) currentMCID() int {
	for i := len(ip.mc) - 1; i >= 0; i-- {
		if ip.mc[i].mcid != -1 {
			return ip.mc[i].mcid
		}
	}
	return -1
}

func (ip *Interpreter) currentArtifact() (bool, model.ArtifactSubtype) {
	if n := len(ip.mc); n > 0 {
		return ip.mc[n-1].isArtifact, ip.mc[n-1].artifactSubtype
	}
	return false, ""
}

// activeActualText returns the nearest enclosing scope's /ActualText, and a
// pointer to its "already emitted" flag so showText can emit it exactly
// once per scope instead of once per glyph ("/ActualText
// substitutes text at emission time").
func (ip *Interpreter) activeActualText() (string, *bool, bool) {
	for i := len(ip.mc) - 1; i >= 0; i-- {
		if ip.mc[i].hasActualText {
			return ip.mc[i].actualText, &ip.mc[i].actualTextUsed, true
		}
	}
	return "", nil, false
}

func (ip *Interpreter) showTextArray(arr *core.Array) {
	for _, el := range arr.Elements() {
		if b, ok := core.GetStringBytes(el); ok {
			ip.showText(b)
			continue
		}
		if adj, ok := core.GetNumberAsFloat(el); ok {
			ip.applyTJAdjust(adj)
		}
	}
}

// applyTJAdjust moves Tm by a TJ array numeric offset, with no glyph
// emitted ("numbers are horizontal offsets ... subtracted from
// the x-coordinate").
func (ip *Interpreter) applyTJAdjust(adjustThousandths float64) {
	if ip.ts.font == nil {
		return
	}
	tx := (-adjustThousandths / 1000.0) * ip.ts.size * (ip.ts.hscale / 100.0)
	m := ip.ts.tm
	m.Concat(transform.TranslationMatrix(tx, 0))
	ip.ts.tm = m
}

func (ip *Interpreter) showText(s []byte) {
	if !ip.inText || ip.ts.font == nil {
		return
	}
	font := ip.ts.font
	mcid := ip.currentMCID()
	isArtifact, artifactSubtype := ip.currentArtifact()
	actualText, actualTextUsed, hasActualText := ip.activeActualText()

	for _, run := range font.DecodeCodes(s) {
		scale := transform.NewMatrix(ip.ts.size*ip.ts.hscale/100, 0, 0, ip.ts.size, 0, ip.ts.rise)
		trm := ip.ctm
		trm.Concat(ip.ts.tm)
		trm.Concat(scale)

		w0 := font.Width(run.Code) / 1000.0
		wordSpace := 0.0
		if font.WordSpacingApplies(run.Code, run.Bytes) {
			wordSpace = ip.ts.wordSpace
		}
		tx := (w0*ip.ts.size + ip.ts.charSpace + wordSpace) * (ip.ts.hscale / 100.0)

		x, y := trm.Transform(0, 0)
		rec := GlyphRecord{
			X: x, Y: y,
			Advance:  tx,
			FontSize: trm.ScalingFactorY(),
			Rotation: trm.Angle(),
			Color:    ip.fill,
			Font:     font,
			MCID:     mcid,
			IsArtifact:      isArtifact,
			ArtifactSubtype: artifactSubtype,
			Invisible: ip.ts.render == 3,
			Bold:   font.IsBold(),
			Italic: font.IsItalic(),
			Quad:   glyphQuad(trm),
		}

		if hasActualText {
			if !*actualTextUsed {
				rec.Text = actualText
				rec.FromActualText = true
				*actualTextUsed = true
				ip.records = append(ip.records, rec)
			}
			// Subsequent glyphs in the same ActualText scope contribute no
			// further text, but still advance Tm below.
		} else {
			rec.Text = font.ToUnicode(run.Code)
			ip.records = append(ip.records, rec)
		}

		m := ip.ts.tm
		m.Concat(transform.TranslationMatrix(tx, 0))
		ip.ts.tm = m
	}
}

// glyphQuad approximates the glyph's unit-square bounding box (text space
// 0,0 to 1,1 em, before the size scale baked into trm) transformed to page
// space, giving a faithful quad for rotated or sheared text.
func glyphQuad(trm transform.Matrix) Quad {
	corners := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	var q Quad
	for i, c := range corners {
		x, y := trm.Transform(c[0], c[1])
		q[i] = [2]float64{x, y}
	}
	return q
}

func (ip *Interpreter) doXObject(name string, res *model.Resources, depth int) {
	stream, ok := res.XObject(name)
	if !ok {
		return
	}
	subtype, _ := core.GetName(stream.Get("Subtype"))
	if subtype != "Form" {
		return // Image XObjects carry no text
	}
	limits := ip.doc.Limits()
	if ip.maxDecompressedSize > 0 {
		limits.MaxDecompressedSize = ip.maxDecompressedSize
	}
	decoded, err := core.DecodeStream(stream, limits)
	if err != nil {
		ip.doc.Warnf("XObject %q: %v", name, err)
		return
	}
	formRes := res
	if fr, ok := core.GetDict(stream.Get("Resources")); ok {
		formRes = model.NewResources(fr, ip.doc)
	}

	saved := gstate{ctm: ip.ctm, fill: ip.fill}
	if m, ok := matrixOperand(arrayToOperands(stream.Get("Matrix"))); ok {
		ip.ctm.Concat(m)
	}
	if err := ip.execute(decoded, formRes, depth+1); err != nil {
		ip.doc.Warnf("XObject %q: %v", name, err)
	}
	ip.ctm, ip.fill = saved.ctm, saved.fill
}

func arrayToOperands(o core.Object) []core.Object {
	arr, ok := core.GetArray(o)
	if !ok {
		return nil
	}
	return arr.Elements()
}
