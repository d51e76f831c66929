package model

import (
	"bytes"

	"github.com/corpusreader/pdftext/core"
)

// Rectangle is a PDF rectangle object (llx, lly, urx, ury), always
// normalized so Lower <= Upper on both axes regardless of how the producer
// ordered the four numbers.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the rectangle's horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the rectangle's vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

func rectangleFromArray(arr *core.Array) (Rectangle, bool) {
	if arr == nil || arr.Len() != 4 {
		return Rectangle{}, false
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, ok := core.GetNumberAsFloat(arr.Get(i))
		if !ok {
			return Rectangle{}, false
		}
		vals[i] = v
	}
	r := Rectangle{LLX: vals[0], LLY: vals[1], URX: vals[2], URY: vals[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r, true
}

// Page is a single page record (Page data model): MediaBox,
// optional CropBox (defaults to MediaBox), rotation normalized to
// {0,90,180,270}, and its (already resource-inherited) resource
// dictionary. Content streams are concatenated logically and decoded on
// first access.
type Page struct {
	doc   *Document
	dict  *core.Dict
	index int

	MediaBox Rectangle
	CropBox  Rectangle
	Rotation int

	contents    []byte
	contentsErr error
	hasContents bool
}

// Page returns the i-th page (0-based). Pages are built lazily and cached
// on the Document ("lazy page access").
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pageRefs) {
		return nil, &core.ParseError{Reason: "page index out of range"}
	}
	if d.pages == nil {
		d.pages = make([]*Page, len(d.pageRefs))
	}
	if d.pages[i] != nil {
		return d.pages[i], nil
	}
	p, err := newPage(d, d.pageRefs[i], i)
	if err != nil {
		return nil, err
	}
	d.pages[i] = p
	return p, nil
}

func newPage(doc *Document, dict *core.Dict, index int) (*Page, error) {
	p := &Page{doc: doc, dict: dict, index: index}

	mb, _ := core.GetArray(dict.Get("MediaBox"))
	if r, ok := rectangleFromArray(mb); ok {
		p.MediaBox = r
	} else {
		// Fall back to US Letter at 72 dpi, the universally assumed
		// default when a malformed file omits /MediaBox everywhere in the
		// inheritance chain.
		p.MediaBox = Rectangle{0, 0, 612, 792}
		doc.Warnf("page %d: missing /MediaBox, defaulting to Letter", index)
	}

	if cb, ok := core.GetArray(dict.Get("CropBox")); ok {
		if r, ok := rectangleFromArray(cb); ok {
			p.CropBox = r
		} else {
			p.CropBox = p.MediaBox
		}
	} else {
		p.CropBox = p.MediaBox
	}

	rot, _ := core.GetInt(dict.Get("Rotate"))
	rot = ((rot % 360) + 360) % 360
	switch rot {
	case 0, 90, 180, 270:
		p.Rotation = int(rot)
	default:
		p.Rotation = 0
	}
	return p, nil
}

// Index returns the page's 0-based position in the document.
func (p *Page) Index() int { return p.index }

// Dict exposes the page's (resource-inherited) dictionary for components
// that need direct access (contentstream, extractor).
func (p *Page) Dict() *core.Dict { return p.dict }

// Doc returns the owning Document, so the content-stream interpreter and
// extractor can reach font resolution, structure-tree lookups and limits
// without the Page re-exposing each of those individually.
func (p *Page) Doc() *Document { return p.doc }

// Resources returns the page's resource dictionary wrapper.
func (p *Page) Resources() *Resources {
	resDict, _ := core.GetDict(p.dict.Get("Resources"))
	return &Resources{dict: resDict, doc: p.doc}
}

// Annotations returns the page's /Annots array entries as dictionaries.
func (p *Page) Annotations() []*core.Dict {
	arr, _ := core.GetArray(p.dict.Get("Annots"))
	if arr == nil {
		return nil
	}
	out := make([]*core.Dict, 0, arr.Len())
	for _, o := range arr.Elements() {
		if d, ok := core.GetDict(o); ok {
			out = append(out, d)
		}
	}
	return out
}

// Contents returns the page's content stream bytes, decoding and logically
// concatenating /Contents whether it is a single stream or an array of
// streams ("content streams (one or more, concatenated
// logically)"). A newline is inserted between streams so an operator
// split across a stream boundary never fuses with its neighbor.
func (p *Page) Contents() ([]byte, error) {
	if p.hasContents {
		return p.contents, p.contentsErr
	}
	p.contents, p.contentsErr = p.decodeContents()
	p.hasContents = true
	return p.contents, p.contentsErr
}

func (p *Page) decodeContents() ([]byte, error) {
	obj := p.dict.Get("Contents")
	var streams []*core.Stream
	switch vv := derefForContents(obj).(type) {
	case *core.Stream:
		streams = []*core.Stream{vv}
	case *core.Array:
		for _, e := range vv.Elements() {
			if s, ok := core.GetStream(e); ok {
				streams = append(streams, s)
			}
		}
	}
	var buf bytes.Buffer
	for i, s := range streams {
		decoded, err := core.DecodeStream(s, p.doc.limits)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(decoded)
	}
	return buf.Bytes(), nil
}

func derefForContents(obj core.Object) core.Object {
	if ref, ok := obj.(*core.Reference); ok {
		return ref.Resolve()
	}
	return obj
}

// Resources wraps a page or XObject's resource dictionary, exposing
// typed accessors for the categories the Content-Stream Interpreter and
// Font Resolver need ("resources (fonts, xobjects,
// extgstates, colorspaces)").
type Resources struct {
	dict *core.Dict
	doc  *Document
}

// NewResources wraps a raw resource dictionary, for callers (the
// content-stream interpreter's Form XObject handling) that need a Resources
// view of a dictionary not reached through a Page.
func NewResources(dict *core.Dict, doc *Document) *Resources {
	return &Resources{dict: dict, doc: doc}
}

func (r *Resources) subdict(category core.Name, name string) (*core.Dict, bool) {
	if r == nil || r.dict == nil {
		return nil, false
	}
	cat, ok := core.GetDict(r.dict.Get(category))
	if !ok {
		return nil, false
	}
	return core.GetDict(cat.Get(core.Name(name)))
}

// FontDict returns the named entry of /Resources /Font.
func (r *Resources) FontDict(name string) (*core.Dict, bool) {
	return r.subdict("Font", name)
}

// XObject returns the named entry of /Resources /XObject as a Stream (Form
// and Image XObjects are both streams).
func (r *Resources) XObject(name string) (*core.Stream, bool) {
	if r == nil || r.dict == nil {
		return nil, false
	}
	cat, ok := core.GetDict(r.dict.Get("XObject"))
	if !ok {
		return nil, false
	}
	return core.GetStream(cat.Get(core.Name(name)))
}

// Properties returns the named entry of /Resources /Properties: the
// marked-content property dictionaries BDC looks up when its second
// operand is a name rather than an inline dictionary.
func (r *Resources) Properties(name string) (*core.Dict, bool) {
	return r.subdict("Properties", name)
}

// ExtGState returns the named entry of /Resources /ExtGState.
func (r *Resources) ExtGState(name string) (*core.Dict, bool) {
	return r.subdict("ExtGState", name)
}

// ColorSpace returns the named entry of /Resources /ColorSpace.
func (r *Resources) ColorSpace(name string) (core.Object, bool) {
	if r == nil || r.dict == nil {
		return nil, false
	}
	cat, ok := core.GetDict(r.dict.Get("ColorSpace"))
	if !ok {
		return nil, false
	}
	obj := cat.GetResolved(core.Name(name))
	return obj, obj != nil
}
