package model

import "github.com/corpusreader/pdftext/core"

// FieldType is an AcroForm field's /FT value.
type FieldType string

// Recognized field types (12.7.3, ISO 32000-1).
const (
	FieldButton    FieldType = "Btn"
	FieldText      FieldType = "Tx"
	FieldChoice    FieldType = "Ch"
	FieldSignature FieldType = "Sig"
)

// FormField is one entry of the document's interactive form, flattened
// from the field hierarchy: Name is the fully qualified dot-joined name
// (12.7.3.2), Value is its current /V decoded as text where that is
// meaningful (button export values and signature dictionaries are left
// for the caller to interpret further).
type FormField struct {
	Name  string
	Type  FieldType
	Value string
	Flags int64

	widgets []*core.Dict
}

// Widgets returns the field's associated widget annotation dictionaries:
// one for a field with a single, merged-in widget, more for a field
// (typically a radio button group) with several.
func (f *FormField) Widgets() []*core.Dict { return f.widgets }

// WidgetPlacement is one widget annotation's page and on-page rectangle.
type WidgetPlacement struct {
	Page int
	Rect Rectangle
}

// Placements resolves every one of the field's widgets to the page it
// appears on and its annotation rectangle, skipping any widget whose page
// cannot be determined or whose /Rect is malformed.
func (f *FormField) Placements(d *Document) []WidgetPlacement {
	var out []WidgetPlacement
	for _, w := range f.widgets {
		page := d.widgetPage(w)
		if page < 0 {
			continue
		}
		rectArr, _ := core.GetArray(w.Get("Rect"))
		rect, ok := rectangleFromArray(rectArr)
		if !ok {
			continue
		}
		out = append(out, WidgetPlacement{Page: page, Rect: rect})
	}
	return out
}

// AcroForm is the catalog's /AcroForm, flattened to its terminal and
// non-terminal fields.
type AcroForm struct {
	Fields []*FormField
}

const maxFieldDepth = 64

// AcroForm returns the document's interactive form, or nil if the catalog
// carries none.
func (d *Document) AcroForm() *AcroForm {
	afDict, ok := core.GetDict(d.catalog.Get("AcroForm"))
	if !ok {
		return nil
	}
	fieldsArr, _ := core.GetArray(afDict.Get("Fields"))
	if fieldsArr == nil {
		return &AcroForm{}
	}
	af := &AcroForm{}
	visited := map[*core.Dict]bool{}
	for _, o := range fieldsArr.Elements() {
		if dict, ok := core.GetDict(o); ok {
			af.Fields = append(af.Fields, d.flattenField(dict, "", "", "", 0, visited)...)
		}
	}
	return af
}

// flattenField parses one field dictionary and its Kids, inheriting /FT,
// /V and the name chain from the parent the way 12.7.3.2 describes:
// "if this entry is not present in the field's dictionary, it is
// inherited from a higher node". It returns the field itself plus every
// descendant field, terminal and non-terminal, in document order.
func (d *Document) flattenField(dict *core.Dict, parentPath string, parentFT FieldType, parentValue string, depth int, visited map[*core.Dict]bool) []*FormField {
	if depth > maxFieldDepth || visited[dict] {
		return nil
	}
	visited[dict] = true

	partial := decodeTextField(dict, "T")
	name := partial
	if parentPath != "" {
		if partial != "" {
			name = parentPath + "." + partial
		} else {
			name = parentPath
		}
	}

	ft := parentFT
	if t, ok := core.GetName(dict.Get("FT")); ok {
		ft = FieldType(t)
	}
	value := parentValue
	if v, ok := core.GetStringBytes(dict.Get("V")); ok {
		value = DecodePDFTextString(v)
	}
	flags, _ := core.GetInt(dict.Get("Ff"))

	field := &FormField{Name: name, Type: ft, Value: value, Flags: flags}

	subtype, _ := core.GetName(dict.Get("Subtype"))
	if subtype == "Widget" {
		field.widgets = append(field.widgets, dict)
	}

	kidsArr, _ := core.GetArray(dict.Get("Kids"))
	out := []*FormField{field}
	for _, kObj := range kidsArr.Elements() {
		kid, ok := core.GetDict(kObj)
		if !ok {
			continue
		}
		kidSubtype, _ := core.GetName(kid.Get("Subtype"))
		_, kidHasFT := core.GetName(kid.Get("FT"))
		if kidSubtype == "Widget" && !kidHasFT {
			// A widget-only kid is an additional appearance of this same
			// field (radio button group members are the common case), not
			// a separate field.
			field.widgets = append(field.widgets, kid)
			continue
		}
		out = append(out, d.flattenField(kid, name, ft, value, depth+1, visited)...)
	}
	return out
}

// widgetPage resolves a widget annotation's owning page by matching it
// against the page's own /Annots entries -- robust even when the widget
// carries no /P, which 12.5.2 allows when the document has exactly one
// candidate page to search.
func (d *Document) widgetPage(widget *core.Dict) int {
	if pageDict, ok := core.GetDict(widget.Get("P")); ok {
		if idx, ok := d.pageIndexByNode[pageDict]; ok {
			return idx
		}
	}
	for i, pageRef := range d.pageRefs {
		for _, ad := range (&Page{dict: pageRef}).Annotations() {
			if ad == widget {
				return i
			}
		}
	}
	return -1
}
