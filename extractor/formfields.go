package extractor

import "github.com/corpusreader/pdftext/model"

// FormField is the per-page view of an interactive form field: a field
// whose /FT and /V are resolved through the field-name inheritance chain,
// restricted to the widget rectangles that actually sit on this page.
type FormField struct {
	Name     string
	Type     model.FieldType
	Value    string
	ReadOnly bool
	Required bool
	Rects    []model.Rectangle
}

// Field flag bits relevant at the extraction layer (12.7.3.1, Table 221).
const (
	fieldFlagReadOnly = 1 << 0
	fieldFlagRequired = 1 << 1
)

// ExtractFormFields returns the page's form fields: every AcroForm field
// with at least one widget annotation placed on this page, in their
// upright-space rectangles.
func (p *Page) ExtractFormFields() ([]FormField, error) {
	af := p.doc.doc.AcroForm()
	if af == nil {
		return nil, nil
	}
	var out []FormField
	for _, f := range af.Fields {
		var rects []model.Rectangle
		for _, placement := range f.Placements(p.doc.doc) {
			if placement.Page != p.page.Index() {
				continue
			}
			rects = append(rects, uprightRect(placement.Rect, p.page.MediaBox, p.page.Rotation))
		}
		if len(rects) == 0 {
			continue
		}
		out = append(out, FormField{
			Name:     f.Name,
			Type:     f.Type,
			Value:    f.Value,
			ReadOnly: f.Flags&fieldFlagReadOnly != 0,
			Required: f.Flags&fieldFlagRequired != 0,
			Rects:    rects,
		})
	}
	return out, nil
}

func uprightRect(r model.Rectangle, mb model.Rectangle, rotation int) model.Rectangle {
	if rotation == 0 {
		return r
	}
	x0, y0 := uprightPoint(r.LLX, r.LLY, mb, rotation)
	x1, y1 := uprightPoint(r.URX, r.URY, mb, rotation)
	out := model.Rectangle{LLX: x0, LLY: y0, URX: x1, URY: y1}
	if out.LLX > out.URX {
		out.LLX, out.URX = out.URX, out.LLX
	}
	if out.LLY > out.URY {
		out.LLY, out.URY = out.URY, out.LLY
	}
	return out
}
