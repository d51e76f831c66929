package model

import (
	"testing"

	"github.com/corpusreader/pdftext/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textField(name, ft, value string) *core.Dict {
	d := core.NewDict()
	d.Set("T", core.NewLiteralString([]byte(name)))
	if ft != "" {
		d.Set("FT", core.Name(ft))
	}
	if value != "" {
		d.Set("V", core.NewLiteralString([]byte(value)))
	}
	return d
}

func TestFlattenFieldSimpleTextField(t *testing.T) {
	doc := &Document{}
	field := textField("name", "Tx", "Jane Doe")

	out := doc.flattenField(field, "", "", "", 0, map[*core.Dict]bool{})
	require.Len(t, out, 1)
	assert.Equal(t, "name", out[0].Name)
	assert.Equal(t, FieldText, out[0].Type)
	assert.Equal(t, "Jane Doe", out[0].Value)
}

func TestFlattenFieldInheritsFTAndBuildsDottedNames(t *testing.T) {
	doc := &Document{}
	parent := textField("address", "Tx", "")
	kid := textField("city", "", "Springfield")
	kidsArr := core.NewArray(kid)
	parent.Set("Kids", kidsArr)

	out := doc.flattenField(parent, "", "", "", 0, map[*core.Dict]bool{})
	require.Len(t, out, 2)
	assert.Equal(t, "address", out[0].Name)
	assert.Equal(t, "address.city", out[1].Name)
	assert.Equal(t, FieldText, out[1].Type)
	assert.Equal(t, "Springfield", out[1].Value)
}

func TestFlattenFieldTreatsWidgetOnlyKidsAsSameField(t *testing.T) {
	doc := &Document{}
	parent := textField("choice", "Btn", "")
	widget1 := core.NewDict()
	widget1.Set("Subtype", core.Name("Widget"))
	widget2 := core.NewDict()
	widget2.Set("Subtype", core.Name("Widget"))
	parent.Set("Kids", core.NewArray(widget1, widget2))

	out := doc.flattenField(parent, "", "", "", 0, map[*core.Dict]bool{})
	require.Len(t, out, 1)
	assert.Len(t, out[0].Widgets(), 2)
}

func TestFlattenFieldStopsOnCycle(t *testing.T) {
	doc := &Document{}
	a := textField("a", "Tx", "")
	a.Set("Kids", core.NewArray(a)) // self-referential, malformed input

	out := doc.flattenField(a, "", "", "", 0, map[*core.Dict]bool{})
	assert.Len(t, out, 1)
}

func TestWidgetPageFallsBackToAnnotsScan(t *testing.T) {
	page0 := core.NewDict()
	widget := core.NewDict()
	widget.Set("Subtype", core.Name("Widget"))
	page0.Set("Annots", core.NewArray(widget))

	doc := &Document{pageRefs: []*core.Dict{page0}}
	assert.Equal(t, 0, doc.widgetPage(widget))
}

func TestWidgetPageUnresolvedReturnsNegativeOne(t *testing.T) {
	doc := &Document{pageRefs: []*core.Dict{core.NewDict()}}
	widget := core.NewDict()
	assert.Equal(t, -1, doc.widgetPage(widget))
}
