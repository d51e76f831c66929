package model

import (
	"testing"

	"github.com/corpusreader/pdftext/core"
	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"
)

func TestBuildFontRejectsType3(t *testing.T) {
	dict := core.NewDict()
	dict.Set("Subtype", core.Name("Type3"))
	dict.Set("BaseFont", core.Name("Custom+Glyphs"))

	_, err := BuildFont(&Document{}, dict)
	assert.ErrorIs(t, err, ErrType3FontNotSupported)
	assert.True(t, xerrors.Is(err, core.ErrNotSupported))
}
