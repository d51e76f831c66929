package extractor

import (
	"unicode"

	"github.com/unidoc/garabic"
)

// reshapeArabic applies Arabic contextual letter shaping (initial, medial,
// final and isolated forms) plus bidi reordering to a word's text when it
// contains any Arabic-script rune. PDF producers commonly store Arabic
// text in logical (unshaped) order and rely on the viewer to shape it for
// display; text extracted straight off a Tj string is therefore logical
// order too, and needs the same reshaping a renderer would apply before
// it reads naturally.
func reshapeArabic(text string) string {
	if !containsArabic(text) {
		return text
	}
	return garabic.Shape(text)
}

func containsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
