package extractor

import (
	"strings"
	"unicode"
)

// ligatures are the Adobe-standard ligatures expanded to their decomposed
// letters when no /ActualText already provided the expansion.
var ligatures = map[string]string{
	"ﬀ": "ff",
	"ﬁ": "fi",
	"ﬂ": "fl",
	"ﬃ": "ffi",
	"ﬄ": "ffl",
	"ﬆ": "st",
}

// expandLigatures runs Stage F over a block's words in place. A word whose
// text came from /ActualText is left untouched -- ActualText, when
// present, always wins.
func expandLigatures(blocks []Block) {
	for bi := range blocks {
		for li := range blocks[bi].Lines {
			words := blocks[bi].Lines[li].Words
			for wi := range words {
				if words[wi].fromActualText {
					continue
				}
				words[wi].Text = replaceLigatures(words[wi].Text)
			}
		}
	}
}

func replaceLigatures(s string) string {
	if !strings.ContainsAny(s, "ﬀﬁﬂﬃﬄﬆ") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if expanded, ok := ligatures[string(r)]; ok {
			b.WriteString(expanded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// reconstructHyphenation runs Stage E over a block's lines, in their
// current (reading) order: when a line's last word ends with a hard
// hyphen (U+002D) or soft hyphen (U+00AD) and the following line starts
// with a lowercase letter, the hyphen is dropped and the two word
// fragments are joined into the first line's last word. A hard hyphen is
// kept, and the fragments left unjoined, when the left fragment looks
// capitalized -- the common case of a compound proper noun rather than a
// line-wrapped word; a soft hyphen is dropped and joined either way.
func reconstructHyphenation(lines []Line) []Line {
	for i := 0; i+1 < len(lines); i++ {
		cur, next := &lines[i], &lines[i+1]
		if len(cur.Words) == 0 || len(next.Words) == 0 {
			continue
		}
		lastWord := &cur.Words[len(cur.Words)-1]
		firstWord := &next.Words[0]
		if firstWord.fromActualText || lastWord.fromActualText {
			continue
		}
		left, hyphen, ok := trimTrailingHyphen(lastWord.Text)
		if !ok {
			continue
		}
		if left == "" || !startsLowercase(firstWord.Text) {
			continue
		}
		if isCapitalized(left) && hyphen == '-' {
			continue // likely a genuine compound word, not a line wrap
		}
		lastWord.Text = left + firstWord.Text
		lastWord.BBox = unionRect(lastWord.BBox, firstWord.BBox)
		next.Words = next.Words[1:]
	}
	out := lines[:0]
	for _, l := range lines {
		if len(l.Words) == 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func trimTrailingHyphen(s string) (string, rune, bool) {
	if s == "" {
		return s, 0, false
	}
	runes := []rune(s)
	last := runes[len(runes)-1]
	if last == '-' || last == '­' {
		return string(runes[:len(runes)-1]), last, true
	}
	return s, 0, false
}

func startsLowercase(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// replacementCharThreshold is the share of output characters U+FFFD may
// reach before a caller is warned that the font pipeline likely failed
// for this page instead of the page just being mostly punctuation.
const replacementCharThreshold = 0.3

// checkReplacementCharShare scans text and reports (via warn) when U+FFFD
// makes up more than replacementCharThreshold of it. The caller still gets
// back whatever text was recovered; this is a diagnostic, not a failure.
func checkReplacementCharShare(text string, warn func(string, ...interface{})) {
	if text == "" {
		return
	}
	total, bad := 0, 0
	for _, r := range text {
		total++
		if r == '�' {
			bad++
		}
	}
	if total > 0 && float64(bad)/float64(total) > replacementCharThreshold {
		warn("extraction: %.0f%% of output is U+FFFD, font decoding likely failed for this page", 100*float64(bad)/float64(total))
	}
}
