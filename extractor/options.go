package extractor

import "github.com/corpusreader/pdftext/model"

// Options configures a single Page.ExtractText / ExtractBlocks /
// ExtractGlyphs call. The zero value is not ready to use; start from
// DefaultOptions.
type Options struct {
	// PreserveLayout selects geometric order with position hints over the
	// default logical (reading) order: columns collapsed to a linear
	// sequence but line breaks retained.
	PreserveLayout bool

	// DetectHeadings populates each block's heading-level hint from
	// font-size clustering: the one to three largest unique sizes on the
	// page become H1..H3.
	DetectHeadings bool

	// IncludeArtifacts, when true, retains glyphs inside /Artifact marked
	// content instead of dropping them. ArtifactSubtypes, if non-empty,
	// further restricts which artifact subtypes are retained.
	IncludeArtifacts bool
	ArtifactSubtypes map[model.ArtifactSubtype]bool

	// RecursionLimit bounds Form XObject Do recursion for this call.
	// MaxDecompressedSize bounds any stream this call decodes (Form
	// XObject content streams encountered while extracting). Both
	// override the document's open-time defaults downward or upward for
	// just this extraction.
	RecursionLimit      uint32
	MaxDecompressedSize uint64
}

// DefaultOptions returns logical reading order, no artifacts, no heading
// detection, and the conservative resource ceilings of core.DefaultLimits.
func DefaultOptions() Options {
	return Options{
		RecursionLimit:      100,
		MaxDecompressedSize: 256 * 1024 * 1024,
	}
}

func (o Options) artifactAllowed(subtype model.ArtifactSubtype) bool {
	if !o.IncludeArtifacts {
		return false
	}
	if len(o.ArtifactSubtypes) == 0 {
		return true
	}
	return o.ArtifactSubtypes[subtype]
}
