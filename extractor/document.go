package extractor

import (
	"bytes"
	"strings"

	"github.com/corpusreader/pdftext/contentstream"
	"github.com/corpusreader/pdftext/model"
	"github.com/h2non/filetype"
)

// Document is the public handle returned by Open: a parsed PDF plus the
// per-page extraction operations (ExtractText, ExtractBlocks,
// ExtractGlyphs, ExtractFormFields) described by the public extraction
// API.
type Document struct {
	doc *model.Document
}

// Open parses buf as a PDF document with no password. Use OpenEncrypted
// for password-protected input.
func Open(buf []byte) (*Document, error) {
	return OpenEncrypted(buf, "")
}

// OpenEncrypted parses buf, trying password for the Standard Security
// Handler if the file is encrypted. A document that fails to open returns
// an Error carrying the byte offset of the first parse failure, or
// Kind == KindEncryption if password did not unlock it.
func OpenEncrypted(buf []byte, password string) (*Document, error) {
	if !looksLikePDF(buf) {
		return nil, &Error{Kind: KindIO, Reason: "input does not look like a PDF file"}
	}
	opts := model.DefaultOpenOptions()
	opts.Password = password
	doc, err := model.Open(buf, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	return &Document{doc: doc}, nil
}

// looksLikePDF sniffs the leading bytes to reject non-PDF input with a
// well-typed Io-class error before the lexer is invoked, instead of an
// opaque parse failure several layers down. h2non/filetype's signature
// match is tried first; %PDF- within the first 1KB (the same leading
// garbage allowance core.Open's repair scan tolerates) is the fallback for
// the files filetype's signature table doesn't recognize.
func looksLikePDF(buf []byte) bool {
	if kind, err := filetype.Match(buf); err == nil && kind.Extension == "pdf" {
		return true
	}
	limit := len(buf)
	if limit > 1024+8 {
		limit = 1024 + 8
	}
	return bytes.Contains(buf[:limit], []byte("%PDF-"))
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.doc.PageCount() }

// Page returns the i-th page (0-based).
func (d *Document) Page(i int) (*Page, error) {
	p, err := d.doc.Page(i)
	if err != nil {
		return nil, wrapError(err)
	}
	return &Page{doc: d, page: p}, nil
}

// Metadata returns the document's /Info dictionary, decoded.
func (d *Document) Metadata() model.InfoDict { return d.doc.Metadata() }

// Version returns the document's PDF version (major, minor), taken from
// the header or, when a later incremental update's catalog /Version
// overrides it, from there.
func (d *Document) Version() (int, int) { return d.doc.Version() }

// MarkInfo returns the catalog's /MarkInfo dictionary, which this package
// uses to decide whether the structure tree is trusted for reading order.
func (d *Document) MarkInfo() model.MarkInfo { return d.doc.MarkInfo() }

// Outline returns the document's outline (bookmark) tree, or nil if it
// carries none.
func (d *Document) Outline() []*model.OutlineNode { return d.doc.Outline() }

// EncryptionState reports whether the document is encrypted and, if so,
// which handler revision and permission bits apply.
func (d *Document) EncryptionState() model.EncryptionState { return d.doc.EncryptionState() }

// Warnings returns every diagnostic accumulated opening the document and
// extracting from its pages so far: soft font and structure-tree
// failures, replacement-character overflows, and the rest of the
// diagnostic channel the public API exposes instead of raising them.
func (d *Document) Warnings() []string { return d.doc.Warnings() }

// Page is one page of an open Document.
type Page struct {
	doc  *Document
	page *model.Page
}

// Index returns the page's 0-based position in the document.
func (p *Page) Index() int { return p.page.Index() }

// ExtractGlyphs runs the content-stream interpreter over the page and
// returns its Glyph Records with coordinates remapped into upright
// (post-/Rotate) page space.
func (p *Page) ExtractGlyphs(opts Options) ([]contentstream.GlyphRecord, error) {
	ip := contentstream.New(p.doc.doc)
	ip.SetLimits(opts.RecursionLimit, opts.MaxDecompressedSize)
	records, err := ip.Run(p.page)
	if err != nil {
		return nil, wrapError(err)
	}
	records = uprightGlyphs(records, p.page.MediaBox, p.page.Rotation)
	records = filterArtifacts(records, opts)
	return records, nil
}

// filterArtifacts drops glyphs inside /Artifact marked content unless the
// caller opted in, optionally restricted to the requested subtypes.
func filterArtifacts(records []contentstream.GlyphRecord, opts Options) []contentstream.GlyphRecord {
	out := records[:0]
	for _, r := range records {
		if r.IsArtifact && !opts.artifactAllowed(r.ArtifactSubtype) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ExtractBlocks runs the full layout pipeline (Stages A-F) and returns
// the page's blocks in reading order.
func (p *Page) ExtractBlocks(opts Options) ([]Block, error) {
	glyphs, err := p.ExtractGlyphs(opts)
	if err != nil {
		return nil, err
	}
	words := clusterWords(glyphs)
	mb := uprightBox(p.page.MediaBox, p.page.Rotation)
	lines := clusterLines(words)
	blocks := segmentBlocks(lines, mb.Height(), mb.Width())

	trust := p.doc.doc.TrustStructureTree()
	mcidOrder := p.doc.doc.StructTree().PageMCIDOrder(p.page.Index())
	if opts.PreserveLayout {
		blocks = orderGeometrically(blocks)
		for i := range blocks {
			blocks[i].ReadingOrder = i
		}
	} else {
		blocks = orderBlocks(blocks, mcidOrder, trust)
	}

	tree := p.doc.doc.StructTree()
	for i := range blocks {
		blocks[i].Lines = reconstructHyphenation(blocks[i].Lines)
		blocks[i].StructType = structTypeForBlock(tree, blocks[i])
	}
	expandLigatures(blocks)
	for bi := range blocks {
		for li := range blocks[bi].Lines {
			for wi := range blocks[bi].Lines[li].Words {
				blocks[bi].Lines[li].Words[wi].Text = reshapeArabic(blocks[bi].Lines[li].Words[wi].Text)
			}
		}
	}
	if opts.DetectHeadings {
		applyHeadingDetection(blocks)
	}
	return blocks, nil
}

// ExtractText flattens ExtractBlocks to a single string: lines joined by
// newlines, words within a line joined by single spaces, blocks separated
// by a blank line.
func (p *Page) ExtractText(opts Options) (string, error) {
	blocks, err := p.ExtractBlocks(opts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for bi, block := range blocks {
		if bi > 0 {
			b.WriteString("\n\n")
		}
		for li, line := range block.Lines {
			if li > 0 {
				b.WriteByte('\n')
			}
			for wi, w := range line.Words {
				if wi > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(w.Text)
			}
		}
	}
	text := b.String()
	checkReplacementCharShare(text, p.doc.doc.Warnf)
	return text, nil
}
