package model

import (
	"github.com/corpusreader/pdftext/core"
)

// InfoDict is the document's /Info dictionary, decoded to Go strings.
// Entries are PDFDocEncoding or UTF-16BE-with-BOM per ISO 32000-1 7.9.2.2;
// DecodePDFTextString applies that decoding rule uniformly across /Title,
// /Author, and the rest of the text-valued entries.
type InfoDict struct {
	Title, Author, Subject, Keywords string
	Creator, Producer               string
	CreationDate, ModDate            string
}

// Metadata returns the trailer's /Info dictionary, decoded. A document with
// no /Info (common for machine-generated PDFs) returns a zero-value
// InfoDict, not an error.
func (d *Document) Metadata() InfoDict {
	var info InfoDict
	infoObj := d.store.Trailer().Get("Info")
	dict, ok := core.GetDict(infoObj)
	if !ok {
		return info
	}
	info.Title = decodeTextField(dict, "Title")
	info.Author = decodeTextField(dict, "Author")
	info.Subject = decodeTextField(dict, "Subject")
	info.Keywords = decodeTextField(dict, "Keywords")
	info.Creator = decodeTextField(dict, "Creator")
	info.Producer = decodeTextField(dict, "Producer")
	info.CreationDate = decodeTextField(dict, "CreationDate")
	info.ModDate = decodeTextField(dict, "ModDate")
	return info
}

func decodeTextField(dict *core.Dict, key core.Name) string {
	b, ok := core.GetStringBytes(dict.Get(key))
	if !ok {
		return ""
	}
	return DecodePDFTextString(b)
}

// MarkInfo is the catalog's /MarkInfo dictionary: when Marked
// is true and Suspects is false, the structure tree is trusted for reading
// order; otherwise the layout analyzer falls back to geometric ordering.
type MarkInfo struct {
	Marked         bool
	Suspects       bool
	UserProperties bool
}

// MarkInfo returns the catalog's /MarkInfo, defaulting to all-false when
// absent (an untagged PDF).
func (d *Document) MarkInfo() MarkInfo {
	var mi MarkInfo
	dict, ok := core.GetDict(d.catalog.Get("MarkInfo"))
	if !ok {
		return mi
	}
	mi.Marked, _ = core.GetBool(dict.Get("Marked"))
	mi.Suspects, _ = core.GetBool(dict.Get("Suspects"))
	mi.UserProperties, _ = core.GetBool(dict.Get("UserProperties"))
	return mi
}

// TrustStructureTree reports whether the structure tree should be used for
// reading order: Marked true and Suspects false, and a StructTreeRoot is
// actually present. When Suspects is true a "structure-tree marked
// suspect" diagnostic is recorded once, the first time this is called.
func (d *Document) TrustStructureTree() bool {
	mi := d.MarkInfo()
	_, hasRoot := core.GetDict(d.catalog.Get("StructTreeRoot"))
	if !hasRoot {
		return false
	}
	if mi.Suspects {
		const msg = "structure-tree marked suspect"
		for _, w := range d.Warnings() {
			if w == msg {
				return false
			}
		}
		d.Warnf(msg)
		return false
	}
	return mi.Marked
}

// EncryptionState summarizes whether the document came from an encrypted
// file, for callers that want to record provenance without re-deriving it
// (the file key is recovered transparently by core.Open before Document
// ever sees the object graph).
type EncryptionState struct {
	Encrypted bool
}

// EncryptionState reports whether the trailer named an /Encrypt handler.
func (d *Document) EncryptionState() EncryptionState {
	return EncryptionState{Encrypted: d.store.Trailer().Get("Encrypt") != nil}
}
