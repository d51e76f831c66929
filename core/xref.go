package core

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/corpusreader/pdftext/common"
)

// xrefEntryKind distinguishes a plain file-offset xref entry from one that
// points into a compressed object stream ( PDF 1.5 object
// streams).
type xrefEntryKind int

const (
	xrefFree xrefEntryKind = iota
	xrefOffset
	xrefInStream
)

// xrefEntry is one row of the merged cross-reference table: either a byte
// offset into the file, or a (stream object number, index) pair.
type xrefEntry struct {
	Kind       xrefEntryKind
	Generation int64
	Offset     int64
	StreamObj  int64
	StreamIdx  int64
}

// xrefTable maps (object number) to its resolved location. PDF generation
// numbers are tracked for classic tables but, later entries
// (lower in the /Prev chain, i.e. read first during backward scanning) win
// when hybrid files are merged.
type xrefTable struct {
	entries map[int64]xrefEntry
}

func newXrefTable() *xrefTable {
	return &xrefTable{entries: map[int64]xrefEntry{}}
}

// merge adds entries from an older xref section, never overwriting an
// object number already present (the newer section, parsed first, wins).
func (t *xrefTable) merge(older *xrefTable) {
	for num, e := range older.entries {
		if _, exists := t.entries[num]; !exists {
			t.entries[num] = e
		}
	}
}

func (t *xrefTable) set(num int64, e xrefEntry) {
	if _, exists := t.entries[num]; !exists {
		t.entries[num] = e
	}
}

// locateStartXref scans backward from EOF for the last `startxref` keyword
// and returns the byte offset it names (XRef location
// protocol). PDFs may have trailing garbage after the final %%EOF; scanning
// backward tolerates that.
func locateStartXref(buf []byte) (int64, error) {
	const marker = "startxref"
	idx := bytes.LastIndex(buf, []byte(marker))
	if idx < 0 {
		return 0, &ParseError{Offset: int64(len(buf)), Reason: "startxref not found"}
	}
	p := idx + len(marker)
	for p < len(buf) && isWhitespace(buf[p]) {
		p++
	}
	start := p
	for p < len(buf) && buf[p] >= '0' && buf[p] <= '9' {
		p++
	}
	if p == start {
		return 0, &ParseError{Offset: int64(idx), Reason: "malformed startxref"}
	}
	off, err := strconv.ParseInt(string(buf[start:p]), 10, 64)
	if err != nil {
		return 0, &ParseError{Offset: int64(start), Reason: "malformed startxref offset"}
	}
	return off, nil
}

// parseXrefSection parses one xref section (classic table or xref stream)
// starting at offset and follows its /Prev and /XRefStm sections, returning
// the merged table and the section's trailer dictionary (keys it lacks are
// filled in from older trailers along the /Prev chain).
func (p *objParser) parseXrefSection(offset int64, visited map[int64]bool) (*xrefTable, *Dict, error) {
	if visited[offset] {
		return nil, nil, &ParseError{Offset: offset, Reason: "xref /Prev cycle detected"}
	}
	visited[offset] = true

	p.lex.Seek(offset)
	tok, err := p.lex.Next()
	if err != nil {
		return nil, nil, err
	}

	var table *xrefTable
	var trailer *Dict

	if tok.Kind == TokKeyword && string(tok.Payload) == "xref" {
		p.lex.Seek(offset)
		table, trailer, err = p.parseClassicXref()
	} else {
		// xref stream: "<n> <g> obj << ... >> stream ...".
		p.lex.Seek(offset)
		table, trailer, err = p.parseXrefStream()
	}
	if err != nil {
		return nil, nil, err
	}

	if prevObj := trailer.Get("Prev"); prevObj != nil {
		if prevOff, ok := GetInt(prevObj); ok {
			prevTable, prevTrailer, err := p.parseXrefSection(prevOff, visited)
			if err != nil {
				common.Log.Debug("xref /Prev chain broken at %d: %v", prevOff, err)
			} else {
				table.merge(prevTable)
				for _, k := range prevTrailer.Keys() {
					if trailer.Get(k) == nil {
						trailer.Set(k, prevTrailer.Get(k))
					}
				}
			}
		}
	}
	// Hybrid-reference files point to a supplemental xref stream via
	// /XRefStm (table + stream merged, later entries winning).
	if xrefStmObj := trailer.Get("XRefStm"); xrefStmObj != nil {
		if stmOff, ok := GetInt(xrefStmObj); ok {
			stmTable, _, err := p.parseXrefSection(stmOff, visited)
			if err == nil {
				table.merge(stmTable)
			}
		}
	}

	return table, trailer, nil
}

// parseClassicXref parses a classic "xref ... trailer << ... >>" section.
func (p *objParser) parseClassicXref() (*xrefTable, *Dict, error) {
	table := newXrefTable()
	// consume "xref" keyword already peeked by caller.
	if _, err := p.lex.Next(); err != nil {
		return nil, nil, err
	}
	for {
		p.lex.skipWhitespaceAndComments()
		save := p.lex.pos
		tok, err := p.lex.Next()
		if err != nil {
			return nil, nil, err
		}
		if tok.Kind == TokKeyword && string(tok.Payload) == "trailer" {
			break
		}
		if tok.Kind != TokInteger {
			// Not a subsection header; rewind and treat as trailer-less EOF.
			p.lex.pos = save
			break
		}
		startObj := tok.IntVal
		countTok, err := p.lex.Next()
		if err != nil || countTok.Kind != TokInteger {
			return nil, nil, &ParseError{Offset: tok.Offset, Reason: "malformed xref subsection header"}
		}
		count := countTok.IntVal
		for i := int64(0); i < count; i++ {
			offTok, err := p.lex.Next()
			if err != nil || (offTok.Kind != TokInteger) {
				return nil, nil, &ParseError{Offset: offTok.Offset, Reason: "malformed xref entry"}
			}
			genTok, err := p.lex.Next()
			if err != nil || genTok.Kind != TokInteger {
				return nil, nil, &ParseError{Offset: genTok.Offset, Reason: "malformed xref entry"}
			}
			typeTok, err := p.lex.Next()
			if err != nil || typeTok.Kind != TokKeyword {
				return nil, nil, &ParseError{Offset: typeTok.Offset, Reason: "malformed xref entry"}
			}
			objNum := startObj + i
			switch string(typeTok.Payload) {
			case "n":
				table.set(objNum, xrefEntry{Kind: xrefOffset, Offset: offTok.IntVal, Generation: genTok.IntVal})
			case "f":
				table.set(objNum, xrefEntry{Kind: xrefFree})
			}
		}
	}
	trailerObj, err := p.parseObjectValue()
	if err != nil {
		return nil, nil, err
	}
	trailer, ok := trailerObj.(*Dict)
	if !ok {
		return nil, nil, &ParseError{Offset: p.lex.Offset(), Reason: "trailer is not a dictionary"}
	}
	return table, trailer, nil
}

// parseXrefStream parses a cross-reference stream (PDF 1.5), an ordinary
// indirect Stream object whose /Type is /XRef and whose decoded body packs
// fixed-width fields per /W.
func (p *objParser) parseXrefStream() (*xrefTable, *Dict, error) {
	_, obj, err := p.parseIndirectObjectAt(p.lex.Offset())
	if err != nil {
		return nil, nil, err
	}
	stm, ok := obj.(*Stream)
	if !ok {
		return nil, nil, &ParseError{Offset: p.lex.Offset(), Reason: "expected xref stream"}
	}
	wArr, ok := GetArray(stm.Get("W"))
	if !ok || wArr.Len() < 3 {
		return nil, nil, &ParseError{Offset: p.lex.Offset(), Reason: "xref stream missing /W"}
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, _ := GetInt(wArr.Get(i))
		w[i] = int(v)
	}

	var index []int64
	if idxArr, ok := GetArray(stm.Get("Index")); ok {
		for _, e := range idxArr.Elements() {
			v, _ := GetInt(e)
			index = append(index, v)
		}
	} else {
		size, _ := GetInt(stm.Get("Size"))
		index = []int64{0, size}
	}

	decoded, err := DecodeStream(stm, p.limits)
	if err != nil {
		return nil, nil, err
	}

	table := newXrefTable()
	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for sec := 0; sec+1 < len(index); sec += 2 {
		startObj, count := index[sec], index[sec+1]
		for i := int64(0); i < count; i++ {
			if pos+rowLen > len(decoded) {
				break
			}
			row := decoded[pos : pos+rowLen]
			pos += rowLen
			f1 := beInt(row[:w[0]], 1) // type field defaults to 1 if width 0
			f2 := beInt(row[w[0]:w[0]+w[1]], 0)
			f3 := beInt(row[w[0]+w[1]:], 0)
			objNum := startObj + i
			switch f1 {
			case 0:
				table.set(objNum, xrefEntry{Kind: xrefFree})
			case 1:
				table.set(objNum, xrefEntry{Kind: xrefOffset, Offset: f2, Generation: f3})
			case 2:
				table.set(objNum, xrefEntry{Kind: xrefInStream, StreamObj: f2, StreamIdx: f3})
			}
		}
	}
	return table, stm.Dict, nil
}

// beInt decodes a big-endian integer field of arbitrary byte width. A
// zero-width field yields deflt, matching the xref stream spec's rule that
// a missing type field (w[0]==0) defaults to type 1.
func beInt(b []byte, deflt int64) int64 {
	if len(b) == 0 {
		return deflt
	}
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var _ = fmt.Sprintf
