package core

import (
	"bytes"
	"fmt"

	"github.com/corpusreader/pdftext/common"
)

// objParser is the recursive-descent object parser plus cross-reference
// resolver described in . It owns the file's byte buffer, the
// merged xref table, and an object cache keyed by object number so that
// resolving the same reference twice returns the same Object identity
// (testable property).
type objParser struct {
	buf     []byte
	lex     *Lexer
	xref    *xrefTable
	trailer *Dict
	limits  Limits
	crypt   *Decryptor

	cache          map[int64]Object
	offsets        map[int64]int64 // object number -> file offset, for lazy parse
	inProgress     map[int64]bool  // cycle guard for Resolve
	streamLenCk    map[int64]bool  // cycle guard for /Length indirection
	objStreamCache map[int64]objectStreamEntry

	objectCount int64
	warnings    []string
}

// ParseResult is returned by Open: the parsed object graph plus any
// non-fatal warnings accumulated while repairing a lenient-mode file.
type ParseResult struct {
	Trailer  *Dict
	Warnings []string
}

// newObjParser builds a parser over buf without yet locating the xref
// table (see Open).
func newObjParser(buf []byte, limits Limits) *objParser {
	return &objParser{
		buf:         buf,
		lex:         NewLexer(buf),
		limits:      limits,
		cache:       map[int64]Object{},
		offsets:     map[int64]int64{},
		inProgress:  map[int64]bool{},
		streamLenCk: map[int64]bool{},
	}
}

// Open locates the trailer and builds the merged xref table using the
// standard XRef location protocol: scan backward for startxref, follow the
// xref chain (classic table and/or xref stream), merging /Prev sections
// with later entries winning.
func Open(buf []byte, limits Limits) (ObjectStore, error) {
	return OpenWithPassword(buf, limits, "")
}

// OpenWithPassword is Open for documents protected with a non-empty user
// password.
func OpenWithPassword(buf []byte, limits Limits, password string) (ObjectStore, error) {
	if int64(len(buf)) > limits.MaxFileSize {
		return nil, &LimitError{Limit: "max_file_size", Value: int64(len(buf)), Max: limits.MaxFileSize}
	}
	p := newObjParser(buf, limits)

	off, err := locateStartXref(buf)
	if err != nil {
		common.Log.Debug("startxref not found, attempting repair scan: %v", err)
		return p.repairByScanning()
	}

	table, trailer, err := p.parseXrefSection(off, map[int64]bool{})
	if err != nil {
		common.Log.Debug("xref parse failed, attempting repair scan: %v", err)
		return p.repairByScanning()
	}
	p.xref = table
	p.trailer = trailer
	for num, e := range table.entries {
		if e.Kind == xrefOffset {
			p.offsets[num] = e.Offset
		}
	}

	if encObj := trailer.Get("Encrypt"); encObj != nil {
		dec, err := newDecryptorFromTrailer(p, encObj, trailer, []byte(password))
		if err != nil {
			return nil, err
		}
		p.crypt = dec
	}

	return p, nil
}

// repairByScanning is the fallback path for unparseable xref data: when
// startxref/xref parsing fails, scan the whole buffer for "N G obj"
// signatures and rebuild an xref table and trailer from whatever valid
// objects are found. This keeps lenient-mode files (leading garbage,
// corrupted xref) openable.
func (p *objParser) repairByScanning() (*objParser, error) {
	p.xref = newXrefTable()
	re := objHeaderPattern
	matches := re.FindAllSubmatchIndex(p.buf, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Offset: 0, Reason: "no indirect objects found during repair scan"}
	}
	for _, m := range matches {
		numStr := string(p.buf[m[2]:m[3]])
		num := parseIntLenient([]byte(numStr))
		p.offsets[num] = int64(m[0])
		p.xref.set(num, xrefEntry{Kind: xrefOffset, Offset: int64(m[0])})
	}
	p.warnings = append(p.warnings, "xref table unreadable; rebuilt by scanning for object signatures")

	// Find a trailer dictionary if present; otherwise synthesize one by
	// locating a /Type /Catalog object directly.
	p.trailer = NewDict()
	if idx := bytes.LastIndex(p.buf, []byte("trailer")); idx >= 0 {
		p.lex.Seek(int64(idx) + int64(len("trailer")))
		if obj, err := p.parseObjectValue(); err == nil {
			if d, ok := obj.(*Dict); ok {
				p.trailer = d
			}
		}
	}
	if p.trailer.Get("Root") == nil {
		for num := range p.offsets {
			obj, err := p.parseIndirectObjectByOffset(p.offsets[num])
			if err != nil {
				continue
			}
			if d, ok := GetDict(obj); ok {
				if t, _ := GetName(d.Get("Type")); t == "Catalog" {
					p.trailer.Set("Root", NewReference(num, 0, p))
					break
				}
			}
		}
	}
	return p, nil
}

var objHeaderPattern = regexpMustCompileObjHeader()

// Trailer returns the document trailer dictionary.
func (p *objParser) Trailer() *Dict { return p.trailer }

// Warnings returns diagnostics accumulated while opening (e.g. repair-mode
// notices), exposed via the Document's diagnostic channel.
func (p *objParser) Warnings() []string { return p.warnings }

// Warnf records a warning, used by soft-failing components (Font,
// Structure) propagation policy.
func (p *objParser) Warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// Resolve implements Resolver. It bounds recursion at limits.RecursionLimit
// and detects cycles via inProgress, satisfying resolve
// idempotence and cycle-detection invariants.
func (p *objParser) Resolve(ref *Reference) (Object, error) {
	return p.resolveDepth(ref, 0)
}

func (p *objParser) resolveDepth(ref *Reference, depth int) (Object, error) {
	if depth > p.limits.RecursionLimit {
		return nil, &RecursionError{Ceiling: p.limits.RecursionLimit}
	}
	num := ref.ObjectNumber
	if obj, ok := p.cache[num]; ok {
		return obj, nil
	}
	if p.inProgress[num] {
		// Legitimate cross-edge in the object graph (e.g. Page -> Parent ->
		// Kids -> Page). Return Null rather than recursing forever; the
		// caller already has a reference to work with structurally.
		return Null{}, nil
	}
	p.inProgress[num] = true
	defer delete(p.inProgress, num)

	entry, ok := p.xref.entries[num]
	if !ok || entry.Kind == xrefFree {
		return Null{}, nil
	}

	var obj Object
	var err error
	switch entry.Kind {
	case xrefOffset:
		obj, err = p.parseIndirectObjectByOffset(entry.Offset)
	case xrefInStream:
		obj, err = p.lookupInObjectStream(entry.StreamObj, int(entry.StreamIdx), depth+1)
	}
	if err != nil {
		return nil, err
	}
	p.cache[num] = obj
	p.objectCount++
	if p.objectCount > p.limits.MaxObjects {
		return nil, &LimitError{Limit: "max_objects", Value: p.objectCount, Max: p.limits.MaxObjects}
	}
	return obj, nil
}

// parseIndirectObjectByOffset parses the "N G obj ... endobj" wrapper at a
// known file offset.
func (p *objParser) parseIndirectObjectByOffset(offset int64) (Object, error) {
	_, obj, err := p.parseIndirectObjectAt(offset)
	return obj, err
}

func (p *objParser) parseIndirectObjectAt(offset int64) (int64, Object, error) {
	p.lex.Seek(offset)
	numTok, err := p.lex.Next()
	if err != nil || numTok.Kind != TokInteger {
		return 0, nil, &ParseError{Offset: offset, Reason: "expected object number"}
	}
	genTok, err := p.lex.Next()
	if err != nil || genTok.Kind != TokInteger {
		return 0, nil, &ParseError{Offset: offset, Reason: "expected generation number"}
	}
	kwTok, err := p.lex.Next()
	if err != nil || kwTok.Kind != TokKeyword || string(kwTok.Payload) != "obj" {
		return 0, nil, &ParseError{Offset: offset, Reason: "expected 'obj' keyword"}
	}

	val, err := p.parseObjectValue()
	if err != nil {
		return 0, nil, err
	}

	// Peek for "stream" keyword immediately following a dictionary.
	if dict, ok := val.(*Dict); ok {
		save := p.lex.pos
		p.lex.skipWhitespaceAndComments()
		if bytes.HasPrefix(p.buf[p.lex.pos:], []byte("stream")) {
			stm, err := p.parseStreamBody(dict, numTok.IntVal)
			if err != nil {
				return 0, nil, err
			}
			return numTok.IntVal, stm, nil
		}
		p.lex.pos = save
	}

	if p.crypt != nil {
		val = p.crypt.decryptObject(numTok.IntVal, genTok.IntVal, val)
	}
	return numTok.IntVal, val, nil
}

// parseStreamBody reads the raw bytes between "stream" and "endstream".
// /Length may itself be an indirect reference; if the declared length
// disagrees with where "endstream" actually appears, scanning wins and a
// parse-warning is recorded.
func (p *objParser) parseStreamBody(dict *Dict, objNum int64) (*Stream, error) {
	// consume "stream" keyword and the single CRLF/LF that follows it.
	if !bytes.HasPrefix(p.buf[p.lex.pos:], []byte("stream")) {
		return nil, &ParseError{Offset: p.lex.pos, Reason: "expected 'stream'"}
	}
	p.lex.pos += int64(len("stream"))
	if p.lex.pos < int64(len(p.buf)) && p.buf[p.lex.pos] == '\r' {
		p.lex.pos++
	}
	if p.lex.pos < int64(len(p.buf)) && p.buf[p.lex.pos] == '\n' {
		p.lex.pos++
	}
	start := p.lex.pos

	length, lengthOK := p.traceStreamLength(dict, objNum)
	var body []byte
	if lengthOK && length >= 0 && start+length <= int64(len(p.buf)) {
		candidate := p.buf[start : start+length]
		tail := p.buf[start+length:]
		tailTrim := bytes.TrimLeft(tail, "\r\n \t")
		if bytes.HasPrefix(tailTrim, []byte("endstream")) {
			body = candidate
			p.lex.pos = start + length
		}
	}
	if body == nil {
		// Length missing, wrong, or inconsistent: scan for "endstream".
		idx := bytes.Index(p.buf[start:], []byte("endstream"))
		if idx < 0 {
			return nil, &ParseError{Offset: start, Reason: "endstream not found"}
		}
		end := start + int64(idx)
		// Trim the single EOL before "endstream" that isn't part of the data.
		trimmed := p.buf[start:end]
		if bytes.HasSuffix(trimmed, []byte("\r\n")) {
			trimmed = trimmed[:len(trimmed)-2]
		} else if bytes.HasSuffix(trimmed, []byte("\n")) || bytes.HasSuffix(trimmed, []byte("\r")) {
			trimmed = trimmed[:len(trimmed)-1]
		}
		body = trimmed
		p.lex.pos = end
		p.Warnf("object %d: /Length inconsistent with 'endstream' position; recovered by scanning", objNum)
	}
	p.lex.pos += int64(len("endstream"))

	if p.crypt != nil {
		body = p.crypt.decryptStreamBytes(objNum, 0, dict, body)
	}
	return NewStream(dict, body), nil
}

// traceStreamLength resolves /Length, following one indirect reference if
// necessary (the value is usually defined later in the file than the
// stream itself, which is why it cannot simply be read eagerly).
func (p *objParser) traceStreamLength(dict *Dict, objNum int64) (int64, bool) {
	lenObj := dict.Get("Length")
	if lenObj == nil {
		return 0, false
	}
	if ref, ok := lenObj.(*Reference); ok {
		if p.streamLenCk[ref.ObjectNumber] {
			return 0, false
		}
		p.streamLenCk[ref.ObjectNumber] = true
		defer delete(p.streamLenCk, ref.ObjectNumber)
		resolved, err := p.Resolve(ref)
		if err != nil {
			return 0, false
		}
		lenObj = resolved
	}
	v, ok := GetInt(lenObj)
	return v, ok
}

// parseObjectValue parses one PDF object value (any type except the
// indirect-object wrapper) starting at the lexer's current position.
func (p *objParser) parseObjectValue() (Object, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case TokEOF:
		return nil, &ParseError{Offset: tok.Offset, Reason: "unexpected EOF"}
	case TokInteger:
		// Could be the start of "N G R".
		save := p.lex.pos
		genTok, err := p.lex.Next()
		if err == nil && genTok.Kind == TokInteger {
			rTok, err2 := p.lex.Next()
			if err2 == nil && rTok.Kind == TokKeyword && string(rTok.Payload) == "R" {
				return NewReference(tok.IntVal, genTok.IntVal, p), nil
			}
		}
		p.lex.pos = save
		return Integer(tok.IntVal), nil
	case TokReal:
		return Real(tok.RealVal), nil
	case TokLiteralString:
		if int64(len(tok.Payload)) > p.limits.MaxStringLength {
			return nil, &LimitError{Limit: "max_string_length", Value: int64(len(tok.Payload)), Max: p.limits.MaxStringLength}
		}
		return NewLiteralString(tok.Payload), nil
	case TokHexString:
		return NewHexString(tok.Payload), nil
	case TokName:
		return Name(tok.Payload), nil
	case TokArrayOpen:
		return p.parseArray()
	case TokDictOpen:
		return p.parseDict()
	case TokKeyword:
		switch string(tok.Payload) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, &ParseError{Offset: tok.Offset, Reason: fmt.Sprintf("unexpected keyword %q", tok.Payload)}
	default:
		return nil, &ParseError{Offset: tok.Offset, Reason: "unexpected token"}
	}
}

func (p *objParser) parseArray() (Object, error) {
	arr := NewArray()
	for {
		p.lex.skipWhitespaceAndComments()
		save := p.lex.pos
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokArrayClose {
			return arr, nil
		}
		if tok.Kind == TokEOF {
			return nil, &ParseError{Offset: tok.Offset, Reason: "unterminated array"}
		}
		p.lex.pos = save
		val, err := p.parseObjectValue()
		if err != nil {
			return nil, err
		}
		arr.Append(val)
		if int64(arr.Len()) > p.limits.MaxArrayLength {
			return nil, &LimitError{Limit: "max_array_length", Value: int64(arr.Len()), Max: p.limits.MaxArrayLength}
		}
	}
}

func (p *objParser) parseDict() (Object, error) {
	dict := NewDict()
	dict.SetResolver(p)
	for {
		p.lex.skipWhitespaceAndComments()
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokDictClose {
			return dict, nil
		}
		if tok.Kind != TokName {
			return nil, &ParseError{Offset: tok.Offset, Reason: "expected name key in dictionary"}
		}
		key := Name(tok.Payload)
		val, err := p.parseObjectValue()
		if err != nil {
			return nil, err
		}
		dict.Set(key, val)
	}
}
