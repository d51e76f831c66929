package core

import (
	"regexp"

	"github.com/corpusreader/pdftext/common"
)

func regexpMustCompileObjHeader() *regexp.Regexp {
	return regexp.MustCompile(`(\d+)\s+(\d+)\s+obj\b`)
}

// objectStreamEntry is one decoded object-stream body plus its header
// offset table; objParser.objStreamCache memoizes these, keyed by the
// object-stream's object number.
type objectStreamEntry struct {
	offsets []int64
	data    []byte
}

// lookupInObjectStream implements object-stream handling:
// locate the stream object, decode it, parse its "(N first)" header index,
// and extract the requested sub-object by re-parsing the decoded bytes at
// the recorded offset.
func (p *objParser) lookupInObjectStream(streamObjNum int64, index int, depth int) (Object, error) {
	entry, ok := p.objStreams()[streamObjNum]
	if !ok {
		ref := NewReference(streamObjNum, 0, p)
		obj, err := p.resolveDepth(ref, depth)
		if err != nil {
			return nil, err
		}
		stm, ok := obj.(*Stream)
		if !ok {
			return nil, &ParseError{Reason: "object stream target is not a stream"}
		}
		decoded, err := DecodeStream(stm, p.limits)
		if err != nil {
			return nil, err
		}
		n, _ := GetInt(stm.Get("N"))
		first, _ := GetInt(stm.Get("First"))

		sub := NewLexer(decoded)
		offsets := make([]int64, n)
		for i := int64(0); i < n; i++ {
			sub.skipWhitespaceAndComments()
			if _, err := sub.Next(); err != nil { // object number (unused: index order defines identity)
				return nil, err
			}
			sub.skipWhitespaceAndComments()
			offTok, err := sub.Next()
			if err != nil {
				return nil, err
			}
			offsets[i] = first + offTok.IntVal
		}
		entry = objectStreamEntry{offsets: offsets, data: decoded}
		p.objStreamCache[streamObjNum] = entry
	}
	if index < 0 || index >= len(entry.offsets) {
		return nil, &ParseError{Reason: "object stream index out of range"}
	}
	subParser := newObjParser(entry.data, p.limits)
	subParser.lex.Seek(entry.offsets[index])
	val, err := subParser.parseObjectValue()
	if err != nil {
		common.Log.Debug("failed to parse compressed object %d/%d: %v", streamObjNum, index, err)
		return nil, err
	}
	return val, nil
}

func (p *objParser) objStreams() map[int64]objectStreamEntry {
	if p.objStreamCache == nil {
		p.objStreamCache = map[int64]objectStreamEntry{}
	}
	return p.objStreamCache
}
