package core

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"fmt"
	"io"

	xlzw "golang.org/x/image/tiff/lzw"

	"github.com/corpusreader/pdftext/common"
)

// filterNames that the core decodes for text-extraction purposes, vs.
// filters that are opaque image codecs the core passes through unchanged
// (DCTDecode, CCITTFaxDecode, JBIG2Decode: their content is only relevant
// to image XObjects, never page content streams or metadata streams).
const (
	filterFlate     = "FlateDecode"
	filterLZW       = "LZWDecode"
	filterASCII85   = "ASCII85Decode"
	filterASCIIHex  = "ASCIIHexDecode"
	filterRunLength = "RunLengthDecode"
	filterDCT       = "DCTDecode"
	filterCCITTFax  = "CCITTFaxDecode"
	filterJBIG2     = "JBIG2Decode"
)

// DecodeStream applies the stream's /Filter chain left to right, honoring
// /DecodeParms (predictor, LZW early-change), and enforces
// decompression-bomb protection . The result is cached on the
// Stream so repeated calls are free.
func DecodeStream(s *Stream, limits Limits) ([]byte, error) {
	if s.hasDecoded {
		return s.decoded, s.decodedErr
	}
	data, err := decodeStreamChain(s, limits)
	s.decoded, s.decodedErr, s.hasDecoded = data, err, true
	return data, err
}

func decodeStreamChain(s *Stream, limits Limits) ([]byte, error) {
	names, parmsList := filterChain(s.Dict)
	if len(names) > limits.MaxFilterChain {
		return nil, &LimitError{Limit: "max_filters", Value: int64(len(names)), Max: int64(limits.MaxFilterChain)}
	}

	data := s.Raw
	for i, name := range names {
		parms := parmsList[i]
		inputSize := int64(len(data))
		var err error
		switch name {
		case filterFlate:
			data, err = decodeFlate(data)
		case filterLZW:
			data, err = decodeLZW(data, parms)
		case filterASCII85:
			data, err = decodeASCII85(data)
		case filterASCIIHex:
			data, err = decodeASCIIHex(data)
		case filterRunLength:
			data, err = decodeRunLength(data)
		case filterDCT, filterCCITTFax, filterJBIG2:
			// Opaque passthrough: image codecs are irrelevant to text
			// extraction.
			continue
		default:
			common.Log.Debug("unrecognized filter %q, passing through", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		if name == filterFlate || name == filterLZW {
			data, err = applyStreamPredictor(data, parms)
			if err != nil {
				return nil, err
			}
		}
		if err := checkDecompressionBomb(inputSize, int64(len(data)), limits); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// checkDecompressionBomb aborts when decompressed size exceeds both
// limits.MaxDecompressedRatio times the input size AND the absolute
// MaxDecompressedSize cap.
func checkDecompressionBomb(inputSize, outputSize int64, limits Limits) error {
	if outputSize <= limits.MaxDecompressedSize {
		return nil
	}
	if inputSize > 0 && outputSize <= inputSize*limits.MaxDecompressedRatio {
		return nil
	}
	return &LimitError{Limit: "max_decompressed_size", Value: outputSize, Max: limits.MaxDecompressedSize}
}

// filterChain normalizes /Filter (Name or Array) and /DecodeParms (Dict,
// Array, or absent) into parallel slices.
func filterChain(dict *Dict) ([]string, []*Dict) {
	filterObj := dict.GetResolved("Filter")
	if filterObj == nil {
		return nil, nil
	}
	parmsObj := dict.GetResolved("DecodeParms")
	if parmsObj == nil {
		parmsObj = dict.GetResolved("DP")
	}

	var names []string
	var parms []*Dict
	switch f := filterObj.(type) {
	case Name:
		names = []string{string(f)}
		if d, ok := GetDict(parmsObj); ok {
			parms = []*Dict{d}
		} else {
			parms = []*Dict{nil}
		}
	case *Array:
		for _, e := range f.Elements() {
			if n, ok := GetName(e); ok {
				names = append(names, n)
			}
		}
		if arr, ok := GetArray(parmsObj); ok {
			for i := range names {
				d, _ := GetDict(arr.Get(i))
				parms = append(parms, d)
			}
		} else if d, ok := GetDict(parmsObj); ok {
			for range names {
				parms = append(parms, d)
			}
		} else {
			parms = make([]*Dict, len(names))
		}
	}
	return names, parms
}

func decodeFlate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return out, nil
}

// decodeLZW implements LZWDecode: variable code width 9-12,
// MSB-first bit order, with the early-change convention selectable via
// /DecodeParms /EarlyChange (default true = 1). Go's stdlib compress/lzw
// only implements the early-change=0 variant; golang.org/x/image/tiff/lzw
// implements early-change=1, so both cases are covered between the two.
func decodeLZW(data []byte, parms *Dict) ([]byte, error) {
	earlyChange := int64(1)
	if parms != nil {
		if v, ok := GetInt(parms.GetResolved("EarlyChange")); ok {
			earlyChange = v
		}
	}
	var r io.ReadCloser
	if earlyChange == 1 {
		r = xlzw.NewReader(bytes.NewReader(data), xlzw.MSB, 8)
	} else {
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzw: %w", err)
	}
	return out, nil
}

// decodeASCII85 implements the Adobe variant with `~>` terminator and `z`
// shorthand for four zero bytes.
func decodeASCII85(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if idx := bytes.Index(data, []byte("~>")); idx >= 0 {
		data = data[:idx]
	}
	var out bytes.Buffer
	var group [5]byte
	n := 0
	flush := func(count int) error {
		if count == 0 {
			return nil
		}
		for i := count; i < 5; i++ {
			group[i] = 'u'
		}
		var v uint32
		for i := 0; i < 5; i++ {
			if group[i] < '!' || group[i] > 'u' {
				return &ParseError{Reason: "invalid ASCII85 character"}
			}
			v = v*85 + uint32(group[i]-'!')
		}
		b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		out.Write(b[:count-1])
		return nil
	}
	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == 'z' && n == 0 {
			out.Write([]byte{0, 0, 0, 0})
			continue
		}
		group[n] = c
		n++
		if n == 5 {
			if err := flush(5); err != nil {
				return nil, err
			}
			n = 0
		}
	}
	if n > 0 {
		if err := flush(n); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

// decodeASCIIHex implements ASCIIHexDecode: `>` terminator, ignores
// whitespace, pads an odd trailing digit with 0.
func decodeASCIIHex(data []byte) ([]byte, error) {
	var digits []byte
	for _, c := range data {
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, &ParseError{Reason: "invalid ASCIIHex character"}
		}
		digits = append(digits, c)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexVal(digits[2*i])<<4 | hexVal(digits[2*i+1])
	}
	return out, nil
}

// decodeRunLength implements RunLengthDecode's byte-count header
// convention: length byte 0-127 means copy the next length+1 literal
// bytes; 129-255 means repeat the following byte (257-length) times; 128
// is EOD.
func decodeRunLength(data []byte) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		length := data[i]
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			n := int(length) + 1
			if i+n > len(data) {
				n = len(data) - i
			}
			out.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				break
			}
			b := data[i]
			i++
			for j := 0; j < 257-int(length); j++ {
				out.WriteByte(b)
			}
		}
	}
	return out.Bytes(), nil
}

// applyStreamPredictor applies the PNG/TIFF predictor named in parms to
// already-decompressed Flate/LZW output.
func applyStreamPredictor(data []byte, parms *Dict) ([]byte, error) {
	if parms == nil {
		return data, nil
	}
	predictor, _ := GetInt(parms.GetResolved("Predictor"))
	if predictor <= 1 {
		return data, nil
	}
	columns, _ := GetInt(parms.GetResolved("Columns"))
	if columns == 0 {
		columns = 1
	}
	colors, _ := GetInt(parms.GetResolved("Colors"))
	if colors == 0 {
		colors = 1
	}
	bpc, _ := GetInt(parms.GetResolved("BitsPerComponent"))
	if bpc == 0 {
		bpc = 8
	}
	return applyPredictor(int(predictor), int(columns), int(colors), int(bpc), data)
}
