// Package contentstream implements a page content-stream interpreter: a
// state machine over page content operators that maintains a graphics-state
// stack and text-object state and emits positioned Glyph Records.
package contentstream

import (
	"fmt"

	"github.com/corpusreader/pdftext/core"
)

// Operation is one parsed content-stream instruction: zero or more operand
// objects followed by the operator keyword that consumes them (e.g.
// operands=[1,0,0,1,100,700], operator="cm").
type Operation struct {
	Operator string
	Operands []core.Object
}

// tokenizer walks a content stream's operand/operator grammar. Content
// streams never contain indirect references ("N G R"), so this is simpler
// than core's full object parser: any TokKeyword other than true/false/null
// ends the current operation.
type tokenizer struct {
	lex *core.Lexer
}

func newTokenizer(buf []byte) *tokenizer {
	return &tokenizer{lex: core.NewLexer(buf)}
}

// Next returns the next Operation, or io.EOF-shaped (Operation{}, false, nil)
// at end of stream.
func (t *tokenizer) Next() (Operation, bool, error) {
	var operands []core.Object
	for {
		tok, err := t.lex.Next()
		if err != nil {
			return Operation{}, false, err
		}
		switch tok.Kind {
		case core.TokEOF:
			if len(operands) == 0 {
				return Operation{}, false, nil
			}
			// Trailing operands with no closing operator: a truncated
			// stream. Drop them rather than fabricating an operator.
			return Operation{}, false, nil
		case core.TokInteger:
			operands = append(operands, core.Integer(tok.IntVal))
		case core.TokReal:
			operands = append(operands, core.Real(tok.RealVal))
		case core.TokLiteralString:
			operands = append(operands, core.NewLiteralString(tok.Payload))
		case core.TokHexString:
			operands = append(operands, core.NewHexString(tok.Payload))
		case core.TokName:
			operands = append(operands, core.Name(tok.Payload))
		case core.TokArrayOpen:
			arr, err := t.parseArray()
			if err != nil {
				return Operation{}, false, err
			}
			operands = append(operands, arr)
		case core.TokDictOpen:
			d, err := t.parseDict()
			if err != nil {
				return Operation{}, false, err
			}
			operands = append(operands, d)
		case core.TokKeyword:
			switch string(tok.Payload) {
			case "true":
				operands = append(operands, core.Bool(true))
			case "false":
				operands = append(operands, core.Bool(false))
			case "null":
				operands = append(operands, core.Null{})
			case "BI":
				// Inline image: skip to the matching EI. Rendering graphics
				// is out of scope, so inline image content is opaque to
				// text extraction.
				if err := t.skipInlineImage(); err != nil {
					return Operation{}, false, err
				}
				operands = operands[:0]
			default:
				return Operation{Operator: string(tok.Payload), Operands: operands}, true, nil
			}
		default:
			return Operation{}, false, &core.ParseError{Offset: tok.Offset, Reason: fmt.Sprintf("unexpected content-stream token kind %d", tok.Kind)}
		}
	}
}

func (t *tokenizer) parseArray() (*core.Array, error) {
	arr := core.NewArray()
	for {
		tok, err := t.lex.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case core.TokArrayClose:
			return arr, nil
		case core.TokEOF:
			return arr, nil // unterminated array at EOF: return what we have
		case core.TokInteger:
			arr.Append(core.Integer(tok.IntVal))
		case core.TokReal:
			arr.Append(core.Real(tok.RealVal))
		case core.TokLiteralString:
			arr.Append(core.NewLiteralString(tok.Payload))
		case core.TokHexString:
			arr.Append(core.NewHexString(tok.Payload))
		case core.TokName:
			arr.Append(core.Name(tok.Payload))
		case core.TokArrayOpen:
			nested, err := t.parseArray()
			if err != nil {
				return nil, err
			}
			arr.Append(nested)
		case core.TokDictOpen:
			d, err := t.parseDict()
			if err != nil {
				return nil, err
			}
			arr.Append(d)
		}
		if arr.Len() > 1<<20 {
			return nil, &core.LimitError{Limit: "max_array_length", Value: int64(arr.Len()), Max: 1 << 20}
		}
	}
}

func (t *tokenizer) parseDict() (*core.Dict, error) {
	d := core.NewDict()
	for {
		tok, err := t.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == core.TokDictClose || tok.Kind == core.TokEOF {
			return d, nil
		}
		if tok.Kind != core.TokName {
			continue // malformed key, skip
		}
		key := core.Name(tok.Payload)
		valTok, err := t.lex.Next()
		if err != nil {
			return nil, err
		}
		switch valTok.Kind {
		case core.TokInteger:
			d.Set(key, core.Integer(valTok.IntVal))
		case core.TokReal:
			d.Set(key, core.Real(valTok.RealVal))
		case core.TokLiteralString:
			d.Set(key, core.NewLiteralString(valTok.Payload))
		case core.TokHexString:
			d.Set(key, core.NewHexString(valTok.Payload))
		case core.TokName:
			d.Set(key, core.Name(valTok.Payload))
		case core.TokArrayOpen:
			arr, err := t.parseArray()
			if err != nil {
				return nil, err
			}
			d.Set(key, arr)
		case core.TokDictOpen:
			nested, err := t.parseDict()
			if err != nil {
				return nil, err
			}
			d.Set(key, nested)
		case core.TokKeyword:
			switch string(valTok.Payload) {
			case "true":
				d.Set(key, core.Bool(true))
			case "false":
				d.Set(key, core.Bool(false))
			case "null":
				d.Set(key, core.Null{})
			}
		}
	}
}

// skipInlineImage consumes tokens up to (and including) the "EI" keyword
// that closes a BI...ID...EI inline image. The binary image data between ID
// and EI is not valid content-stream syntax, so this scans raw bytes for an
// "EI" preceded by whitespace (space, tab, CR, LF or FF) rather than
// re-tokenizing.
func (t *tokenizer) skipInlineImage() error {
	for {
		tok, err := t.lex.Next()
		if err != nil {
			return err
		}
		if tok.Kind == core.TokEOF {
			return nil
		}
		if tok.Kind == core.TokKeyword && string(tok.Payload) == "ID" {
			break
		}
	}
	return t.scanToEI()
}

func (t *tokenizer) scanToEI() error {
	var prev byte
	for {
		b, ok := t.lex.NextByte()
		if !ok {
			return nil
		}
		before := prev
		prev = b
		if b != 'E' {
			continue
		}
		switch before {
		case ' ', '\t', '\r', '\n', '\f':
		default:
			continue
		}
		save := t.lex.Offset()
		b2, ok := t.lex.NextByte()
		if ok && b2 == 'I' {
			return nil
		}
		t.lex.Seek(save)
	}
}
