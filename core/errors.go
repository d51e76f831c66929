package core

import "fmt"

// Sentinel errors returned by the object parser and stream decoder. Callers
// are expected to compare with errors.Is/xerrors.Is since some are wrapped
// with positional context.
var (
	ErrTypeError     = fmt.Errorf("type check error")
	ErrRangeError    = fmt.Errorf("range check error")
	ErrNotSupported  = fmt.Errorf("feature not supported")
	ErrEncrypted     = fmt.Errorf("could not access, encrypted")
	ErrRecursionDepth = fmt.Errorf("recursion depth exceeded")
)

// LexError is raised by the Lexer on unterminated literal strings, malformed
// hex strings, or a stray '>'. Malformed numbers are parsed leniently and
// never raise it. Offset is relative to the start of the buffer the Lexer
// was constructed over.
type LexError struct {
	Offset int64
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Offset, e.Reason)
}

// ParseError describes a malformed-bytes failure at a specific file offset,
// satisfying Error::Parse(offset, reason).
type ParseError struct {
	Offset int64
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Reason)
}

// LimitError is returned when a configured resource ceiling (file size,
// object count, string/array length, decompressed size, filter chain
// length) is exceeded.
type LimitError struct {
	Limit string
	Value int64
	Max   int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("limit exceeded: %s (%d > %d)", e.Limit, e.Value, e.Max)
}

// RecursionError is returned when reference resolution, XObject invocation,
// or structure-tree traversal exceeds its configured depth ceiling.
type RecursionError struct {
	Ceiling int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("recursion depth exceeded ceiling of %d", e.Ceiling)
}

// EncryptionError wraps a failure in the Standard Security Handler, e.g. a
// wrong password or an unsupported revision.
type EncryptionError struct {
	Reason string
}

func (e *EncryptionError) Error() string {
	return "encryption error: " + e.Reason
}
