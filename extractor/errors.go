package extractor

import (
	"fmt"

	"github.com/corpusreader/pdftext/core"
)

// Kind classifies an Error the way callers of the public extraction API
// distinguish failures: whether a retry with a password could help, whether
// other pages are still extractable, and so on.
type Kind string

// Recognized error kinds.
const (
	KindIO                Kind = "io"
	KindParse             Kind = "parse"
	KindEncryption        Kind = "encryption"
	KindUnsupportedFeature Kind = "unsupported_feature"
	KindLimitExceeded     Kind = "limit_exceeded"
	KindRecursionDepth    Kind = "recursion_depth"
)

// Error is the error type returned across the package boundary: Open,
// Page.ExtractText, Page.ExtractBlocks, Page.ExtractGlyphs and
// Page.ExtractFormFields all fail with one of these rather than a bare
// core or model error, so a caller can switch on Kind without importing
// core. Offset is set when the underlying failure carries a byte position;
// Reference is set when it carries an object number instead.
type Error struct {
	Kind      Kind
	Offset    int64
	Reference string
	Reason    string
}

func (e *Error) Error() string {
	switch {
	case e.Reference != "":
		return fmt.Sprintf("%s: %s (object %s)", e.Kind, e.Reason, e.Reference)
	case e.Offset != 0:
		return fmt.Sprintf("%s: %s (offset %d)", e.Kind, e.Reason, e.Offset)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

// wrapError maps the core/model error hierarchy onto the public Kind
// surface. Parse, Filter and Limit failures are fatal to the failing page
// only; Encryption and Recursion failures are fatal to the whole Document.
// The caller decides which applies -- wrapError just classifies.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch v := err.(type) {
	case *core.ParseError:
		return &Error{Kind: KindParse, Offset: v.Offset, Reason: v.Reason}
	case *core.LexError:
		return &Error{Kind: KindParse, Offset: v.Offset, Reason: v.Reason}
	case *core.LimitError:
		return &Error{Kind: KindLimitExceeded, Reason: v.Error()}
	case *core.RecursionError:
		return &Error{Kind: KindRecursionDepth, Reason: v.Error()}
	case *core.EncryptionError:
		return &Error{Kind: KindEncryption, Reason: v.Reason}
	case *Error:
		return v
	default:
		return &Error{Kind: KindIO, Reason: err.Error()}
	}
}
