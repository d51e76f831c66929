// Package core implements the binary PDF object model: lexing, object
// parsing, cross-reference resolution and stream filter decoding.
package core

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Object is the tagged-variant interface implemented by every PDF primitive
// value: Null, Bool, Int, Real, LString, HexString, Name, Array, Dict,
// Stream and Ref. Operations on Object branch on the concrete type; no
// inheritance hierarchy is needed (see DESIGN.md).
type Object interface {
	String() string
	WriteString() string
}

// Null represents the PDF null object.
type Null struct{}

func (Null) String() string     { return "null" }
func (Null) WriteString() string { return "null" }

// Bool represents a PDF boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) WriteString() string { return b.String() }

// Integer represents a 64-bit signed PDF integer.
type Integer int64

func (i Integer) String() string      { return fmt.Sprintf("%d", int64(i)) }
func (i Integer) WriteString() string { return strconv.FormatInt(int64(i), 10) }

// Real represents an IEEE-754 double PDF numeric object.
type Real float64

func (r Real) String() string      { return fmt.Sprintf("%f", float64(r)) }
func (r Real) WriteString() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String is a PDF string object: raw bytes exactly as they appeared between
// the literal-string parens or hex-string angle brackets, before any text
// decoding (PDFDocEncoding / UTF-16BE / font encoding) is applied.
type String struct {
	val   []byte
	isHex bool
}

// NewLiteralString wraps raw decoded literal-string bytes.
func NewLiteralString(b []byte) *String { return &String{val: b} }

// NewHexString wraps raw decoded hex-string bytes.
func NewHexString(b []byte) *String { return &String{val: b, isHex: true} }

// Bytes returns the raw string bytes.
func (s *String) Bytes() []byte { return s.val }

// SetBytes replaces the raw string bytes in place. Used by the Standard
// Security Handler to decrypt literal/hex strings found while walking a
// freshly parsed indirect object (core/security.go), mutating the value in
// place rather than rebuilding the surrounding object graph.
func (s *String) SetBytes(b []byte) { s.val = b }

// String implements fmt.Stringer for debugging; it does not decode text.
func (s *String) String() string { return string(s.val) }

// WriteString outputs the literal or hex PDF syntax for the string.
func (s *String) WriteString() string {
	if s.isHex {
		return "<" + hex.EncodeToString(s.val) + ">"
	}
	var buf bytes.Buffer
	buf.WriteByte('(')
	for _, c := range s.val {
		switch c {
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '(':
			buf.WriteString(`\(`)
		case ')':
			buf.WriteString(`\)`)
		case '\\':
			buf.WriteString(`\\`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

// Name is a PDF name object: a byte sequence identifying a dictionary key or
// a resource, with any `#xx` hex escapes already decoded.
type Name string

func (n Name) String() string      { return string(n) }
func (n Name) WriteString() string { return "/" + string(n) }

// Array is an ordered sequence of Objects.
type Array struct {
	elements []Object
}

// NewArray builds an Array from the given elements.
func NewArray(elements ...Object) *Array { return &Array{elements: elements} }

// Elements returns the underlying element slice.
func (a *Array) Elements() []Object {
	if a == nil {
		return nil
	}
	return a.elements
}

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.elements)
}

// Get returns the i-th element, or nil if out of bounds.
func (a *Array) Get(i int) Object {
	if a == nil || i < 0 || i >= len(a.elements) {
		return nil
	}
	return a.elements[i]
}

// Append adds an element to the array.
func (a *Array) Append(o Object) { a.elements = append(a.elements, o) }

func (a *Array) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range a.elements {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(']')
	return buf.String()
}

func (a *Array) WriteString() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range a.elements {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(e.WriteString())
	}
	buf.WriteByte(']')
	return buf.String()
}

// Dict is a PDF dictionary: a mapping from Name to Object. Insertion order
// is preserved only so WriteString output is stable for tests; it carries
// no semantic meaning data model.
type Dict struct {
	m    map[Name]Object
	keys []Name

	// resolver is used for lazily resolving references found within the
	// dictionary (used by the Font Resolver and Structure-Tree Reader,
	// which both walk dictionaries obtained from page resources).
	resolver Resolver
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{m: map[Name]Object{}}
}

// SetResolver attaches the reference resolver used by Resolve-suffixed
// accessors (Get returns the direct object or reference unresolved).
func (d *Dict) SetResolver(r Resolver) { d.resolver = r }

// Set assigns key to value, preserving first-insertion key order.
func (d *Dict) Set(key Name, val Object) {
	if d.m == nil {
		d.m = map[Name]Object{}
	}
	if _, exists := d.m[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.m[key] = val
}

// Get returns the object at key without resolving references, or nil.
func (d *Dict) Get(key Name) Object {
	if d == nil || d.m == nil {
		return nil
	}
	return d.m[key]
}

// GetResolved returns the object at key with a single level of indirect
// reference resolution applied via the attached Resolver.
func (d *Dict) GetResolved(key Name) Object {
	obj := d.Get(key)
	if ref, ok := obj.(*Reference); ok && d.resolver != nil {
		resolved, err := d.resolver.Resolve(ref)
		if err != nil {
			return nil
		}
		return resolved
	}
	return obj
}

// Keys returns the dictionary's keys in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return d.keys
}

func (d *Dict) String() string {
	var buf bytes.Buffer
	buf.WriteString("<<")
	for _, k := range d.keys {
		fmt.Fprintf(&buf, "/%s %s ", k, d.m[k].String())
	}
	buf.WriteString(">>")
	return buf.String()
}

func (d *Dict) WriteString() string {
	var buf bytes.Buffer
	buf.WriteString("<<")
	for _, k := range d.keys {
		fmt.Fprintf(&buf, "%s %s", Name(k).WriteString(), d.m[k].WriteString())
	}
	buf.WriteString(">>")
	return buf.String()
}

// Stream is a Dict plus its raw (still filter-encoded) byte body. Decoded
// contents are computed on demand and cached (Object invariants).
type Stream struct {
	*Dict
	Raw []byte

	decoded    []byte
	decodedErr error
	hasDecoded bool
}

// NewStream wraps a dictionary and its raw body.
func NewStream(dict *Dict, raw []byte) *Stream {
	return &Stream{Dict: dict, Raw: raw}
}

func (s *Stream) String() string {
	return fmt.Sprintf("Stream(%s, %d bytes)", s.Dict.String(), len(s.Raw))
}
func (s *Stream) WriteString() string { return s.Dict.WriteString() }

// Reference is an indirect object reference (object number, generation
// number). It resolves through the owning Resolver to at most one concrete
// object; resolution is idempotent and cycle-checked (see Resolver).
type Reference struct {
	ObjectNumber     int64
	GenerationNumber int64
	resolver         Resolver
}

// NewReference builds a Reference bound to the given resolver.
func NewReference(num, gen int64, r Resolver) *Reference {
	return &Reference{ObjectNumber: num, GenerationNumber: gen, resolver: r}
}

func (r *Reference) String() string {
	return fmt.Sprintf("Ref(%d %d)", r.ObjectNumber, r.GenerationNumber)
}
func (r *Reference) WriteString() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// Resolve follows the reference through its resolver. A reference with no
// resolver attached (constructed outside of parsing) resolves to Null.
func (r *Reference) Resolve() Object {
	if r.resolver == nil {
		return Null{}
	}
	obj, err := r.resolver.Resolve(r)
	if err != nil || obj == nil {
		return Null{}
	}
	return obj
}

// Resolver resolves indirect references to concrete objects, bounding
// recursion at a fixed ceiling ( default 100).
type Resolver interface {
	Resolve(ref *Reference) (Object, error)
}

// ObjectStore is the object graph surface the document model builds on:
// reference resolution plus the trailer dictionary and the
// diagnostic-warning channel soft-failing components append to. The value
// returned by Open satisfies this interface.
type ObjectStore interface {
	Resolver
	Trailer() *Dict
	Warnings() []string
	Warnf(format string, args ...interface{})
}

// Accessor helpers: each unwraps one level of indirection via the
// parser-bound Reference and performs a type assertion, returning
// ok=false rather than panicking on mismatch so callers can apply their
// own fallback.

func resolve(o Object) Object {
	if ref, ok := o.(*Reference); ok {
		return ref.Resolve()
	}
	return o
}

// GetDict type-asserts o (resolving one reference) as a dictionary. Streams
// also satisfy this since their Dict is embedded.
func GetDict(o Object) (*Dict, bool) {
	switch v := resolve(o).(type) {
	case *Dict:
		return v, true
	case *Stream:
		return v.Dict, true
	}
	return nil, false
}

// GetArray type-asserts o as an array.
func GetArray(o Object) (*Array, bool) {
	v, ok := resolve(o).(*Array)
	return v, ok
}

// GetStream type-asserts o as a stream.
func GetStream(o Object) (*Stream, bool) {
	v, ok := resolve(o).(*Stream)
	return v, ok
}

// GetName type-asserts o as a name and returns its string value.
func GetName(o Object) (string, bool) {
	v, ok := resolve(o).(Name)
	return string(v), ok
}

// GetStringBytes type-asserts o as a string and returns its raw bytes.
func GetStringBytes(o Object) ([]byte, bool) {
	v, ok := resolve(o).(*String)
	if !ok {
		return nil, false
	}
	return v.Bytes(), true
}

// GetInt type-asserts o as an integer.
func GetInt(o Object) (int64, bool) {
	v, ok := resolve(o).(Integer)
	return int64(v), ok
}

// GetNumberAsFloat coerces an Integer or Real to float64.
func GetNumberAsFloat(o Object) (float64, bool) {
	switch v := resolve(o).(type) {
	case Integer:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// GetBool type-asserts o as a boolean.
func GetBool(o Object) (bool, bool) {
	v, ok := resolve(o).(Bool)
	return bool(v), ok
}

// IsNull reports whether o is the Null object (after resolution).
func IsNull(o Object) bool {
	if o == nil {
		return true
	}
	_, ok := resolve(o).(Null)
	return ok
}
