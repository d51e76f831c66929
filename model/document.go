// Package model implements the parsed document's object-level view: the
// catalog/page-tree walk with resource inheritance, per-document font
// caching, and the logical structure tree used by the layout analyzer's
// reading-order resolution.
package model

import (
	"github.com/corpusreader/pdftext/common"
	"github.com/corpusreader/pdftext/core"
)

// Document is the parsed object graph plus the catalog-level structures
// Document owns: page tree, metadata, MarkInfo, encryption
// state, and (lazily) the structure tree. It is mutable only during Open;
// read-only thereafter (Document invariants).
type Document struct {
	store   core.ObjectStore
	limits  core.Limits
	catalog *core.Dict

	pageRefs []*core.Dict // flattened page-tree leaves, in document order
	pages    []*Page      // lazily built, same indices as pageRefs

	// pageIndexByNode maps the original (pre-inheritance-copy) page
	// dictionary to its index, so outline /Dest and structure-tree /Pg
	// references -- which point at the original node, not the
	// inheritance-resolved copy in pageRefs -- can still be resolved to a
	// page index.
	pageIndexByNode map[*core.Dict]int

	fontCache map[*core.Dict]*Font // keyed by the font dictionary's identity

	structTree   *StructTree
	structLoaded bool

	majorVersion, minorVersion int
}

// OpenOptions configures Open.
type OpenOptions struct {
	Password string
	Limits   core.Limits
}

// DefaultOpenOptions returns conservative default Limits with no
// password.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{Limits: core.DefaultLimits()}
}

// Open parses buf as a PDF 1.0-1.7 document: leading garbage up to 1KB,
// trailing garbage, and incrementally updated xref chains are all
// tolerated in the default lenient mode (core.Open's repair-scan
// fallback). A document that fails to open returns an error carrying the
// byte offset of the first parse failure.
func Open(buf []byte, opts OpenOptions) (*Document, error) {
	if opts.Limits == (core.Limits{}) {
		opts.Limits = core.DefaultLimits()
	}
	store, err := core.OpenWithPassword(buf, opts.Limits, opts.Password)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		store:           store,
		limits:          opts.Limits,
		fontCache:       map[*core.Dict]*Font{},
		pageIndexByNode: map[*core.Dict]int{},
	}
	doc.majorVersion, doc.minorVersion = parseVersion(buf)

	rootObj := store.Trailer().Get("Root")
	catalog, ok := core.GetDict(rootObj)
	if !ok {
		return nil, &core.ParseError{Reason: "trailer /Root does not resolve to a dictionary"}
	}
	doc.catalog = catalog

	pagesRoot, ok := core.GetDict(catalog.Get("Pages"))
	if !ok {
		return nil, &core.ParseError{Reason: "catalog /Pages does not resolve to a dictionary"}
	}
	if err := doc.flattenPageTree(pagesRoot, inherited{}, map[*core.Dict]bool{}, 0); err != nil {
		return nil, err
	}
	return doc, nil
}

// inherited carries the page-tree attributes that propagate down from
// ancestor /Pages nodes when a leaf /Page omits them: /Resources,
// /MediaBox, /CropBox and /Rotate.
type inherited struct {
	resources *core.Dict
	mediaBox  *core.Array
	cropBox   *core.Array
	rotate    *int64
}

const maxPageTreeDepth = 100

func (d *Document) flattenPageTree(node *core.Dict, inh inherited, visited map[*core.Dict]bool, depth int) error {
	if depth > maxPageTreeDepth {
		return &core.RecursionError{Ceiling: maxPageTreeDepth}
	}
	if visited[node] {
		common.Log.Debug("page tree cycle detected; skipping repeated node")
		return nil
	}
	visited[node] = true

	if res, ok := core.GetDict(node.Get("Resources")); ok {
		inh.resources = res
	}
	if mb, ok := core.GetArray(node.Get("MediaBox")); ok {
		inh.mediaBox = mb
	}
	if cb, ok := core.GetArray(node.Get("CropBox")); ok {
		inh.cropBox = cb
	}
	if rot, ok := core.GetInt(node.Get("Rotate")); ok {
		inh.rotate = &rot
	}

	typeName, _ := core.GetName(node.Get("Type"))
	kidsArr, hasKids := core.GetArray(node.Get("Kids"))
	if typeName == "Pages" || (hasKids && typeName != "Page") {
		if !hasKids {
			return nil
		}
		if int64(len(d.pageRefs))+kidsArr.Len() > d.limits.MaxObjects {
			return &core.LimitError{Limit: "max_objects", Value: int64(len(d.pageRefs)) + int64(kidsArr.Len()), Max: d.limits.MaxObjects}
		}
		for _, kidObj := range kidsArr.Elements() {
			kid, ok := core.GetDict(kidObj)
			if !ok {
				continue
			}
			if err := d.flattenPageTree(kid, inh, visited, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	// Leaf page: stamp the dictionary with whatever it didn't declare
	// itself so later readers (Page, extractor) never need the ancestor
	// chain again.
	leaf := core.NewDict()
	leaf.SetResolver(d.store)
	for _, k := range node.Keys() {
		leaf.Set(k, node.Get(k))
	}
	if leaf.Get("Resources") == nil && inh.resources != nil {
		leaf.Set("Resources", inh.resources)
	}
	if leaf.Get("MediaBox") == nil && inh.mediaBox != nil {
		leaf.Set("MediaBox", inh.mediaBox)
	}
	if leaf.Get("CropBox") == nil && inh.cropBox != nil {
		leaf.Set("CropBox", inh.cropBox)
	}
	if leaf.Get("Rotate") == nil && inh.rotate != nil {
		leaf.Set("Rotate", core.Integer(*inh.rotate))
	}
	d.pageIndexByNode[node] = len(d.pageRefs)
	d.pageRefs = append(d.pageRefs, leaf)
	return nil
}

// PageCount returns the number of leaf pages found while flattening the
// page tree.
func (d *Document) PageCount() int { return len(d.pageRefs) }

// Limits returns the resource ceilings this Document was opened with, for
// sibling packages that decode further streams on the Document's behalf
// (contentstream's Form XObject recursion).
func (d *Document) Limits() core.Limits { return d.limits }

// Version returns the PDF version declared in the file header.
func (d *Document) Version() (int, int) { return d.majorVersion, d.minorVersion }

// Warnings returns every diagnostic accumulated while opening and while
// soft-failing components (font resolution, structure-tree reading)
// degraded their output instead of failing the whole document.
func (d *Document) Warnings() []string { return d.store.Warnings() }

// Resolve exposes the underlying object store's reference resolution to
// sibling packages (contentstream, extractor) that need to chase
// references found in resources/annotations without re-deriving a store.
func (d *Document) Resolve(ref *core.Reference) (core.Object, error) {
	return d.store.Resolve(ref)
}

// Warnf records a soft-failure diagnostic: font and structure-tree
// errors degrade the result rather than aborting extraction, and are
// surfaced to the caller through Warnings instead.
func (d *Document) Warnf(format string, args ...interface{}) {
	d.store.Warnf(format, args...)
}

func parseVersion(buf []byte) (int, int) {
	// "%PDF-M.N" appears within the first 1KB (tolerates up to
	// 1KB of leading garbage before it).
	limit := len(buf)
	if limit > 1024+8 {
		limit = 1024 + 8
	}
	head := buf[:limit]
	idx := indexOf(head, "%PDF-")
	if idx < 0 || idx+8 > len(head) {
		return 1, 7
	}
	major := int(head[idx+5] - '0')
	minor := int(head[idx+7] - '0')
	if major < 1 || major > 2 {
		return 1, 7
	}
	return major, minor
}

func indexOf(b []byte, s string) int {
	for i := 0; i+len(s) <= len(b); i++ {
		if string(b[i:i+len(s)]) == s {
			return i
		}
	}
	return -1
}
