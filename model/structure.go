package model

import "github.com/corpusreader/pdftext/core"

// StructElemType is a standard structure type tag (P, H1..H6,
// L, LI, Figure, Table, Artifact, WB and the rest of the thirty-five
// standard types).
type StructElemType string

// ArtifactSubtype classifies the content bracketed by a /Artifact marked
// content sequence ("Marked-content operators").
type ArtifactSubtype string

// Recognized artifact subtypes. An Artifact with an unrecognized or absent
// /Subtype is still treated as an artifact ("unknown-subtype
// tolerance"); it is just reported as ArtifactOther.
const (
	ArtifactPagination ArtifactSubtype = "Pagination"
	ArtifactLayout     ArtifactSubtype = "Layout"
	ArtifactBackground ArtifactSubtype = "Background"
	ArtifactOther      ArtifactSubtype = ""
)

// StructElem is one node of the logical structure tree.
type StructElem struct {
	Type     StructElemType
	Children []*StructElem

	Alt, ActualText, Expansion, Lang string

	// Page is the 0-based page index this element's content belongs to, or
	// -1 if /Pg is absent or unresolved (inherited from the nearest
	// ancestor that declared one, per ISO 32000-1 14.7.2).
	Page int

	// MCIDs lists the marked-content IDs this element directly references
	// (via an integer /K entry or an MCR dictionary), in document order.
	// Descendants' MCIDs are not included; StructTree.PageMCIDOrder holds
	// the page-wide order.
	MCIDs []int
}

// StructTree is the parsed forest rooted at the catalog's /StructTreeRoot,
// plus the per-page reading-order index the layout analyzer consults when
// Document.TrustStructureTree reports true.
type StructTree struct {
	Roots []*StructElem

	// pageMCIDOrder[i] lists page i's MCIDs in structure-tree (logical
	// reading) order, built by a pre-order walk of Roots.
	pageMCIDOrder map[int][]int
}

// PageMCIDOrder returns page index i's MCIDs in structure-tree reading
// order. Returns nil if the tree carries no MCIDs for that page (e.g. the
// page has no tagged content, or the whole document is untagged).
func (t *StructTree) PageMCIDOrder(page int) []int {
	if t == nil {
		return nil
	}
	return t.pageMCIDOrder[page]
}

const maxStructDepth = 128

// StructTree returns the document's parsed logical structure tree, or nil
// if the catalog has no /StructTreeRoot. The result is built once and
// cached (forest is read-only once produced).
func (d *Document) StructTree() *StructTree {
	if d.structLoaded {
		return d.structTree
	}
	d.structLoaded = true

	root, ok := core.GetDict(d.catalog.Get("StructTreeRoot"))
	if !ok {
		return nil
	}
	tree := &StructTree{pageMCIDOrder: map[int][]int{}}
	visited := map[*core.Dict]bool{}

	kArr, _ := core.GetArray(root.Get("K"))
	if kArr != nil {
		for _, kObj := range kArr.Elements() {
			if elemDict, ok := core.GetDict(kObj); ok {
				if e := d.walkStructElem(elemDict, -1, visited, tree, 0); e != nil {
					tree.Roots = append(tree.Roots, e)
				}
			}
		}
	}
	d.structTree = tree
	return tree
}

// walkStructElem parses one /StructElem dictionary and recurses into /K.
// inheritedPage carries the nearest ancestor's resolved /Pg down to
// children that omit their own (ISO 32000-1 14.7.2: "If the Pg entry is
// absent, the element's page ... shall be inherited").
func (d *Document) walkStructElem(dict *core.Dict, inheritedPage int, visited map[*core.Dict]bool, tree *StructTree, depth int) *StructElem {
	if depth > maxStructDepth {
		d.Warnf("structure tree: recursion ceiling hit, truncating subtree")
		return nil
	}
	if visited[dict] {
		d.Warnf("structure tree: cyclic reference detected, skipping repeated element")
		return nil
	}
	visited[dict] = true

	typeName, _ := core.GetName(dict.Get("S"))
	e := &StructElem{
		Type:       StructElemType(typeName),
		Alt:        decodeTextField(dict, "Alt"),
		ActualText: decodeTextField(dict, "ActualText"),
		Expansion:  decodeTextField(dict, "E"),
		Lang:       decodeTextField(dict, "Lang"),
		Page:       inheritedPage,
	}
	if pageDict, ok := core.GetDict(dict.Get("Pg")); ok {
		if idx, ok := d.pageIndexByNode[pageDict]; ok {
			e.Page = idx
		}
	}

	kObj := dict.Get("K")
	switch k := resolveOne(kObj).(type) {
	case core.Integer:
		d.recordMCID(e, e.Page, int(k), tree)
	case *core.Dict:
		d.walkStructKid(k, e, visited, tree, depth)
	case *core.Array:
		for _, kid := range k.Elements() {
			switch v := resolveOne(kid).(type) {
			case core.Integer:
				d.recordMCID(e, e.Page, int(v), tree)
			case *core.Dict:
				d.walkStructKid(v, e, visited, tree, depth)
			}
		}
	}
	return e
}

// walkStructKid dispatches a /K dictionary entry: either a nested
// /StructElem, or an MCR/OBJR marked-content reference dictionary.
func (d *Document) walkStructKid(kid *core.Dict, parent *StructElem, visited map[*core.Dict]bool, tree *StructTree, depth int) {
	typeName, _ := core.GetName(kid.Get("Type"))
	switch typeName {
	case "MCR":
		page := parent.Page
		if pageDict, ok := core.GetDict(kid.Get("Pg")); ok {
			if idx, ok := d.pageIndexByNode[pageDict]; ok {
				page = idx
			}
		}
		if mcid, ok := core.GetInt(kid.Get("MCID")); ok {
			d.recordMCID(parent, page, int(mcid), tree)
		}
	case "OBJR":
		// Object references (e.g. to an annotation) carry no MCID; the
		// referenced object is rendered independently of the glyph stream,
		// so there is nothing to fold into reading order here.
	default:
		if child := d.walkStructElem(kid, parent.Page, visited, tree, depth+1); child != nil {
			parent.Children = append(parent.Children, child)
		}
	}
}

// resolveOne follows a single indirect reference, the same one-level
// unwrap core.GetDict/GetArray/GetInt apply, for /K entries whose dynamic
// type (integer, dictionary or array) must be switched on directly.
func resolveOne(o core.Object) core.Object {
	if ref, ok := o.(*core.Reference); ok {
		return ref.Resolve()
	}
	return o
}

func (d *Document) recordMCID(e *StructElem, page, mcid int, tree *StructTree) {
	e.MCIDs = append(e.MCIDs, mcid)
	if page >= 0 {
		tree.pageMCIDOrder[page] = append(tree.pageMCIDOrder[page], mcid)
	}
}
