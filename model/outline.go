package model

import "github.com/corpusreader/pdftext/core"

// OutlineNode is one bookmark in the document outline tree.
type OutlineNode struct {
	Title    string
	Children []*OutlineNode

	// DestPage is the 0-based index of the page this bookmark targets, or
	// -1 if it could not be resolved (an action type the core doesn't
	// follow, or a broken reference).
	DestPage int
}

// Outline returns the document's bookmark tree rooted at /Root /Outlines,
// or nil if the catalog declares none. Outline actions are sometimes
// indirectly referenced, so every /A and /Dest entry is resolved through
// the object store rather than assumed to be an inline dictionary or array.
func (d *Document) Outline() []*OutlineNode {
	root, ok := core.GetDict(d.catalog.Get("Outlines"))
	if !ok {
		return nil
	}
	first, ok := core.GetDict(root.Get("First"))
	if !ok {
		return nil
	}
	return d.walkOutlineSiblings(first, map[*core.Dict]bool{}, 0)
}

const maxOutlineDepth = 64

func (d *Document) walkOutlineSiblings(node *core.Dict, visited map[*core.Dict]bool, depth int) []*OutlineNode {
	if depth > maxOutlineDepth {
		return nil
	}
	var out []*OutlineNode
	for node != nil {
		if visited[node] {
			break
		}
		visited[node] = true

		n := &OutlineNode{
			Title:    decodeTextField(node, "Title"),
			DestPage: d.resolveOutlineDestPage(node),
		}
		if first, ok := core.GetDict(node.Get("First")); ok {
			n.Children = d.walkOutlineSiblings(first, visited, depth+1)
		}
		out = append(out, n)

		next, ok := core.GetDict(node.Get("Next"))
		if !ok {
			break
		}
		node = next
	}
	return out
}

// resolveOutlineDestPage resolves an outline item's target page, following
// /Dest directly or /A (a Go-To action dictionary) through the object
// store, never assuming either is inline.
func (d *Document) resolveOutlineDestPage(node *core.Dict) int {
	dest := node.GetResolved("Dest")
	if dest == nil {
		if action, ok := core.GetDict(node.Get("A")); ok {
			if t, _ := core.GetName(action.Get("S")); t == "GoTo" {
				dest = action.GetResolved("D")
			}
		}
	}
	return d.destToPageIndex(dest)
}

func (d *Document) destToPageIndex(dest core.Object) int {
	var pageObj core.Object
	switch v := dest.(type) {
	case *core.Array:
		if v.Len() > 0 {
			pageObj = v.Get(0)
		}
	case *core.String:
		// Named destination: resolving through /Root /Names /Dests would
		// require walking a name tree; out of scope for this core's
		// read-only outline surface (the caller still gets the title).
		return -1
	default:
		pageObj = dest
	}
	pageDict, ok := core.GetDict(pageObj)
	if !ok {
		return -1
	}
	if i, ok := d.pageIndexByNode[pageDict]; ok {
		return i
	}
	return -1
}
