package recon

import "github.com/vango-dev/retree/pkg/ident"

// NodeInfo is a read-only copy of one live node.
type NodeInfo struct {
	ID        ident.Id   `json:"id"`
	Label     string     `json:"label"`
	Slot      int        `json:"slot"`
	Parent    ident.Id   `json:"parent"`
	Depth     int        `json:"depth"`
	Children  []ident.Id `json:"children,omitempty"`
	LastFrame uint64     `json:"lastFrame"`
	Params    any        `json:"params,omitempty"`
}

// Snapshot copies every live node in slot order.
func (t *Tree[P]) Snapshot() []NodeInfo {
	out := make([]NodeInfo, 0, t.table.len())
	for i := range t.table.nodes {
		n := &t.table.nodes[i]
		if !n.live {
			continue
		}
		info := NodeInfo{
			ID:        n.id,
			Label:     n.label,
			Slot:      i,
			Depth:     n.depth,
			LastFrame: n.lastFrame,
			Params:    n.params,
		}
		if n.parent != noSlot {
			info.Parent = t.table.nodes[n.parent].id
		}
		if len(n.children) > 0 {
			info.Children = make([]ident.Id, len(n.children))
			for j, c := range n.children {
				info.Children[j] = t.table.nodes[c].id
			}
		}
		out = append(out, info)
	}
	return out
}

// Walk visits the nodes reachable from the root depth-first in declaration
// order. Returning false from fn skips the node's children.
func (t *Tree[P]) Walk(fn func(h Handle[P]) bool) {
	var visit func(slot int32)
	visit = func(slot int32) {
		if !fn(t.handle(slot)) {
			return
		}
		for _, c := range t.table.nodes[slot].children {
			visit(c)
		}
	}
	visit(rootSlot)
}
