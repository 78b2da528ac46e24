package recon

import "github.com/vango-dev/retree/pkg/ident"

// Handle refers to a node resolved during declaration. It is meant to be
// used within the frame that produced it; across frames keep the Id and
// re-resolve with Tree.LookupID.
//
// The zero Handle is returned on misuse; its methods do nothing.
type Handle[P any] struct {
	tree  *Tree[P]
	slot  int32
	id    ident.Id
	label string
}

// IsZero reports whether h is the zero Handle.
func (h Handle[P]) IsZero() bool {
	return h.tree == nil
}

// ID returns the node's effective id.
func (h Handle[P]) ID() ident.Id {
	return h.id
}

// Label returns the node's debug label.
func (h Handle[P]) Label() string {
	return h.label
}

// Slot returns the arena slot. Slots are reused after pruning.
func (h Handle[P]) Slot() int {
	return int(h.slot)
}

// node returns the node, panicking if h is stale.
func (h Handle[P]) node() *node[P] {
	return h.tree.table.at(h.slot, h.id, h.label)
}

// Valid reports whether the node behind h is still live.
func (h Handle[P]) Valid() bool {
	if h.tree == nil || h.slot < 0 || int(h.slot) >= len(h.tree.table.nodes) {
		return false
	}
	n := &h.tree.table.nodes[h.slot]
	return n.live && n.id == h.id
}

// Depth returns the node's depth as of its last placement.
func (h Handle[P]) Depth() int {
	if h.tree == nil {
		return 0
	}
	return h.node().depth
}

// Params returns a copy of the node's parameters. Parameters persist across
// frames until replaced.
func (h Handle[P]) Params() P {
	if h.tree == nil {
		var zero P
		return zero
	}
	return h.node().params
}

// SetParams replaces the node's parameters. If the node existed on an
// earlier frame and the parameters differ, a cosmetic update is recorded.
func (h Handle[P]) SetParams(p P) Handle[P] {
	if h.tree == nil {
		return h
	}
	n := h.node()
	changed := !n.fresh && !n.skipped && !h.tree.equal(n.params, p)
	n.params = p
	if changed {
		h.tree.changes.markCosmetic(n.id, n.label)
		h.tree.stats.Cosmetic++
	}
	return h
}

// Update applies fn to the node's parameters, with the same cosmetic
// detection as SetParams.
func (h Handle[P]) Update(fn func(*P)) Handle[P] {
	if h.tree == nil {
		return h
	}
	p := h.node().params
	fn(&p)
	return h.SetParams(p)
}

// MarkCosmetic records a cosmetic update for the node unconditionally.
func (h Handle[P]) MarkCosmetic() Handle[P] {
	if h.tree == nil {
		return h
	}
	n := h.node()
	h.tree.changes.markCosmetic(n.id, n.label)
	h.tree.stats.Cosmetic++
	return h
}

// Parent returns the id of the node's parent in the current frame.
func (h Handle[P]) Parent() (ident.Id, bool) {
	if h.tree == nil {
		return ident.Root, false
	}
	n := h.node()
	if n.parent == noSlot {
		return ident.Root, false
	}
	return h.tree.table.nodes[n.parent].id, true
}

// Children returns the ids of the node's children in declaration order.
func (h Handle[P]) Children() []ident.Id {
	if h.tree == nil {
		return nil
	}
	n := h.node()
	ids := make([]ident.Id, len(n.children))
	for i, slot := range n.children {
		ids[i] = h.tree.table.nodes[slot].id
	}
	return ids
}

// Nest makes the node the current parent while fn runs. Nodes added inside
// fn become its children. The scope is closed when fn returns or panics.
//
// Nest returns the frame's first misuse so far.
func (h Handle[P]) Nest(fn func()) error {
	t := h.tree
	if t == nil {
		return &MisuseError{Op: "nest", Err: ErrNotDeclaring}
	}
	if !t.declaring {
		err := misuse("nest", ident.FromId(h.id, h.label), ErrNotDeclaring)
		t.record(err)
		return err
	}
	n := h.node()
	if n.lastFrame != t.frame {
		err := misuse("nest", ident.FromId(h.id, h.label), ErrNotDeclared)
		t.record(err)
		return err
	}
	if n.nested {
		err := misuse("nest", ident.FromId(h.id, h.label), ErrAlreadyNested)
		t.record(err)
		return err
	}
	n.nested = true
	n.children = n.children[:0]

	depth := len(t.stack)
	t.stack = append(t.stack, cursor{slot: h.slot, acc: ident.ChildrenSeed, tracked: t.skip == 0})
	defer t.popScope(depth)

	fn()
	return t.err
}

// popScope closes the scope pushed at depth.
func (t *Tree[P]) popScope(depth int) {
	if len(t.stack) != depth+1 {
		panic("[RETREE E012] parent stack corrupted: scope closed out of order")
	}
	c := t.stack[depth]
	t.stack = t.stack[:depth]
	t.closeScope(c)
}
