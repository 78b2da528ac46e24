package recon

import "github.com/vango-dev/retree/pkg/ident"

// noSlot marks a missing parent link.
const noSlot int32 = -1

// rootSlot is the slot permanently held by the root node.
const rootSlot int32 = 0

// node is one slot of the table.
type node[P any] struct {
	params P

	id    ident.Id
	label string
	live  bool

	// Linkage, rebuilt every frame.
	parent   int32
	children []int32
	depth    int

	// lastFrame is the most recent frame that declared this id.
	lastFrame uint64

	// twins counts re-declarations of this id in lastFrame.
	twins uint32

	// childrenHash is the children hash recorded the last time this node
	// was nested with tracking enabled.
	childrenHash uint64

	// Per-frame flags.
	fresh    bool // inserted this frame
	attached bool // has a parent this frame
	nested   bool // Nest was called this frame
	skipped  bool // declared under a reactive skip
}

// resolution is the outcome of table.resolve.
type resolution uint8

const (
	resolvedInserted resolution = iota
	resolvedRefreshed
	resolvedDuplicate
)

// table is the slot arena plus the id index.
type table[P any] struct {
	nodes []node[P]
	free  []int32
	index map[ident.Id]int32
}

func newTable[P any](capacity int) table[P] {
	if capacity < 1 {
		capacity = 1
	}
	t := table[P]{
		nodes: make([]node[P], 0, capacity),
		index: make(map[ident.Id]int32, capacity),
	}
	t.nodes = append(t.nodes, node[P]{
		id:           ident.Root,
		label:        "root",
		live:         true,
		parent:       noSlot,
		childrenHash: ident.ChildrenSeed,
	})
	t.index[ident.Root] = rootSlot
	return t
}

// resolve looks id up and inserts or refreshes it for frame. A duplicate
// result means id was already declared this frame and the caller has to
// derive a twin.
func (t *table[P]) resolve(id ident.Id, label string, frame uint64) (int32, resolution) {
	if slot, ok := t.index[id]; ok {
		n := &t.nodes[slot]
		if n.lastFrame == frame {
			return slot, resolvedDuplicate
		}
		n.lastFrame = frame
		n.twins = 0
		n.parent = noSlot
		n.children = n.children[:0]
		n.fresh = false
		n.attached = false
		n.nested = false
		n.skipped = false
		return slot, resolvedRefreshed
	}

	fresh := node[P]{
		id:           id,
		label:        label,
		live:         true,
		parent:       noSlot,
		lastFrame:    frame,
		childrenHash: ident.ChildrenSeed,
		fresh:        true,
	}

	var slot int32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		// Keep the old children backing array.
		fresh.children = t.nodes[slot].children[:0]
		t.nodes[slot] = fresh
	} else {
		slot = int32(len(t.nodes))
		t.nodes = append(t.nodes, fresh)
	}
	t.index[id] = slot
	return slot, resolvedInserted
}

// lookup returns the slot for id if it is live.
func (t *table[P]) lookup(id ident.Id) (int32, bool) {
	slot, ok := t.index[id]
	return slot, ok
}

// at returns the node in slot after checking that it still holds id.
func (t *table[P]) at(slot int32, id ident.Id, label string) *node[P] {
	if slot < 0 || int(slot) >= len(t.nodes) {
		stalePanic(label, id)
	}
	n := &t.nodes[slot]
	if !n.live || n.id != id {
		stalePanic(label, id)
	}
	return n
}

// prune removes every entry not declared in frame, in slot order. The root
// is never pruned.
func (t *table[P]) prune(frame uint64, removed func(Removed)) int {
	count := 0
	for i := 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		if !n.live || n.lastFrame >= frame {
			continue
		}
		if t.index[n.id] != int32(i) {
			panic("[RETREE E011] node table corrupted: index does not point at live slot " + n.label)
		}
		delete(t.index, n.id)
		r := Removed{ID: n.id, Label: n.label}

		children := n.children[:0]
		*n = node[P]{parent: noSlot, children: children}
		t.free = append(t.free, int32(i))
		count++
		removed(r)
	}
	return count
}

// len returns the number of live entries, the root included.
func (t *table[P]) len() int {
	return len(t.index)
}
