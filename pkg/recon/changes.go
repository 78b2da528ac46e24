package recon

import (
	"slices"

	"github.com/vango-dev/retree/pkg/ident"
)

// DirtyRecord reports a parent whose ordered set of children changed since
// the previous frame.
type DirtyRecord struct {
	ID    ident.Id
	Label string
	Depth int
}

// CosmeticUpdate reports a node whose parameters changed without a
// structural change.
type CosmeticUpdate struct {
	ID    ident.Id
	Label string
}

// Removed reports a pruned node.
type Removed struct {
	ID    ident.Id
	Label string
}

// Changes is the change set consumed by layout and render collaborators.
type Changes struct {
	// Dirty is ordered by ascending depth; an ancestor comes before its
	// descendants.
	Dirty    []DirtyRecord
	Cosmetic []CosmeticUpdate
	Removed  []Removed

	// FullRelayout asks for the whole tree to be laid out again.
	FullRelayout bool

	// RebuildAllRects asks for every render rect to be rebuilt.
	RebuildAllRects bool

	// Resize reports a viewport size change.
	Resize bool

	// NeedRerender reports that something visible changed.
	NeedRerender bool
}

// Empty reports whether there is nothing to process.
func (c Changes) Empty() bool {
	return len(c.Dirty) == 0 && len(c.Cosmetic) == 0 && len(c.Removed) == 0 &&
		!c.FullRelayout && !c.RebuildAllRects && !c.Resize && !c.NeedRerender
}

// changeSet accumulates records until they are taken.
type changeSet struct {
	dirty      []DirtyRecord
	dirtyIdx   map[ident.Id]int
	cosmetic   []CosmeticUpdate
	cosmeticIn map[ident.Id]struct{}
	removed    []Removed

	fullRelayout    bool
	rebuildAllRects bool
	resize          bool
	needRerender    bool
}

func newChangeSet() changeSet {
	return changeSet{
		dirtyIdx:   make(map[ident.Id]int),
		cosmeticIn: make(map[ident.Id]struct{}),
	}
}

// markDirty records id; a repeated id keeps its shallowest depth.
func (c *changeSet) markDirty(id ident.Id, label string, depth int) {
	c.needRerender = true
	if i, ok := c.dirtyIdx[id]; ok {
		if depth < c.dirty[i].Depth {
			c.dirty[i].Depth = depth
		}
		return
	}
	c.dirtyIdx[id] = len(c.dirty)
	c.dirty = append(c.dirty, DirtyRecord{ID: id, Label: label, Depth: depth})
}

func (c *changeSet) markCosmetic(id ident.Id, label string) {
	c.needRerender = true
	if _, ok := c.cosmeticIn[id]; ok {
		return
	}
	c.cosmeticIn[id] = struct{}{}
	c.cosmetic = append(c.cosmetic, CosmeticUpdate{ID: id, Label: label})
}

func (c *changeSet) markRemoved(r Removed) {
	c.needRerender = true
	c.removed = append(c.removed, r)
}

func (c *changeSet) snapshot() Changes {
	dirty := slices.Clone(c.dirty)
	slices.SortStableFunc(dirty, func(a, b DirtyRecord) int {
		return a.Depth - b.Depth
	})
	return Changes{
		Dirty:           dirty,
		Cosmetic:        slices.Clone(c.cosmetic),
		Removed:         slices.Clone(c.removed),
		FullRelayout:    c.fullRelayout,
		RebuildAllRects: c.rebuildAllRects,
		Resize:          c.resize,
		NeedRerender:    c.needRerender,
	}
}

func (c *changeSet) reset() {
	c.dirty = c.dirty[:0]
	clear(c.dirtyIdx)
	c.cosmetic = c.cosmetic[:0]
	clear(c.cosmeticIn)
	c.removed = c.removed[:0]
	c.fullRelayout = false
	c.rebuildAllRects = false
	c.resize = false
	c.needRerender = false
}

// cursor is one open parent scope on the declaration stack.
type cursor struct {
	slot    int32
	acc     uint64
	tracked bool
}

// closeScope compares the finished children hash of the node in slot with
// the stored one and records a dirty parent on mismatch.
func (t *Tree[P]) closeScope(c cursor) {
	if !c.tracked {
		return
	}
	n := &t.table.nodes[c.slot]
	if n.childrenHash == c.acc {
		return
	}
	n.childrenHash = c.acc
	t.dirtySlots = append(t.dirtySlots, c.slot)
}

// sweepUnnested reports nodes that had children on an earlier frame but
// were not nested this frame.
func (t *Tree[P]) sweepUnnested() {
	for _, slot := range t.touched {
		n := &t.table.nodes[slot]
		if n.nested || n.skipped || n.childrenHash == ident.ChildrenSeed {
			continue
		}
		n.childrenHash = ident.ChildrenSeed
		t.dirtySlots = append(t.dirtySlots, slot)
	}
}

// flushDirty records the dirty parents of the frame. It runs once every
// Place is done, so each record carries the node's final depth.
func (t *Tree[P]) flushDirty() {
	for _, slot := range t.dirtySlots {
		n := &t.table.nodes[slot]
		t.changes.markDirty(n.id, n.label, n.depth)
	}
	t.stats.Dirty = len(t.dirtySlots)
	t.dirtySlots = t.dirtySlots[:0]
}

// TakeChanges returns the accumulated change set and clears it.
func (t *Tree[P]) TakeChanges() Changes {
	c := t.changes.snapshot()
	t.changes.reset()
	return c
}

// PeekChanges returns the accumulated change set without clearing it.
func (t *Tree[P]) PeekChanges() Changes {
	return t.changes.snapshot()
}

// RequestFullRelayout raises FullRelayout.
func (t *Tree[P]) RequestFullRelayout() {
	t.changes.fullRelayout = true
	t.changes.needRerender = true
}

// RequestRerender raises NeedRerender.
func (t *Tree[P]) RequestRerender() {
	t.changes.needRerender = true
}

// NotifyResize records a viewport resize. It raises Resize, FullRelayout
// and RebuildAllRects.
func (t *Tree[P]) NotifyResize() {
	t.changes.resize = true
	t.changes.fullRelayout = true
	t.changes.rebuildAllRects = true
	t.changes.needRerender = true
}
