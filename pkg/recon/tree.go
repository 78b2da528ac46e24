package recon

import (
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/vango-dev/retree/pkg/ident"
)

// Tree is a persistent node table reconciled against a fresh declaration
// every frame. P is the per-node parameter type.
//
// A Tree must only be used from one goroutine.
type Tree[P any] struct {
	opts   Options
	logger *slog.Logger
	equal  func(a, b P) bool

	table table[P]
	frame uint64

	declaring bool
	stack     []cursor
	scopes    []ident.Id
	scopeUses map[ident.Id]uint32
	skip      int

	touched    []int32
	dirtySlots []int32
	changes    changeSet
	stats   FrameStats
	started time.Time
	err     error

	pruneListeners []func(Removed)
}

// New creates an empty tree holding only the root node.
func New[P any](opts ...Option) *Tree[P] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default().With("component", "recon")
	}

	return &Tree[P]{
		opts:      o,
		logger:    logger,
		equal:     func(a, b P) bool { return reflect.DeepEqual(a, b) },
		table:     newTable[P](o.InitialCapacity),
		scopeUses: make(map[ident.Id]uint32),
		changes:   newChangeSet(),
	}
}

// SetEqual replaces the parameter comparison used to detect cosmetic
// updates. The default is reflect.DeepEqual.
func (t *Tree[P]) SetEqual(eq func(a, b P) bool) {
	if eq != nil {
		t.equal = eq
	}
}

// OnPrune registers fn to be called for every pruned node. Owners of per-id
// state use it to evict entries.
func (t *Tree[P]) OnPrune(fn func(Removed)) {
	t.pruneListeners = append(t.pruneListeners, fn)
}

// Frame returns the number of the current (or last finished) frame.
func (t *Tree[P]) Frame() uint64 {
	return t.frame
}

// Declaring reports whether a frame is in progress.
func (t *Tree[P]) Declaring() bool {
	return t.declaring
}

// Len returns the number of live nodes, the root included.
func (t *Tree[P]) Len() int {
	return t.table.len()
}

// Depth returns the length of the parent stack. A node added now gets this
// depth; the root has depth 0.
func (t *Tree[P]) Depth() int {
	return len(t.stack)
}

// Err returns the first misuse recorded during the current frame.
func (t *Tree[P]) Err() error {
	return t.err
}

// Root returns a handle to the root node.
func (t *Tree[P]) Root() Handle[P] {
	return Handle[P]{tree: t, slot: rootSlot, id: ident.Root, label: "root"}
}

// BeginTree starts a frame.
func (t *Tree[P]) BeginTree() error {
	if t.declaring {
		err := &MisuseError{Op: "begin", Err: ErrAlreadyDeclaring}
		t.logger.Warn("recon: misuse", "error", err)
		return err
	}

	t.frame++
	t.declaring = true
	t.err = nil
	t.started = time.Now()
	t.stats = FrameStats{Frame: t.frame}
	t.touched = t.touched[:0]
	t.dirtySlots = t.dirtySlots[:0]
	t.scopes = t.scopes[:0]
	t.skip = 0
	clear(t.scopeUses)

	root := &t.table.nodes[rootSlot]
	root.lastFrame = t.frame
	root.children = root.children[:0]
	root.nested = true
	t.stack = append(t.stack[:0], cursor{slot: rootSlot, acc: ident.ChildrenSeed, tracked: true})

	if t.frame == 1 && t.opts.FirstFrameRelayout {
		t.RequestFullRelayout()
	}

	for _, obs := range t.opts.Observers {
		obs.BeginFrame(t.frame)
	}
	return nil
}

// FinishTree closes the frame, records structural changes and prunes every
// node that was not declared. It returns the first misuse recorded during
// the frame.
func (t *Tree[P]) FinishTree() error {
	if !t.declaring {
		err := &MisuseError{Op: "finish", Err: ErrNotDeclaring}
		t.logger.Warn("recon: misuse", "error", err)
		return err
	}
	if len(t.stack) != 1 {
		err := &MisuseError{Op: "finish", Err: ErrUnbalanced}
		t.record(err)
		return err
	}

	t.closeScope(t.stack[0])
	t.stack = t.stack[:0]
	t.sweepUnnested()
	t.flushDirty()

	t.stats.Pruned = t.table.prune(t.frame, t.removed)
	t.declaring = false

	t.stats.Live = t.table.len()
	t.stats.Duration = time.Since(t.started)
	t.stats.Err = t.err

	t.logger.Debug("recon: frame finished",
		"frame", t.stats.Frame,
		"live", t.stats.Live,
		"inserted", t.stats.Inserted,
		"twins", t.stats.Twins,
		"pruned", t.stats.Pruned,
		"dirty", t.stats.Dirty,
		"cosmetic", t.stats.Cosmetic,
		"duration", t.stats.Duration,
	)
	for _, obs := range t.opts.Observers {
		obs.EndFrame(t.stats)
	}

	err := t.err
	t.err = nil
	return err
}

// Stats returns the statistics of the current or last finished frame.
func (t *Tree[P]) Stats() FrameStats {
	return t.stats
}

func (t *Tree[P]) removed(r Removed) {
	t.changes.markRemoved(r)
	t.logger.Debug("recon: pruned", "id", r.ID, "label", r.Label)
	for _, fn := range t.pruneListeners {
		fn(r)
	}
}

// record keeps the first misuse of the frame.
func (t *Tree[P]) record(err error) {
	if t.err == nil {
		t.err = err
	}
	t.logger.Warn("recon: misuse", "error", err)
}

// scope returns the innermost subtree scope id.
func (t *Tree[P]) scope() ident.Id {
	if n := len(t.scopes); n > 0 {
		return t.scopes[n-1]
	}
	return ident.Root
}

// effective applies the current subtree scope to key.
func (t *Tree[P]) effective(key ident.Key) ident.Id {
	return key.Id().Scoped(t.scope())
}

// resolve inserts or refreshes id, deriving twins on same-frame
// re-declaration.
func (t *Tree[P]) resolve(id ident.Id, label string) int32 {
	slot, res := t.table.resolve(id, label, t.frame)
	switch res {
	case resolvedInserted:
		t.stats.Inserted++
	case resolvedRefreshed:
		t.stats.Refreshed++
	case resolvedDuplicate:
		n := &t.table.nodes[slot]
		n.twins++
		t.stats.Twins++
		return t.resolve(ident.TwinOf(id, n.twins-1), label)
	}
	t.table.nodes[slot].skipped = t.skip > 0
	t.touched = append(t.touched, slot)
	return slot
}

// attach links slot under the innermost open parent and feeds the parent's
// children hash.
func (t *Tree[P]) attach(slot int32) {
	top := &t.stack[len(t.stack)-1]
	n := &t.table.nodes[slot]
	n.parent = top.slot
	n.depth = len(t.stack)
	n.attached = true

	parent := &t.table.nodes[top.slot]
	parent.children = append(parent.children, slot)
	if top.tracked {
		top.acc = ident.MixChild(top.acc, n.id)
	}
}

func (t *Tree[P]) handle(slot int32) Handle[P] {
	n := &t.table.nodes[slot]
	return Handle[P]{tree: t, slot: slot, id: n.id, label: n.label}
}

// Add declares key under the current parent and returns its handle.
func (t *Tree[P]) Add(key ident.Key) Handle[P] {
	if !t.declaring {
		t.record(misuse("add", key, ErrNotDeclaring))
		return Handle[P]{}
	}
	slot := t.resolve(t.effective(key), key.Label())
	t.attach(slot)
	return t.handle(slot)
}

// AddSibling declares the dynamic key derived from base and value.
func (t *Tree[P]) AddSibling(base ident.Key, value any) Handle[P] {
	return t.Add(ident.Sibling(base, value))
}

// Declare resolves key without attaching it to a parent. The node is kept
// alive for this frame and can be attached later with Place.
func (t *Tree[P]) Declare(key ident.Key) Handle[P] {
	if !t.declaring {
		t.record(misuse("declare", key, ErrNotDeclaring))
		return Handle[P]{}
	}
	return t.handle(t.resolve(t.effective(key), key.Label()))
}

// Place attaches a node declared earlier in this frame at the current
// position without re-declaring it. When key was declared more than once,
// each Place takes the next occurrence that is still unplaced.
func (t *Tree[P]) Place(key ident.Key) Handle[P] {
	if !t.declaring {
		t.record(misuse("place", key, ErrNotDeclaring))
		return Handle[P]{}
	}
	id := t.effective(key)
	slot, err := t.unplaced(id)
	if err != nil {
		t.record(misuse("place", ident.FromId(id, key.Label()), err))
		return Handle[P]{}
	}
	t.attach(slot)
	return t.handle(slot)
}

// unplaced returns the first occurrence of id declared this frame that has
// no parent yet, trying twins in declaration order.
func (t *Tree[P]) unplaced(id ident.Id) (int32, error) {
	slot, ok := t.table.lookup(id)
	if !ok || t.table.nodes[slot].lastFrame != t.frame {
		return 0, ErrNotDeclared
	}
	if !t.table.nodes[slot].attached {
		return slot, nil
	}
	for k := uint32(0); k < t.table.nodes[slot].twins; k++ {
		twin, ok := t.table.lookup(ident.TwinOf(id, k))
		if ok && t.table.nodes[twin].lastFrame == t.frame && !t.table.nodes[twin].attached {
			return twin, nil
		}
	}
	return 0, ErrAlreadyPlaced
}

// Lookup resolves key in the current subtree scope without declaring it.
// It fails once the node has been pruned.
func (t *Tree[P]) Lookup(key ident.Key) (Handle[P], bool) {
	return t.LookupID(t.effective(key))
}

// LookupID resolves an id kept from an earlier frame.
func (t *Tree[P]) LookupID(id ident.Id) (Handle[P], bool) {
	slot, ok := t.table.lookup(id)
	if !ok {
		return Handle[P]{}, false
	}
	return t.handle(slot), true
}

// IsMisuse reports whether err was produced by API misuse.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}
