package demo

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/pending"
	"github.com/vango-dev/retree/pkg/recon"
	"github.com/vango-dev/retree/pkg/state"
)

// Params are the node parameters of the demo UI.
type Params struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

var (
	keyHeader  = ident.NewKey("header")
	keyToolbar = ident.NewKey("toolbar")
	keyButton  = ident.NewKey("button")
	keyList    = ident.NewKey("list")
	keyRow     = ident.NewKey("row")
	keyCell    = ident.NewKey("cell")
	keyLabel   = ident.NewKey("label")
	keyBadge   = ident.NewKey("badge")
	keyFooter  = ident.NewKey("footer")
)

var (
	fullToolbar    = []string{"add", "remove", "shuffle"}
	compactToolbar = []string{"add", "remove"}
)

// row is the per-row state kept across frames.
type row struct {
	load *pending.Cell[pending.Result[string]]
}

// Option configures an App.
type Option func(*App)

// WithSeed seeds the edit generator.
func WithSeed(seed uint64) Option {
	return func(a *App) {
		a.rng = rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
	}
}

// WithLoader starts fn in the background for every new row; the row shows
// a badge with the result once it is ready.
func WithLoader(fn func(item string) (string, error)) Option {
	return func(a *App) {
		a.loader = fn
	}
}

// WithWake sets the callback run when a background load completes.
func WithWake(fn func()) Option {
	return func(a *App) {
		a.wake = fn
	}
}

// App is a list screen re-declared every frame: a header, a toolbar behind
// a reactive gate, a keyed list whose rows carry per-row state, and a
// footer placed after being declared up front.
type App struct {
	tree   *recon.Tree[Params]
	rows   *state.Store[row]
	items  []string
	next   int
	title  string
	edits  int

	compact      bool
	toolbarDirty bool

	rng    *rand.Rand
	loader func(item string) (string, error)
	wake   func()
}

// New creates an App with n items declaring into tree.
func New(tree *recon.Tree[Params], n int, opts ...Option) *App {
	a := &App{
		tree:         tree,
		rows:         state.NewStore[row](),
		title:        "Items",
		toolbarDirty: true,
	}
	WithSeed(1)(a)
	for _, opt := range opts {
		opt(a)
	}
	for i := 0; i < n; i++ {
		a.items = append(a.items, a.newItem())
	}
	a.rows.Attach(tree)
	return a
}

func (a *App) newItem() string {
	a.next++
	return fmt.Sprintf("Item %d", a.next)
}

// Tree returns the tree the app declares into.
func (a *App) Tree() *recon.Tree[Params] {
	return a.tree
}

// Items returns a copy of the current list.
func (a *App) Items() []string {
	return slices.Clone(a.items)
}

// SetItems replaces the list.
func (a *App) SetItems(items []string) {
	a.items = slices.Clone(items)
}

// Rows returns the number of rows holding state.
func (a *App) Rows() int {
	return a.rows.Len()
}

// Frame declares the whole UI once and returns the consumed changes
// together with the frame's first misuse.
func (a *App) Frame() (recon.Changes, error) {
	if err := a.tree.BeginTree(); err != nil {
		return recon.Changes{}, err
	}
	a.declare()
	err := a.tree.FinishTree()
	return a.tree.TakeChanges(), err
}

func (a *App) declare() {
	t := a.tree

	t.Declare(keyFooter).SetParams(Params{Kind: "footer", Text: fmt.Sprintf("%d items", len(a.items))})

	t.Add(keyHeader).SetParams(Params{Kind: "text", Text: a.title})

	changed := a.toolbarDirty
	a.toolbarDirty = false
	t.Reactive(changed).Start(func() {
		t.Subtree().Start(func() {
			buttons := fullToolbar
			if a.compact {
				buttons = compactToolbar
			}
			t.Add(keyToolbar).SetParams(Params{Kind: "toolbar"}).Nest(func() {
				for _, name := range buttons {
					t.AddSibling(keyButton, name).SetParams(Params{Kind: "button", Text: name})
				}
			})
		})
	})

	t.Add(keyList).SetParams(Params{Kind: "list"}).Nest(func() {
		for _, item := range a.items {
			a.declareRow(item)
		}
	})

	t.Place(keyFooter)
}

func (a *App) declareRow(item string) {
	t := a.tree
	r := t.AddSibling(keyRow, item).SetParams(Params{Kind: "row", Text: item})
	st := a.rows.Use(r.ID(), func() row { return a.startLoad(item) })

	badge := ""
	if st.load != nil {
		badge = "loading"
		if res, ok := st.load.Poll(); ok {
			badge = res.Value
			if res.Err != nil {
				badge = "error"
			}
		}
	}

	r.Nest(func() {
		t.NamedSubtree(ident.Sibling(keyCell, item)).Start(func() {
			t.Add(keyLabel).SetParams(Params{Kind: "text", Text: item})
			if badge != "" {
				t.Add(keyBadge).SetParams(Params{Kind: "badge", Text: badge})
			}
		})
	})
}

func (a *App) startLoad(item string) row {
	if a.loader == nil {
		return row{}
	}
	load := a.loader
	return row{load: pending.Go(func() (string, error) { return load(item) }, a.wake)}
}
