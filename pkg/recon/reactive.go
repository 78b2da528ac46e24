package recon

// Gate lets a caller assert that a subtree did not change. See
// Tree.Reactive.
type Gate[P any] struct {
	tree    *Tree[P]
	changed bool
}

// Reactive returns a gate for a subtree. When changed is false the subtree
// is still declared, so its nodes survive pruning, but its change tracking
// is skipped: scopes nested inside are not hashed or compared and parameter
// changes are not diffed. A skip is sticky: gates started inside a skipped
// gate are skipped regardless of their own flag.
func (t *Tree[P]) Reactive(changed bool) Gate[P] {
	return Gate[P]{tree: t, changed: changed}
}

// Start runs fn under the gate. It returns the frame's first misuse so far.
func (g Gate[P]) Start(fn func()) error {
	t := g.tree
	if !g.changed || t.skip > 0 {
		t.skip++
		defer func() {
			if t.skip <= 0 {
				panic("[RETREE E012] reactive skip counter underflow")
			}
			t.skip--
		}()
	}
	fn()
	return t.err
}

// Skipping reports whether change tracking is currently suspended.
func (t *Tree[P]) Skipping() bool {
	return t.skip > 0
}
