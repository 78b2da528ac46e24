// Package recon implements the reconciliation core: callers re-declare the
// whole UI tree every frame, and the engine matches each declaration against
// a persistent node table by stable key.
//
// # Frames
//
// A frame is bracketed by BeginTree and FinishTree:
//
//	tree := recon.New[Params]()
//
//	if err := tree.BeginTree(); err != nil {
//	    return err
//	}
//	panel := tree.Add(PanelKey)
//	panel.SetParams(Params{Width: 200})
//	panel.Nest(func() {
//	    tree.Add(TitleKey)
//	    for _, item := range items {
//	        tree.Add(ident.Sibling(RowKey, item.ID))
//	    }
//	})
//	if err := tree.FinishTree(); err != nil {
//	    return err
//	}
//
//	changes := tree.TakeChanges()
//
// # Identity
//
// Each declared key resolves to an ident.Id, mixed with the enclosing
// subtree scope. A key declared more than once in the same frame produces
// twins: the second and later occurrences get ids derived from the
// occurrence index, so their slots stay stable as long as the declaration
// order does.
//
// # Change tracking
//
// Every Nest scope folds the ids of its children, in order, into a rolling
// hash. When the hash differs from the one stored on the previous frame the
// parent is reported as a DirtyRecord. Layout and render collaborators read
// the records, the cosmetic updates and the global flags through
// TakeChanges once per frame.
//
// Nodes not declared during a frame are pruned when the frame finishes and
// reported through OnPrune listeners.
//
// # Threading
//
// A Tree is owned by a single goroutine. Results of background work are
// handed back through package pending and polled during declaration.
package recon
