// Package pending hands results of background work back to the declaration
// pass.
//
// Declaration never blocks. Long-running work runs on its own goroutine and
// writes its result once into a Cell; the declaring goroutine polls the cell
// every frame and sees either nothing yet or the final value:
//
//	load := pending.Go(func() ([]Row, error) {
//	    return db.Rows(ctx)
//	}, window.RequestRedraw)
//
//	// every frame
//	if res, ok := load.Poll(); ok {
//	    declareRows(tree, res.Value)
//	} else {
//	    tree.Add(SpinnerKey)
//	}
//
// There is no cancellation. If the polling node is pruned the worker still
// runs to completion and its result is dropped with the cell.
package pending
