// Package state keeps per-node component state outside the node table.
//
// The reconciliation core does not own component state; it only reports
// pruned ids. A Store subscribes to those reports and evicts the matching
// entries:
//
//	counters := state.NewStore[int]()
//	counters.Attach(tree)
//
//	n := counters.Use(row.ID(), func() int { return 0 })
//	*n++
//
// Stores are typed, so each kind of component state lives in its own Store
// and no runtime type assertions are needed. A component without state
// simply does not use a Store.
package state
