// Package ident derives the stable 64-bit identities used by the
// reconciliation engine.
//
// An Id is computed by hashing a literal key label, and optionally mixing in
// a dynamic sibling value, the enclosing subtree scope, and a twin index.
// The same inputs always produce the same Id within a process run.
//
// # Keys
//
// Keys are usually declared once as package-level values:
//
//	var (
//	    Header = ident.NewKey("header")
//	    Row    = ident.NewKey("row")
//	)
//
// Loops produce per-item keys with Sibling:
//
//	for _, item := range items {
//	    tree.Add(ident.Sibling(Row, item.ID))
//	}
//
// # Collisions
//
// Ids live in a 64-bit space and are not guaranteed collision free. Two
// distinct keys that hash to the same Id are treated by the engine as the
// same logical node declared twice.
package ident
