// Package errors provides coded, actionable diagnostics for retree tools.
//
// Each diagnostic carries a code (e.g. "E001") that maps to a short
// message, a longer explanation and a hint. Misuse errors returned by
// package recon are mapped onto these codes with FromError, so the CLI can
// print the same explanation whichever layer failed.
//
// # Error Categories
//
//   - runtime: misuse of the declaration API and engine invariants
//   - config: retree.json problems
//   - cli: command-line and inspector failures
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail("tree.Add(row) called after FinishTree").
//	    WithSuggestion("Declare nodes between BeginTree and FinishTree")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Declaration outside a frame
//	//
//	//   tree.Add(row) called after FinishTree
//	//
//	//   Hint: Declare nodes between BeginTree and FinishTree
package errors
