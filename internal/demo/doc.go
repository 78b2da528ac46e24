// Package demo is a synthetic list screen used by the retree CLI to drive
// a tree frame after frame. Its edits cover keyed reordering, same-frame
// duplicates, subtree scopes, reactive skips, per-node state and
// background loads.
package demo
