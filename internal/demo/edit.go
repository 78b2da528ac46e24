package demo

import "fmt"

// Edit is one mutation of the demo state.
type Edit int

const (
	EditSwap      Edit = iota // Swap two rows
	EditInsert                // Insert a new row
	EditRemove                // Remove a row
	EditDuplicate             // Insert a copy of an existing row
	EditRename                // Give a row a new name
	EditTitle                 // Change the header text
	EditToolbar               // Toggle the compact toolbar
	editCount
)

// String returns the edit name.
func (e Edit) String() string {
	switch e {
	case EditSwap:
		return "swap"
	case EditInsert:
		return "insert"
	case EditRemove:
		return "remove"
	case EditDuplicate:
		return "duplicate"
	case EditRename:
		return "rename"
	case EditTitle:
		return "title"
	case EditToolbar:
		return "toolbar"
	default:
		return "unknown"
	}
}

// Mutate applies one random edit and returns it.
func (a *App) Mutate() Edit {
	e := Edit(a.rng.IntN(int(editCount)))
	a.Apply(e)
	return e
}

// Apply performs e. Edits that need rows insert one instead when the list
// is empty.
func (a *App) Apply(e Edit) {
	a.edits++
	n := len(a.items)
	if n == 0 && e != EditTitle && e != EditToolbar {
		e = EditInsert
	}

	switch e {
	case EditSwap:
		i, j := a.rng.IntN(n), a.rng.IntN(n)
		a.items[i], a.items[j] = a.items[j], a.items[i]

	case EditInsert:
		i := a.rng.IntN(n + 1)
		a.items = insertAt(a.items, i, a.newItem())

	case EditRemove:
		i := a.rng.IntN(n)
		a.items = append(a.items[:i], a.items[i+1:]...)

	case EditDuplicate:
		src := a.items[a.rng.IntN(n)]
		a.items = insertAt(a.items, a.rng.IntN(n+1), src)

	case EditRename:
		a.items[a.rng.IntN(n)] = a.newItem()

	case EditTitle:
		a.title = fmt.Sprintf("Items (%d edits)", a.edits)

	case EditToolbar:
		a.compact = !a.compact
		a.toolbarDirty = true
	}
}

func insertAt(items []string, i int, item string) []string {
	items = append(items, "")
	copy(items[i+1:], items[i:])
	items[i] = item
	return items
}
