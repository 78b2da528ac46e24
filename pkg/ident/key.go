package ident

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/cespare/xxhash/v2"
)

// Key pairs an Id with the human-readable label it was derived from.
type Key struct {
	id    Id
	label string
}

// NewKey creates a literal key from a label.
func NewKey(label string) Key {
	id := Id(xxhash.Sum64String(label))
	if id == Root {
		id = 1
	}
	return Key{id: id, label: label}
}

// FromId wraps an already-derived id in a key.
func FromId(id Id, label string) Key {
	return Key{id: id, label: label}
}

// Id returns the key's identity.
func (k Key) Id() Id { return k.id }

// Label returns the debug label.
func (k Key) Label() string { return k.label }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.id == Root && k.label == "" }

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("%s(%s)", k.label, k.id)
}

// Sibling derives a dynamic key from base and an arbitrary hashable value.
// The result keeps base's label.
func Sibling(base Key, value any) Key {
	return Key{
		id:    mix(tagSibling, uint64(base.id), HashValue(value)),
		label: base.label,
	}
}

// Caller derives a key from the call site skip frames above the caller of
// Caller. It is used for anonymous subtree scopes.
func Caller(skip int) Key {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return NewKey("<unknown>")
	}
	label := fmt.Sprintf("%s:%d", filepath.Base(file), line)
	id := Id(xxhash.Sum64String(fmt.Sprintf("%s:%d", file, line)))
	if id == Root {
		id = 1
	}
	return Key{id: id, label: label}
}
