package recon

import (
	"errors"
	"fmt"

	"github.com/vango-dev/retree/pkg/ident"
)

// ErrNotDeclaring is returned when a node is declared outside a
// BeginTree/FinishTree bracket.
var ErrNotDeclaring = errors.New("recon: declaration outside BeginTree/FinishTree")

// ErrAlreadyDeclaring is returned by BeginTree while a frame is in progress.
var ErrAlreadyDeclaring = errors.New("recon: frame already in progress")

// ErrUnbalanced is returned by FinishTree when it is called from inside an
// open Nest scope.
var ErrUnbalanced = errors.New("recon: frame finished with open scopes")

// ErrNotDeclared is returned by Place when the key was not declared during
// the current frame.
var ErrNotDeclared = errors.New("recon: key not declared this frame")

// ErrAlreadyPlaced is returned by Place when the node already has a parent
// in the current frame.
var ErrAlreadyPlaced = errors.New("recon: node already placed this frame")

// ErrAlreadyNested is returned when the same node is nested twice in one
// frame.
var ErrAlreadyNested = errors.New("recon: node already nested this frame")

// MisuseError describes an API misuse together with the node it concerns.
type MisuseError struct {
	Op    string
	Label string
	ID    ident.Id
	Err   error
}

// Error implements the error interface.
func (e *MisuseError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q [%s]: %v", e.Op, e.Label, e.ID, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *MisuseError) Unwrap() error {
	return e.Err
}

func misuse(op string, key ident.Key, err error) *MisuseError {
	return &MisuseError{Op: op, Label: key.Label(), ID: key.Id(), Err: err}
}

// stalePanic aborts on use of a handle whose node has been pruned.
func stalePanic(label string, id ident.Id) {
	panic(fmt.Sprintf("[RETREE E010] stale handle %q [%s]: node was pruned or its slot reused", label, id))
}
