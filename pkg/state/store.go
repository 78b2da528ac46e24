package state

import (
	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/recon"
)

// Pruner is implemented by trees that report pruned nodes, such as
// *recon.Tree.
type Pruner interface {
	OnPrune(fn func(recon.Removed))
}

// Store maps node ids to values of type S. It is not safe for concurrent
// use; it is owned by the goroutine that declares the tree.
type Store[S any] struct {
	values  map[ident.Id]*S
	onEvict func(id ident.Id, value *S)
}

// NewStore creates an empty store.
func NewStore[S any]() *Store[S] {
	return &Store[S]{values: make(map[ident.Id]*S)}
}

// OnEvict sets a hook run for every evicted value, e.g. to close a
// resource held by the state.
func (s *Store[S]) OnEvict(fn func(id ident.Id, value *S)) {
	s.onEvict = fn
}

// Use returns the state for id, creating it with init on first use.
// The pointer stays valid until the id is evicted.
func (s *Store[S]) Use(id ident.Id, init func() S) *S {
	if v, ok := s.values[id]; ok {
		return v
	}
	v := new(S)
	if init != nil {
		*v = init()
	}
	s.values[id] = v
	return v
}

// Get returns the state for id if present.
func (s *Store[S]) Get(id ident.Id) (*S, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Evict removes the state for id. It reports whether anything was removed.
func (s *Store[S]) Evict(id ident.Id) bool {
	v, ok := s.values[id]
	if !ok {
		return false
	}
	delete(s.values, id)
	if s.onEvict != nil {
		s.onEvict(id, v)
	}
	return true
}

// Len returns the number of stored values.
func (s *Store[S]) Len() int {
	return len(s.values)
}

// Attach subscribes the store to a pruner so pruned ids are evicted.
func (s *Store[S]) Attach(p Pruner) {
	p.OnPrune(func(r recon.Removed) {
		s.Evict(r.ID)
	})
}
