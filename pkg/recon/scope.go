package recon

import "github.com/vango-dev/retree/pkg/ident"

// Scope is a key namespace for a reusable component. Ids declared inside a
// started scope are mixed with the scope id, so two component instances can
// use the same literal keys without colliding.
type Scope[P any] struct {
	tree      *Tree[P]
	key       ident.Key
	anonymous bool
}

// Subtree returns a scope keyed by the caller's source position. Each
// start of the same call site within one enclosing scope and frame gets its
// own id space, in call order.
func (t *Tree[P]) Subtree() Scope[P] {
	return Scope[P]{tree: t, key: ident.Caller(1), anonymous: true}
}

// NamedSubtree returns a scope keyed by key. Starting it again under the
// same enclosing scope, from any call site, re-opens the same id space;
// this is how a node declared inside a component is looked up from
// outside.
func (t *Tree[P]) NamedSubtree(key ident.Key) Scope[P] {
	return Scope[P]{tree: t, key: key}
}

// ID returns the scope id the next Start would use, without consuming an
// anonymous occurrence.
func (s Scope[P]) ID() ident.Id {
	t := s.tree
	id := s.key.Id().Scoped(t.scope())
	if s.anonymous {
		if n := t.scopeUses[id]; n > 0 {
			id = ident.TwinOf(id, n-1)
		}
	}
	return id
}

// Start enters the scope, runs fn, and leaves the scope when fn returns or
// panics. It returns the frame's first misuse so far.
func (s Scope[P]) Start(fn func()) error {
	t := s.tree
	id := s.ID()
	if s.anonymous {
		t.scopeUses[s.key.Id().Scoped(t.scope())]++
	}

	depth := len(t.scopes)
	t.scopes = append(t.scopes, id)
	defer func() {
		if len(t.scopes) != depth+1 {
			panic("[RETREE E012] scope stack corrupted: subtree closed out of order")
		}
		t.scopes = t.scopes[:depth]
	}()

	fn()
	return t.err
}
