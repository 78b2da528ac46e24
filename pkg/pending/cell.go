package pending

import (
	"fmt"
	"sync/atomic"
)

// State is the observable state of a Cell.
type State int

const (
	Pending State = iota // Nothing written yet
	Ready                // Value written
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Cell is a write-once slot shared by one producer and one consumer.
type Cell[T any] struct {
	v atomic.Pointer[T]
}

// Set writes v if nothing was written before. It reports whether the write
// happened.
func (c *Cell[T]) Set(v T) bool {
	return c.v.CompareAndSwap(nil, &v)
}

// Poll returns the value if it has been written. It never blocks.
func (c *Cell[T]) Poll() (T, bool) {
	p := c.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// State reports whether the cell has been written.
func (c *Cell[T]) State() State {
	if c.v.Load() == nil {
		return Pending
	}
	return Ready
}

// Result is the outcome of a background job.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn on a new goroutine and returns the cell its result is written
// to. After the write, wake is called once from the worker goroutine; it
// should only schedule another frame (for example by requesting a redraw)
// and must be safe to call from any goroutine. wake may be nil.
//
// A panic in fn is captured as the result's error.
func Go[T any](fn func() (T, error), wake func()) *Cell[Result[T]] {
	cell := &Cell[Result[T]]{}
	go func() {
		cell.Set(run(fn))
		if wake != nil {
			wake()
		}
	}()
	return cell
}

func run[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("pending: job panicked: %v", r)}
		}
	}()
	v, err := fn()
	return Result[T]{Value: v, Err: err}
}
