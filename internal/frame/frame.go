// Package frame implements the activation record bookkeeping: the
// allocator and stack descriptor a coroutine destroys exactly once, plus
// the forced-unwind signal used to cancel a suspended execution.
//
// The user function itself is not part of Record. The spawned goroutine's
// own stack frame already holds the function and its arguments as
// ordinary locals. Keeping Record free of the function also avoids a
// dependency cycle: Record would otherwise need to call back into the
// root package's Continuation type while the root package needs to call
// into Record.
package frame

import "sync"

// StackContext describes a region of stack the allocator handed out; it
// carries only what is needed to hand the region back.
type StackContext struct {
	ID   uint64
	Size int
}

// Allocator is the stack-provider contract.
type Allocator interface {
	Allocate() (StackContext, error)
	Deallocate(StackContext) error
}

// Record is the per-coroutine bookkeeping object. It is constructed once
// per Spawn and destroyed exactly once, whether the coroutine terminates
// normally or is forced-unwound.
type Record struct {
	alloc Allocator
	stack StackContext
	once  sync.Once
	err   error
}

// New constructs a Record for a stack obtained from alloc.
func New(alloc Allocator, stack StackContext) *Record {
	return &Record{alloc: alloc, stack: stack}
}

// Destroy runs the stack-and-record teardown sequence. It is safe to call
// more than once, but only the first call has an effect.
func (r *Record) Destroy() error {
	r.once.Do(func() {
		alloc, stack := r.alloc, r.stack
		r.err = alloc.Deallocate(stack)
	})
	return r.err
}
