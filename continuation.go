// Package callcc implements stackful symmetric coroutines with explicit
// value transfer on top of goroutines. A Continuation is a move-only
// handle to a suspended execution with its own stack; spawning and
// resuming transfer a tuple of values across the switch and hand back a
// replacement handle.
//
// There is no scheduler, no thread pool, and no preemption here. Every
// switch is an explicit call naming its destination, and at most one side
// of any given switch is ever runnable at a time. Use Spawn to start a
// coroutine, Resume or ResumeOnTop to switch into a suspended one, and
// Drop to cancel one that is no longer needed.
package callcc

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gorcc/callcc/internal/fcontext"
)

// Continuation is a handle to a suspended execution. Its zero value is the
// not-a-context handle: Valid reports false, Drop is a no-op, Resume and
// ResumeOnTop panic with a ContractViolation, and comparisons behave as if
// comparing two nil pointers.
//
// Continuation is logically move-only: every operation that consumes one
// (Resume, ResumeOnTop, Drop) uses up the suspension point it names. Drop
// also clears the handle it is called on; Resume and ResumeOnTop take c by
// value, so the caller's own copy keeps reporting Valid. Go has no
// compiler-enforced move semantics, so callers are expected to write
// c = callcc.Resume(c, ...) the way they would write x = append(x, ...).
// Resuming or dropping a stale copy after its suspension point has been
// consumed panics rather than silently producing garbage; a second Drop of
// the handle Drop already cleared is a no-op.
type Continuation struct {
	rv      *fcontext.Rendezvous
	payload []any
}

func wrap(rv *fcontext.Rendezvous, w fcontext.Word) Continuation {
	if rv == nil {
		return Continuation{}
	}
	c := Continuation{rv: rv, payload: unpack(w)}
	// A ResumeOnTop hook may already have wrapped this same Rendezvous
	// without consuming it; clear that finalizer before arming it again.
	runtime.SetFinalizer(rv, nil)
	runtime.SetFinalizer(rv, finalizeRendezvous)
	return c
}

// consume returns the Continuation's Rendezvous and disarms the finalizer
// that would otherwise forced-unwind it, since the caller is about to hand
// it to a real switch (or is the Drop path, which arms its own unwind
// explicitly). It panics if c has already been consumed or was never valid.
func (c *Continuation) consume(op string) *fcontext.Rendezvous {
	if c.rv == nil {
		violation(op, "continuation is not-a-context")
	}
	rv := c.rv
	runtime.SetFinalizer(rv, nil)
	c.rv, c.payload = nil, nil
	return rv
}

// finalizeRendezvous forced-unwinds a Rendezvous whose last Continuation
// became unreachable without being resumed or dropped. This is a
// best-effort safety net, not a guarantee: the finalizer only runs once the
// garbage collector considers rv unreachable, and a goroutine parked on its
// own Rendezvous channel can keep that object reachable indefinitely
// regardless of whether any Go-level variable still names it. Code that
// needs deterministic cleanup must call Drop explicitly; an abandoned
// handle that this finalizer never fires for leaks its goroutine and stack.
func finalizeRendezvous(rv *fcontext.Rendezvous) {
	dropRendezvous(rv)
}

// Valid reports whether c holds an execution pointer. It does not detect a
// stale copy whose suspension point was already resumed through another
// copy.
func (c Continuation) Valid() bool {
	return c.rv != nil
}

// Equal reports whether c and other identify the same suspended
// execution. Two not-a-context handles are equal to each other.
func (c Continuation) Equal(other Continuation) bool {
	return c.rv == other.rv
}

// Less provides a total order over Continuation values for use as map or
// ordered-container keys; it carries no other meaning.
func (c Continuation) Less(other Continuation) bool {
	return uintptr(unsafe.Pointer(c.rv)) < uintptr(unsafe.Pointer(other.rv))
}

// payloadDescriber renders a transferred payload's dynamic types for
// String's debug-build diagnostic suffix. It is wired up by
// transfer_debug.go or transfer_release.go depending on build tags, and
// left nil (no suffix) otherwise.
var payloadDescriber func([]any) string

// String renders c as its execution pointer, or "{not-a-context}" for an
// invalid handle. Debug builds (build tag "debug") append the dynamic
// types of c's most recent payload for diagnostic purposes.
func (c Continuation) String() string {
	if c.rv == nil {
		return "{not-a-context}"
	}
	s := fmt.Sprintf("%p", c.rv)
	if payloadDescriber != nil {
		s += " " + payloadDescriber(c.payload)
	}
	return s
}

// HasData reports whether the switch that produced c delivered a non-nil
// payload. It is a pure read against the most recent transfer and does not
// alter c.
func HasData(c Continuation) bool {
	return c.payload != nil
}

// Drop cancels c: if c is valid, it forces the suspended execution it
// names to unwind, running its deferred cleanup in reverse construction
// order, and reclaims its stack, then blocks until that teardown has
// completed. Dropping a not-a-context Continuation, including one a
// previous Drop already cleared, is a no-op; dropping a stale copy whose
// suspension point was already resumed panics.
func (c *Continuation) Drop() {
	if c.rv == nil {
		return
	}
	rv := c.consume("Drop")
	dropRendezvous(rv)
}
