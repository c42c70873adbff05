package callcc

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/gorcc/callcc/internal/frame"
)

// StackContext describes a region of stack handed out by an Allocator.
// Size is advisory, the allocator's declared size for the coroutine it
// backs, since a goroutine's actual stack grows and shrinks under the Go
// runtime regardless of what any allocator here requests.
type StackContext = frame.StackContext

// Allocator is the stack-provider contract: Allocate obtains a stack for a
// new coroutine, Deallocate returns it once the coroutine has terminated.
// Implementations must not assume growable stacks are unavailable to the
// caller; FixedSizeStack and Preallocated both work whether or not the
// underlying goroutine stack happens to grow.
type Allocator interface {
	Allocate() (StackContext, error)
	Deallocate(StackContext) error
}

// FixedSizeStack bounds the number of concurrently live coroutines it has
// allocated for. A coroutine backed by a goroutine has no fixed memory
// footprint to cap, so this bounds the number of live goroutines instead
// of bytes.
type FixedSizeStack struct {
	// Size is recorded on each StackContext for callers that want to
	// report it (e.g. in logs or metrics); it has no effect on behavior.
	Size int

	sem  *semaphore.Weighted
	next atomic.Uint64
}

// NewFixedSizeStack returns a FixedSizeStack that permits at most
// maxConcurrent coroutines allocated from it to be live at once; a zero or
// negative maxConcurrent means unbounded. size is the advisory stack size
// recorded on each StackContext.
func NewFixedSizeStack(size int, maxConcurrent int64) *FixedSizeStack {
	f := &FixedSizeStack{Size: size}
	if maxConcurrent > 0 {
		f.sem = semaphore.NewWeighted(maxConcurrent)
	}
	return f
}

func (f *FixedSizeStack) Allocate() (StackContext, error) {
	if f.sem != nil {
		if err := f.sem.Acquire(context.Background(), 1); err != nil {
			return StackContext{}, err
		}
	}
	return StackContext{ID: f.next.Add(1), Size: f.Size}, nil
}

func (f *FixedSizeStack) Deallocate(StackContext) error {
	if f.sem != nil {
		f.sem.Release(1)
	}
	return nil
}

// SegmentedStack never bounds concurrency and never fails to allocate. A
// Go goroutine's stack already grows and shrinks in segments under the
// runtime scheduler, so there is nothing left for this type to do beyond
// handing out identities. It is kept as a distinct type rather than
// folded into FixedSizeStack so callers can opt into "no cap" by naming it
// explicitly.
type SegmentedStack struct {
	next atomic.Uint64
}

func (s *SegmentedStack) Allocate() (StackContext, error) {
	return StackContext{ID: s.next.Add(1)}, nil
}

func (s *SegmentedStack) Deallocate(StackContext) error {
	return nil
}

// Preallocated wraps a stack region the caller already owns. Reserved is
// subtracted from Size before it is handed to the coroutine, reserving
// part of the region for the caller's own bookkeeping. Deallocate is a
// no-op because the caller, not this Allocator, owns the region's
// lifetime.
type Preallocated struct {
	Stack    StackContext
	Reserved int
}

func (p Preallocated) Allocate() (StackContext, error) {
	c := p.Stack
	c.Size -= p.Reserved
	if c.Size <= 0 {
		return StackContext{}, ErrStackTooSmall
	}
	return c, nil
}

func (p Preallocated) Deallocate(StackContext) error {
	return nil
}
