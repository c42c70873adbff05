package callcc

import (
	"github.com/gorcc/callcc/internal/fcontext"
	"github.com/gorcc/callcc/internal/frame"
)

// defaultAllocator backs Spawn calls that pass a nil Allocator. A
// SegmentedStack never bounds concurrency and never fails to allocate.
var defaultAllocator Allocator = &SegmentedStack{}

// Func is the body of a coroutine. It receives the continuation of
// whatever execution spawned or most recently resumed it and must return
// the continuation control should switch to once it terminates,
// typically the same one it was last given, handed back unchanged.
type Func func(Continuation) Continuation

// Spawn creates a new coroutine backed by alloc (or defaultAllocator if
// alloc is nil) and immediately starts it running fn on its own stack,
// returning once fn first suspends or terminates. The continuation fn's
// first invocation receives carries no payload; use Spawn1, Spawn2, or
// SpawnArgs to seed one.
func Spawn(alloc Allocator, fn Func) (Continuation, error) {
	return spawnWithPayload(alloc, nil, fn)
}

// Spawn1 is Spawn seeded with a single initial value, decodable inside fn
// via Data[A] on the continuation it receives.
func Spawn1[A any](alloc Allocator, a A, fn Func) (Continuation, error) {
	return spawnWithPayload(alloc, []any{a}, fn)
}

// Spawn2 is Spawn seeded with two initial values, decodable via Data2.
func Spawn2[A, B any](alloc Allocator, a A, b B, fn Func) (Continuation, error) {
	return spawnWithPayload(alloc, []any{a, b}, fn)
}

// SpawnArgs is Spawn seeded with an arbitrary number of initial values,
// for callers that don't know the arity at compile time. A nil or empty
// args behaves like Spawn.
func SpawnArgs(alloc Allocator, args []any, fn Func) (Continuation, error) {
	return spawnWithPayload(alloc, args, fn)
}

func spawnWithPayload(alloc Allocator, payload []any, fn Func) (Continuation, error) {
	if alloc == nil {
		alloc = defaultAllocator
	}
	stack, err := alloc.Allocate()
	if err != nil {
		return Continuation{}, ErrStackExhausted
	}
	rec := frame.New(alloc, stack)

	entry := fcontext.Make(func(self, from *fcontext.Rendezvous, w fcontext.Word) {
		runCoroutine(rec, fn, from, w)
	})
	from, w := fcontext.Jump(entry, pack(payload))
	return wrap(from, w), nil
}

// runCoroutine is the body of every coroutine's goroutine. It runs fn
// against the continuation that first switched into it, destroys the
// coroutine's stack exactly once regardless of how fn's run ends, and
// performs the terminal switch to whoever should regain control next.
func runCoroutine(rec *frame.Record, fn Func, from *fcontext.Rendezvous, w fcontext.Word) {
	result, unwoundTo := runBody(rec, fn, from, w)
	rec.Destroy()
	if unwoundTo != nil {
		fcontext.Finish(unwoundTo, nil)
		return
	}
	target := result.consume("spawn-return")
	fcontext.Finish(target, pack(nil))
}

// runBody runs fn under a recover that distinguishes a forced unwind
// (internal/frame's signal, delivered by Drop or the finalizer) from a
// genuine panic escaping user code. A forced unwind is reported back to
// the caller so it can perform the terminal switch to the dropper; any
// other panic keeps propagating and crashes the process, the same as any
// other unrecovered goroutine panic.
func runBody(rec *frame.Record, fn Func, from *fcontext.Rendezvous, w fcontext.Word) (result Continuation, unwoundTo *fcontext.Rendezvous) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if resume, ok := frame.Unwinding(r); ok {
			unwoundTo = resume
			return
		}
		rec.Destroy()
		panic(r)
	}()
	result = fn(wrap(from, w))
	return result, nil
}

// dropRendezvous forces the execution identified by rv to unwind. It
// delivers an on-top hook that panics with the forced-unwind signal at
// rv's suspension site, naming the Rendezvous OnTop itself creates as the
// execution to resume once teardown finishes, then blocks until
// runCoroutine's terminal Finish call wakes it back up.
func dropRendezvous(rv *fcontext.Rendezvous) {
	fcontext.OnTop(rv, nil, func(from *fcontext.Rendezvous, _ fcontext.Word) fcontext.Word {
		frame.Unwind(from)
		panic("unreachable")
	})
}
