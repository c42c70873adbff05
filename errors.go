package callcc

import "errors"

// ErrStackExhausted is returned by Spawn when the Allocator cannot fulfill
// a stack request. No continuation is created.
var ErrStackExhausted = errors.New("callcc: stack allocation failed")

// ErrStackTooSmall is returned by Preallocated.Allocate when Reserved
// leaves no usable space in the supplied region.
var ErrStackTooSmall = errors.New("callcc: preallocated stack too small")

// ContractViolation is panicked for programmer errors: resuming a
// not-a-context handle, or decoding a payload with the wrong arity or
// type. The checks are cheap enough to always run. Resuming a suspension
// point a second time through a stale copy also panics, but with
// internal/fcontext's own message rather than a ContractViolation.
type ContractViolation struct {
	Op  string
	Msg string
}

func (e *ContractViolation) Error() string {
	return "callcc: " + e.Op + ": " + e.Msg
}

func violation(op, msg string) {
	panic(&ContractViolation{Op: op, Msg: msg})
}
