package frame

import "github.com/gorcc/callcc/internal/fcontext"

// signal is the forced-unwind sentinel. It is unexported so user code has
// no way to name or construct it: a defer that blindly does recover() will
// still intercept it, but a defer written to handle a specific user error
// type cannot mistake it for one, and a rethrowing catch-all passes it
// straight through.
type signal struct {
	resume *fcontext.Rendezvous
}

// Unwind panics with the forced-unwind signal, naming resume as the
// execution that should regain control once the unwinding execution has
// torn down its stack. It never returns.
func Unwind(resume *fcontext.Rendezvous) {
	panic(signal{resume: resume})
}

// Unwinding reports whether a value recovered from a panic is the
// forced-unwind signal, and if so, who should be resumed next.
func Unwinding(v any) (resume *fcontext.Rendezvous, ok bool) {
	s, ok := v.(signal)
	if !ok {
		return nil, false
	}
	return s.resume, true
}
