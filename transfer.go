package callcc

import "github.com/gorcc/callcc/internal/fcontext"

// pack and unpack bridge the typed N-ary transfer API onto the single
// fcontext.Word a switch actually carries. A switch that transfers nothing
// carries a nil Word and unpacks to a nil payload; a switch carrying one
// value is wrapped into a one-element slice rather than stored bare, so
// Data's decode path never has to special-case arity 1 against arity N≥2.
func pack(values []any) fcontext.Word {
	if len(values) == 0 {
		return nil
	}
	return values
}

func unpack(w fcontext.Word) []any {
	if w == nil {
		return nil
	}
	return w.([]any)
}

// Data decodes a one-value payload transferred into c. It panics with a
// ContractViolation if c carries no payload, more or fewer than one
// value, or a value that isn't a T.
func Data[T any](c Continuation) T {
	v := one(c, "Data")
	t, ok := v.(T)
	if !ok {
		violation("Data", "payload type mismatch")
	}
	return t
}

// Data2 decodes a two-value payload transferred into c.
func Data2[T1, T2 any](c Continuation) (T1, T2) {
	vs := n(c, "Data2", 2)
	t1, ok1 := vs[0].(T1)
	t2, ok2 := vs[1].(T2)
	if !ok1 || !ok2 {
		violation("Data2", "payload type mismatch")
	}
	return t1, t2
}

// Data3 decodes a three-value payload transferred into c.
func Data3[T1, T2, T3 any](c Continuation) (T1, T2, T3) {
	vs := n(c, "Data3", 3)
	t1, ok1 := vs[0].(T1)
	t2, ok2 := vs[1].(T2)
	t3, ok3 := vs[2].(T3)
	if !ok1 || !ok2 || !ok3 {
		violation("Data3", "payload type mismatch")
	}
	return t1, t2, t3
}

func one(c Continuation, op string) any {
	vs := n(c, op, 1)
	return vs[0]
}

func n(c Continuation, op string, want int) []any {
	if len(c.payload) != want {
		violation(op, "payload arity mismatch")
	}
	return c.payload
}
