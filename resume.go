package callcc

import "github.com/gorcc/callcc/internal/fcontext"

// Resume switches control to c, carrying args as the payload the resumed
// execution observes via Data, Data2, or Data3, and blocks until that
// execution (or whatever it in turn switches to) switches back. It
// returns the continuation of whoever resumed the caller, consuming c.
//
// Resuming an invalid or already-consumed Continuation panics rather than
// silently doing nothing.
func Resume(c Continuation, args ...any) Continuation {
	rv := c.consume("Resume")
	from, w := fcontext.Jump(rv, pack(args))
	return wrap(from, w)
}

// Values bundles multiple values into the single payload a ResumeOnTop
// hook can return. A hook that returns any other value delivers exactly
// that one value, except that a bare []any is spread into its elements
// just as if it had been passed through Values; a hook that returns nil
// delivers no payload at all.
func Values(vs ...any) any {
	return []any(vs)
}

func normalizeHookResult(v any) []any {
	if v == nil {
		return nil
	}
	if vs, ok := v.([]any); ok {
		return vs
	}
	return []any{v}
}

// ResumeOnTop switches control to c like Resume, but runs hook on c's own
// goroutine at its suspension site before that execution observes
// anything. hook receives the continuation of the caller of ResumeOnTop
// and returns the payload the resumed execution should see; wrap it in
// Values to deliver more than one value.
//
// hook runs before the target's own code resumes, so it can adjust shared
// state atomically with the switch. If hook itself panics, that panic
// propagates on the target's stack, not the caller's, exactly like a
// panic raised natively at that suspension point.
func ResumeOnTop(c Continuation, hook func(Continuation) any) Continuation {
	rv := c.consume("ResumeOnTop")
	from, w := fcontext.OnTop(rv, nil, func(from *fcontext.Rendezvous, w fcontext.Word) fcontext.Word {
		result := hook(wrap(from, w))
		return pack(normalizeHookResult(result))
	})
	return wrap(from, w)
}
