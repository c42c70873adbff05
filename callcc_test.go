package callcc

import "testing"

func TestIntegerTransfer(t *testing.T) {
	var value1 int

	c, err := Spawn1(nil, 7, func(c Continuation) Continuation {
		value1 = Data[int](c)
		return c
	})
	if err != nil {
		t.Fatal(err)
	}
	if value1 != 7 {
		t.Fatalf("value1 = %d, want 7", value1)
	}
	if c.Valid() {
		t.Fatalf("expected an invalid continuation back, fn returned its own received one")
	}
}

func TestFloatingPointSurvival(t *testing.T) {
	var value3 float64

	c, err := Spawn1(nil, 7.13, func(c Continuation) Continuation {
		d := Data[float64](c)
		value3 = d + 3.45
		return c
	})
	if err != nil {
		t.Fatal(err)
	}
	if value3 != 10.58 {
		t.Fatalf("value3 = %v, want 10.58", value3)
	}
	if c.Valid() {
		t.Fatalf("expected an invalid continuation back")
	}
}

func TestRecoveredPanicInsideCoroutine(t *testing.T) {
	var value2 string

	c, err := Spawn1(nil, "hello world", func(c Continuation) Continuation {
		func() {
			defer func() {
				if r := recover(); r != nil {
					value2 = r.(string)
				}
			}()
			panic(Data[string](c))
		}()
		return c
	})
	if err != nil {
		t.Fatal(err)
	}
	if value2 != "hello world" {
		t.Fatalf("value2 = %q, want %q", value2, "hello world")
	}
	if c.Valid() {
		t.Fatalf("expected an invalid continuation back")
	}
}

func TestStackedSpawn(t *testing.T) {
	var value1 int
	var value3 float64
	var innerErr error

	outer, err := Spawn(nil, func(c Continuation) Continuation {
		_, innerErr = Spawn(nil, func(inner Continuation) Continuation {
			value1 = 3
			return inner
		})
		value3 = 3.14
		return c
	})
	if err != nil {
		t.Fatal(err)
	}
	if innerErr != nil {
		t.Fatal(innerErr)
	}
	if value1 != 3 {
		t.Fatalf("value1 = %d, want 3", value1)
	}
	if value3 != 3.14 {
		t.Fatalf("value3 = %v, want 3.14", value3)
	}
	if outer.Valid() {
		t.Fatalf("expected the outer spawn to hand back an invalid continuation")
	}
}

// destroyOrder mirrors Y in test_callcc.cpp: a value whose destruction is
// observable, used to prove a forced unwind runs deferred cleanup inside
// the coroutine before its stack is reclaimed.
type destroyOrder struct {
	log *[]string
	tag string
}

func (d *destroyOrder) release() {
	*d.log = append(*d.log, d.tag)
}

func TestDropRunsDeferredCleanup(t *testing.T) {
	var log []string

	c, err := Spawn(nil, func(c Continuation) Continuation {
		y := &destroyOrder{log: &log, tag: "y"}
		defer y.release()
		return Resume(c)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Fatalf("cleanup ran before the coroutine suspended: %v", log)
	}

	c.Drop()

	if len(log) != 1 || log[0] != "y" {
		t.Fatalf("got cleanup log %v, want [y] after Drop", log)
	}
	if c.Valid() {
		t.Fatalf("a dropped continuation must report invalid")
	}
}

func TestMultiValueTransfer(t *testing.T) {
	c, err := Spawn2(nil, 3, 1, func(c Continuation) Continuation {
		x, y := Data2[int, int](c)
		return Resume(c, x+y, x-y)
	})
	if err != nil {
		t.Fatal(err)
	}
	x, y := Data2[int, int](c)
	if x != 4 || y != 2 {
		t.Fatalf("got (%d, %d), want (4, 2)", x, y)
	}
}

func TestResumeOnTopArithmetic(t *testing.T) {
	i := 3

	c, err := Spawn1(nil, i, func(c Continuation) Continuation {
		x := Data[int](c)
		for {
			c = Resume(c, x*10)
			if HasData(c) {
				x = Data[int](c)
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	c = ResumeOnTop(c, func(Continuation) any {
		return i - 10
	})

	if !c.Valid() {
		t.Fatalf("expected a valid continuation back")
	}
	if !HasData(c) {
		t.Fatalf("expected a payload on the final switch back")
	}
	if got := Data[int](c); got != -70 {
		t.Fatalf("got %d, want -70", got)
	}
}

// targetedException mirrors my_exception in test_callcc.cpp: an on-top
// hook uses it to unwind a caught panic back across the switch, carrying
// the continuation the catcher should hand back once it has recorded the
// failure.
type targetedException struct {
	c    Continuation
	what string
}

func TestResumeOnTopException(t *testing.T) {
	var value1 int
	var value2 string

	c, err := Spawn(nil, func(c Continuation) Continuation {
		for {
			value1 = 3
			caught := func() (ex *targetedException) {
				defer func() {
					if r := recover(); r != nil {
						e, ok := r.(*targetedException)
						if !ok {
							panic(r)
						}
						ex = e
					}
				}()
				c = Resume(c)
				return nil
			}()
			if caught != nil {
				value2 = caught.what
				return caught.c
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	c = Resume(c)
	if value1 != 3 {
		t.Fatalf("value1 = %d, want 3", value1)
	}

	what := "hello world"
	c = ResumeOnTop(c, func(self Continuation) any {
		panic(&targetedException{c: self, what: what})
	})

	if value1 != 3 {
		t.Fatalf("value1 = %d, want 3 (no further loop iteration should have run)", value1)
	}
	if value2 != what {
		t.Fatalf("value2 = %q, want %q", value2, what)
	}
}

func TestResumeOnTopValuesMultiReturn(t *testing.T) {
	// echo: whatever payload this coroutine is resumed with, it
	// immediately forwards back out on its next switch, so the test can
	// observe exactly what a ResumeOnTop hook handed it.
	c, err := Spawn(nil, func(c Continuation) Continuation {
		for {
			if HasData(c) {
				x, y := Data2[int, int](c)
				c = Resume(c, x, y)
			} else {
				c = Resume(c)
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	c = ResumeOnTop(c, func(Continuation) any {
		return Values(2, 4)
	})

	x, y := Data2[int, int](c)
	if x != 2 || y != 4 {
		t.Fatalf("got (%d, %d), want (2, 4)", x, y)
	}
}

func TestFixedSizeStackBoundsConcurrency(t *testing.T) {
	alloc := NewFixedSizeStack(4096, 1)

	first, err := alloc.Allocate()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		if _, err := alloc.Allocate(); err != nil {
			t.Error(err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("second Allocate should have blocked while the first stack is still live")
	default:
	}

	if err := alloc.Deallocate(first); err != nil {
		t.Fatal(err)
	}
	<-done
}

// failingAllocator always fails to allocate, for exercising Spawn's
// failure path without needing to exhaust a real bound first.
type failingAllocator struct{}

func (failingAllocator) Allocate() (StackContext, error) { return StackContext{}, ErrStackTooSmall }
func (failingAllocator) Deallocate(StackContext) error   { return nil }

func TestSpawnSurfacesAllocationFailure(t *testing.T) {
	_, err := Spawn(failingAllocator{}, func(c Continuation) Continuation { return c })
	if err != ErrStackExhausted {
		t.Fatalf("got %v, want %v", err, ErrStackExhausted)
	}
}

func TestResumeAfterConsumePanics(t *testing.T) {
	c, err := Spawn(nil, func(c Continuation) Continuation {
		return Resume(c)
	})
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a second resume of the same suspension point to panic")
		}
	}()
	_ = Resume(c)
	_ = Resume(c) // same unreassigned handle: the underlying suspension point has already been resumed once
}
