// Package fcontext implements a symmetric transfer of control between two
// goroutines, delivering a single one-word payload on each switch.
//
// A goroutine plays the role of a stack; an unbuffered channel send/receive
// plays the role of the switch. Jump and OnTop block the caller until
// something switches back to it, and OnTop's hook runs on the target's own
// goroutine, at the point the target last suspended, before the target's
// own code resumes.
package fcontext

import "sync/atomic"

// Word is the one machine word a switch carries.
type Word = any

// Rendezvous is an opaque handle to a suspended execution's resume point.
// A Rendezvous is used for exactly one send and one receive; a second
// attempt to deliver to it panics rather than deadlocking silently.
type Rendezvous struct {
	ch      chan message
	resumed atomic.Bool
}

type message struct {
	from *Rendezvous
	word Word
	hook func(from *Rendezvous, w Word) Word
}

func newRendezvous() *Rendezvous {
	return &Rendezvous{ch: make(chan message)}
}

// Make starts the goroutine that will run entry once the first switch
// arrives, and returns the Rendezvous identifying it. entry receives the
// Rendezvous it was started with (self), the execution that switched into
// it (from), and the word that was delivered.
func Make(entry func(self *Rendezvous, from *Rendezvous, w Word)) *Rendezvous {
	self := newRendezvous()
	go func() {
		from, w := receiveOn(self)
		entry(self, from, w)
	}()
	return self
}

// Jump atomically switches control to target, delivering w, and blocks
// until some execution switches back. It returns the execution that
// switched back and the word it delivered.
func Jump(target *Rendezvous, w Word) (*Rendezvous, Word) {
	return deliver(target, w, nil)
}

// OnTop is like Jump, except hook runs on target's own goroutine, at its
// suspension site, before target's code observes the delivered word. The
// value hook returns replaces w for the target. hook receives the
// execution that is arriving at the target (the one that called OnTop).
//
// If hook panics, the panic propagates up the target's own call stack
// exactly like any other panic raised at that point in its execution.
// OnTop does not install a recover.
func OnTop(target *Rendezvous, w Word, hook func(from *Rendezvous, w Word) Word) (*Rendezvous, Word) {
	return deliver(target, w, hook)
}

// Finish delivers a final word to target and returns immediately, without
// waiting for a reply. Use it for the terminal switch out of an execution
// that has just finished running and will never be resumed again; Jump
// would park the caller forever waiting for a reply that will never come.
// The receiving side sees this switch's origin as nil.
func Finish(target *Rendezvous, w Word) {
	if !target.resumed.CompareAndSwap(false, true) {
		panic("fcontext: target execution already resumed")
	}
	target.ch <- message{from: nil, word: w}
}

func deliver(target *Rendezvous, w Word, hook func(*Rendezvous, Word) Word) (*Rendezvous, Word) {
	if !target.resumed.CompareAndSwap(false, true) {
		panic("fcontext: target execution already resumed")
	}
	self := newRendezvous()
	target.ch <- message{from: self, word: w, hook: hook}
	return receiveOn(self)
}

// receiveOn blocks until a message arrives for self, running any attached
// hook inline before returning. It is shared by Make's entry wait and by
// Jump/OnTop's wait for a reply, since both are "arrive at a suspension
// site" in the same sense.
func receiveOn(self *Rendezvous) (*Rendezvous, Word) {
	msg := <-self.ch
	w := msg.word
	if msg.hook != nil {
		w = msg.hook(msg.from, w)
	}
	return msg.from, w
}
