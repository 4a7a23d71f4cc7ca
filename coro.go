package cosched

import (
	_ "unsafe"
)

// coroutine is the runtime's coro. Only its address is ever used.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// switchIn hands control to r and returns once r yields, finishes or
// unwinds. It must be called with no coroutine running. The first switch
// binds r to a fresh runtime coroutine that starts in the trampoline.
func (s *Scheduler[V]) switchIn(r *record[V]) {
	r.status = Running
	s.running, s.current = r.id, r
	if r.co == nil {
		r.co = newcoro(func(*coroutine) { s.trampoline(r) })
	}
	coroswitch(r.co)
	s.running, s.current = noID, nil
}

// switchOut parks the running coroutine r and returns when it is switched
// in again. A coroutine destroyed in the meantime unwinds from here.
func (s *Scheduler[V]) switchOut(r *record[V]) {
	r.status = Suspended
	coroswitch(r.co)
	if r.killed {
		panic(errDestroyed)
	}
}

// trampoline is the first frame of every coroutine. It runs the entry
// function once and records how it ended, including runtime.Goexit, before
// control goes back to the switching side in the Finished state.
func (s *Scheduler[V]) trampoline(r *record[V]) {
	defer func() {
		if p := recover(); p != nil {
			if p == any(errDestroyed) {
				r.unwound = true
			} else {
				r.perr = newPanicError(r.id, p)
			}
		}
		r.status = Finished
	}()

	// The first Resume value is not delivered; the entry gets its argument.
	var zero V
	r.pending = zero
	r.pending = r.entry(r.arg)
	r.returned = true
}
