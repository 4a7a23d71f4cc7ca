// Package cosched provides a stackful, symmetric, single-threaded
// cooperative coroutine scheduler. A Scheduler runs any number of
// coroutines, each with its own call stack, that hand control back and
// forth with the driving flow through explicit Resume and Yield calls.
// There is no preemption and no parallelism: exactly one flow of control
// runs at any instant, and ordering is whatever the driver chooses.
//
// A coroutine is created with Create, which returns an opaque ID. The
// driver then calls Resume with that id and a value; the coroutine sees the
// value as the result of its pending Yield, and the value it passes to its
// next Yield, or returns from its entry function, becomes the result of
// Resume. Transfer values have the scheduler's type parameter V and are
// never inspected by the scheduler.
//
// Every coroutine moves through Ready, Running, Suspended and Finished.
// A coroutine that returns is released, and its id retired, before the
// Resume that observed it returns. Misuse is reported as an error wrapping
// ErrAllocationFailed, ErrNotFound, ErrInvalidState or
// ErrNoActiveCoroutine, and panics inside a coroutine are returned as
// *PanicError rather than crashing the driver.
//
// Each coroutine owns a fixed-size private stack buffer obtained from a
// StackAllocator when it is created and released exactly once when it
// finishes or is destroyed. Control transfer is built on the Go runtime's
// coroutine switch, so a handoff costs no goroutine scheduling.
package cosched
