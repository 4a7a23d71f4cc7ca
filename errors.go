package cosched

import "errors"

var (
	// ErrAllocationFailed is returned by Create when the private stack of a
	// new coroutine cannot be obtained.
	ErrAllocationFailed = errors.New("cosched: stack allocation failed")

	// ErrNotFound is returned when an operation names an id that does not
	// resolve to a live coroutine.
	ErrNotFound = errors.New("cosched: coroutine not found")

	// ErrInvalidState is returned when Resume targets a coroutine that
	// cannot run: it is already running, it has finished or been destroyed,
	// or another coroutine of the same scheduler is running.
	ErrInvalidState = errors.New("cosched: invalid coroutine state")

	// ErrNoActiveCoroutine is returned by Yield and Stack when no coroutine
	// is running.
	ErrNoActiveCoroutine = errors.New("cosched: no active coroutine")
)

// errDestroyed is the panic value used to unwind a coroutine that was
// destroyed while suspended. It never leaves the package.
var errDestroyed = errors.New("cosched: coroutine destroyed")
