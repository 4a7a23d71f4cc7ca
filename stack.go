package cosched

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultStackSize is the private stack size given to every coroutine when
// no size is configured. The 1 KiB default of the classic ucontext
// schedulers is too small for real workloads.
//
// The size bounds the scratch buffer returned by Scheduler.Stack, not the
// execution stack: coroutine code runs on a goroutine stack that the Go
// runtime grows as needed, so it does not limit recursion depth.
const DefaultStackSize = 64 << 10

// Stack is the fixed-size private stack buffer of one coroutine. It is
// owned by exactly one coroutine between Allocate and Release and is
// reachable only through Scheduler.Stack while that coroutine runs. The
// coroutine does not execute on it.
type Stack struct {
	buf  []byte
	live bool
}

// Bytes returns the stack buffer. The slice must not be retained after the
// owning coroutine finishes or is destroyed.
func (s *Stack) Bytes() []byte { return s.buf }

// Len returns the size of the buffer in bytes.
func (s *Stack) Len() int { return len(s.buf) }

// StackAllocator obtains and releases coroutine stacks. A scheduler calls
// Allocate once per Create and Release exactly once per allocated stack.
type StackAllocator interface {
	Allocate(size int) (*Stack, error)
	Release(st *Stack)
}

// AllocatorStats is a snapshot of PoolAllocator counters.
type AllocatorStats struct {
	Live      int64
	Allocated uint64
	Released  uint64
}

// PoolAllocator recycles stack buffers through per-size sync.Pools and can
// bound the number of stacks alive at once. It is safe to share between
// schedulers.
type PoolAllocator struct {
	limit     int64
	live      atomic.Int64
	allocated atomic.Uint64
	released  atomic.Uint64
	pools     sync.Map // int -> *sync.Pool
}

// NewPoolAllocator returns an allocator that fails once limit stacks are
// live. A limit of zero or less means no limit.
func NewPoolAllocator(limit int) *PoolAllocator {
	return &PoolAllocator{limit: int64(limit)}
}

// Allocate returns a zeroed stack of size bytes.
func (a *PoolAllocator) Allocate(size int) (*Stack, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid stack size %d", ErrAllocationFailed, size)
	}
	if !a.reserve() {
		return nil, fmt.Errorf("%w: %d stacks live, limit %d", ErrAllocationFailed, a.live.Load(), a.limit)
	}
	st := a.pool(size).Get().(*Stack)
	st.live = true
	a.allocated.Add(1)
	return st, nil
}

// Release zeroes st and returns it to its pool. Releasing a stack that is
// not live is a no-op.
func (a *PoolAllocator) Release(st *Stack) {
	if st == nil || !st.live {
		return
	}
	st.live = false
	clear(st.buf)
	a.pool(len(st.buf)).Put(st)
	a.live.Add(-1)
	a.released.Add(1)
}

// Stats returns the current counters.
func (a *PoolAllocator) Stats() AllocatorStats {
	return AllocatorStats{
		Live:      a.live.Load(),
		Allocated: a.allocated.Load(),
		Released:  a.released.Load(),
	}
}

func (a *PoolAllocator) reserve() bool {
	for {
		n := a.live.Load()
		if a.limit > 0 && n >= a.limit {
			return false
		}
		if a.live.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (a *PoolAllocator) pool(size int) *sync.Pool {
	if p, ok := a.pools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := a.pools.LoadOrStore(size, &sync.Pool{
		New: func() any { return &Stack{buf: make([]byte, size)} },
	})
	return p.(*sync.Pool)
}
