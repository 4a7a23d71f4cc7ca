package cosched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocatorAllocate(t *testing.T) {
	r := require.New(t)
	a := NewPoolAllocator(0)

	st, err := a.Allocate(128)
	r.NoError(err)
	r.Equal(128, st.Len())
	r.Len(st.Bytes(), 128)
	r.Equal(AllocatorStats{Live: 1, Allocated: 1}, a.Stats())

	a.Release(st)
	r.Equal(AllocatorStats{Live: 0, Allocated: 1, Released: 1}, a.Stats())
}

func TestPoolAllocatorInvalidSize(t *testing.T) {
	r := require.New(t)
	a := NewPoolAllocator(0)

	for _, size := range []int{0, -1} {
		st, err := a.Allocate(size)
		r.ErrorIs(err, ErrAllocationFailed)
		r.Nil(st)
	}
	r.Equal(AllocatorStats{}, a.Stats())
}

func TestPoolAllocatorLimit(t *testing.T) {
	r := require.New(t)
	a := NewPoolAllocator(2)

	s1, err := a.Allocate(16)
	r.NoError(err)
	_, err = a.Allocate(16)
	r.NoError(err)

	_, err = a.Allocate(16)
	r.ErrorIs(err, ErrAllocationFailed)
	r.Equal(int64(2), a.Stats().Live)

	a.Release(s1)
	_, err = a.Allocate(16)
	r.NoError(err)
}

func TestPoolAllocatorReleaseOnce(t *testing.T) {
	r := require.New(t)
	a := NewPoolAllocator(0)

	st, err := a.Allocate(8)
	r.NoError(err)
	a.Release(st)
	a.Release(st)
	a.Release(nil)

	r.Equal(AllocatorStats{Live: 0, Allocated: 1, Released: 1}, a.Stats())
}

func TestPoolAllocatorZeroesReleasedStacks(t *testing.T) {
	r := require.New(t)
	a := NewPoolAllocator(0)

	st, err := a.Allocate(32)
	r.NoError(err)
	for i := range st.Bytes() {
		st.Bytes()[i] = 0xff
	}
	a.Release(st)
	r.Equal(make([]byte, 32), st.Bytes())

	again, err := a.Allocate(32)
	r.NoError(err)
	r.Equal(make([]byte, 32), again.Bytes())
}
