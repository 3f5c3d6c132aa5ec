package concurrency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ring/api"
)

func intLess(a, b int) bool { return a < b }

func TestSortedSnapshot_Sorts(t *testing.T) {
	rb, err := NewRingBuffer[int](5, nil)
	require.NoError(t, err)
	for _, v := range []int{42, 7, 19, 3, 25} {
		rb.Add(v)
	}

	snap, err := NewSortedSnapshot(rb, intLess)
	require.NoError(t, err)
	defer snap.Release()

	assert.Equal(t, []int{3, 7, 19, 25, 42}, snap.Values())
	assert.Equal(t, 5, snap.Len())
	assert.Equal(t, 3, snap.At(0))
	assert.Equal(t, []int{42, 7, 19, 3, 25}, rb.elements, "ring order must not change")
}

func TestSortedSnapshot_CustomOrder(t *testing.T) {
	rb, err := NewRingBuffer[string](4, nil)
	require.NoError(t, err)
	for _, v := range []string{"bb", "a", "dddd", "ccc"} {
		rb.Add(v)
	}
	byLenDesc := func(a, b string) bool { return len(a) > len(b) }

	snap, err := NewSortedSnapshot(rb, byLenDesc)
	require.NoError(t, err)
	assert.Equal(t, "dddd ccc bb a", strings.Join(snap.Values(), " "))
}

func TestSortedSnapshot_IndependentOfLaterAdds(t *testing.T) {
	rb, err := NewRingBuffer[int](4, nil)
	require.NoError(t, err)
	for _, v := range []int{10, 20, 30, 40} {
		rb.Add(v)
	}
	snap, err := NewSortedSnapshot(rb, intLess)
	require.NoError(t, err)

	for _, v := range []int{1, 2, 3, 4, 5} {
		rb.Add(v)
	}
	assert.Equal(t, []int{10, 20, 30, 40}, snap.Values())
}

func TestSortedSnapshot_AllocationError(t *testing.T) {
	alloc := &trackingAllocator[int]{limit: 1}
	rb, err := NewRingBuffer[int](4, alloc)
	require.NoError(t, err)

	snap, err := NewSortedSnapshot(rb, intLess)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, api.ErrAllocation)
}

func TestSortedSnapshot_NilComparator(t *testing.T) {
	rb, err := NewRingBuffer[int](2, nil)
	require.NoError(t, err)
	_, err = NewSortedSnapshot[int](rb, nil)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestSortedSnapshot_ReleaseOnce(t *testing.T) {
	alloc := &trackingAllocator[int]{}
	rb, err := NewRingBuffer[int](3, alloc)
	require.NoError(t, err)

	snap, err := NewSortedSnapshot(rb, intLess)
	require.NoError(t, err)
	snap.Release()
	snap.Release()
	rb.Destroy()

	assert.EqualValues(t, 2, alloc.allocs.Load())
	assert.EqualValues(t, 2, alloc.frees.Load())
	assert.Equal(t, 0, snap.Len())
}
