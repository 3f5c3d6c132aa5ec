package concurrency

import (
	"sync"
	"testing"
)

// reserve() touches only the cursor, so hammering it from many goroutines is
// race-free and exposes the reservation protocol on its own.
func TestReserve_NoLostReservationHighContention(t *testing.T) {
	cases := []struct {
		capacity int
		callers  int
		per      int
	}{
		{4, 20, 1},
		{4, 100, 1},
		{4, 16, 2500},
		{7, 32, 1000},
	}
	for _, tc := range cases {
		obs := newIndexObserver(tc.capacity)
		rb, err := NewRingBuffer[int](tc.capacity, nil, WithObserver(obs))
		if err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for c := 0; c < tc.callers; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := 0; i < tc.per; i++ {
					rb.reserve()
				}
			}()
		}
		close(start)
		wg.Wait()

		total := tc.callers * tc.per
		if got := obs.reserves.Load(); got != int64(total) {
			t.Errorf("cap=%d M=%d: expected %d reservations, got %d", tc.capacity, total, total, got)
		}
		if got, want := rb.Cursor(), uint64(total%tc.capacity); got != want {
			t.Errorf("cap=%d M=%d: expected final cursor %d, got %d", tc.capacity, total, want, got)
		}
		// The cursor advances strictly one step per reservation, so every index
		// is reserved floor(M/cap) or ceil(M/cap) times. A duplicated or lost
		// reservation would skew the distribution.
		for i := 0; i < tc.capacity; i++ {
			want := int64(total / tc.capacity)
			if i < total%tc.capacity {
				want++
			}
			if got := obs.perIndex[i].Load(); got != want {
				t.Errorf("cap=%d M=%d: index %d reserved %d times, expected %d", tc.capacity, total, i, got, want)
			}
		}
	}
}

func TestReserve_ReturnsPreUpdateIndex(t *testing.T) {
	rb, err := NewRingBuffer[int](3, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []uint64{0, 1, 2, 0, 1} {
		if got := rb.reserve(); got != want {
			t.Fatalf("reservation %d: expected index %d, got %d", i, want, got)
		}
	}
}
