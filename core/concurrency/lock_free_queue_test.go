package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockFreeQueue_Bounds(t *testing.T) {
	q := NewLockFreeQueue[int](3)
	if q.Cap() != 4 {
		t.Fatalf("Expected capacity rounded to 4, got %d", q.Cap())
	}
	for i := 0; i < 4; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("Expected Enqueue(%d) to succeed", i)
		}
	}
	if q.Enqueue(99) {
		t.Error("Expected Enqueue to fail when queue is full")
	}
	if q.Len() != 4 {
		t.Errorf("Expected length 4, got %d", q.Len())
	}
	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("Expected FIFO item %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Expected Dequeue to fail when queue is empty")
	}
}

func TestLockFreeQueue_MinimumCapacity(t *testing.T) {
	if got := NewLockFreeQueue[int](0).Cap(); got != 2 {
		t.Errorf("Expected minimum capacity 2, got %d", got)
	}
}

func TestLockFreeQueue_MPMC(t *testing.T) {
	q := NewLockFreeQueue[int](1024)
	producers := 8
	consumers := 8
	itemsPerProducer := 10000

	var wg sync.WaitGroup
	var sentSum int64
	var receivedSum int64
	var receivedCount int64
	totalItems := int64(producers * itemsPerProducer)

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				val := pid*itemsPerProducer + i + 1
				for !q.Enqueue(val) {
					runtime.Gosched()
				}
				atomic.AddInt64(&sentSum, int64(val))
			}
		}(p)
	}

	consumerWg := sync.WaitGroup{}
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for {
				if val, ok := q.Dequeue(); ok {
					atomic.AddInt64(&receivedSum, int64(val))
					if atomic.AddInt64(&receivedCount, 1) == totalItems {
						return
					}
				} else {
					if atomic.LoadInt64(&receivedCount) >= totalItems {
						return
					}
					runtime.Gosched()
				}
			}
		}()
	}

	wg.Wait()

	done := make(chan struct{})
	go func() {
		consumerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if sentSum != receivedSum {
			t.Errorf("Checksum mismatch: sent %d, received %d", sentSum, receivedSum)
		}
	case <-time.After(10 * time.Second):
		t.Errorf("Timeout waiting for consumers. Received %d/%d", atomic.LoadInt64(&receivedCount), totalItems)
	}
}
