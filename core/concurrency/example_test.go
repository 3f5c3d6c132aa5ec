package concurrency_test

import (
	"fmt"

	"github.com/momentics/hioload-ring/core/concurrency"
)

func ExampleRingBuffer() {
	rb, err := concurrency.NewRingBuffer[int](4, nil)
	if err != nil {
		panic(err)
	}
	defer rb.Destroy()

	for _, v := range []int{10, 20, 30, 40, 50} {
		rb.Add(v)
	}

	snap, err := concurrency.NewSortedSnapshot(rb, func(a, b int) bool { return a < b })
	if err != nil {
		panic(err)
	}
	defer snap.Release()

	fmt.Println(snap.Values(), rb.Cursor())
	// Output: [20 30 40 50] 1
}
