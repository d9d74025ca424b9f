package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/resonix-audio/audioengine/pkg/ringbuffer"
)

func main() {
	// Create a ring buffer sized for 1024 float32 samples
	prod, cons := ringbuffer.New(1024)

	fmt.Println("Lock-free SPSC Ring Buffer Demo")
	fmt.Printf("Buffer capacity: %d samples\n\n", prod.Capacity())

	var wg sync.WaitGroup
	wg.Add(2)

	// Producer goroutine - simulates decoded audio samples
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			chunk := make([]float32, 64)
			for j := range chunk {
				chunk[j] = float32(i*10+j) / 1000
			}

			remaining := chunk
			for len(remaining) > 0 {
				n := prod.PushSlice(remaining)
				remaining = remaining[n:]
				if len(remaining) > 0 {
					time.Sleep(time.Millisecond)
				}
			}

			fmt.Printf("Producer: pushed chunk %d, queued: %d samples\n",
				i, prod.QueuedSamples())

			time.Sleep(10 * time.Millisecond)
		}
		fmt.Println("Producer: finished")
	}()

	// Consumer goroutine - simulates the device output callback
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond) // start slightly after producer

		totalRead := 0
		for totalRead < 640 { // 10 chunks * 64 samples
			buf := make([]float32, 64)

			for cons.AvailableRead() == 0 {
				time.Sleep(time.Millisecond)
			}

			n := cons.PopSlice(buf)
			totalRead += n
			fmt.Printf("Consumer: popped %d samples, total: %d, remaining: %d\n",
				n, totalRead, cons.AvailableRead())

			time.Sleep(15 * time.Millisecond)
		}
		fmt.Println("Consumer: finished")
	}()

	wg.Wait()
	fmt.Println("\nDemo completed successfully!")
}
