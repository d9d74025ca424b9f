// Package ringbuffer implements a lock-free single-producer single-consumer
// ring buffer of float32 audio samples.
package ringbuffer

import "sync/atomic"

// RingBuffer is the shared backing store for a Producer/Consumer pair.
// It is never used directly by callers; New returns the two move-only
// halves that hold the actual push/pop API.
type RingBuffer struct {
	buffer   []float32
	size     uint64 // must be power of 2
	mask     uint64 // size - 1, for efficient modulo
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

// New creates a new ring buffer sized to hold at least capacitySamples
// float32 samples, rounded up to the next power of 2, and returns its
// producer and consumer halves. Each half is move-only in spirit: New
// hands them out exactly once, so the "exactly one producer, exactly one
// consumer" invariant required by the lock-free algorithm holds by
// construction rather than by convention.
func New(capacitySamples uint64) (*Producer, *Consumer) {
	capacitySamples = nextPowerOf2(capacitySamples)
	rb := &RingBuffer{
		buffer: make([]float32, capacitySamples),
		size:   capacitySamples,
		mask:   capacitySamples - 1,
	}
	return &Producer{rb: rb}, &Consumer{rb: rb}
}

func (rb *RingBuffer) availableWrite() uint64 {
	return rb.size - (rb.writePos.Load() - rb.readPos.Load())
}

func (rb *RingBuffer) availableRead() uint64 {
	return rb.writePos.Load() - rb.readPos.Load()
}

// Producer is the exclusive write half of a ring buffer. It must only be
// used from a single goroutine (the decoder worker).
type Producer struct {
	rb *RingBuffer
}

// PushSlice copies as many samples from data into the ring as there is
// room for and returns the count actually written. It never blocks and
// never allocates, so it is safe to call from a real-time-sensitive loop.
func (p *Producer) PushSlice(data []float32) int {
	n := uint64(len(data))
	if n == 0 {
		return 0
	}

	available := p.rb.availableWrite()
	toWrite := min(n, available)
	if toWrite == 0 {
		return 0
	}

	writePos := p.rb.writePos.Load()
	for i := uint64(0); i < toWrite; i++ {
		p.rb.buffer[(writePos+i)&p.rb.mask] = data[i]
	}
	p.rb.writePos.Store(writePos + toWrite)
	return int(toWrite)
}

// AvailableWrite returns the number of samples that can currently be
// pushed without blocking.
func (p *Producer) AvailableWrite() uint64 {
	return p.rb.availableWrite()
}

// Reset discards any buffered samples, returning the ring to empty. Only
// safe to call while the consumer side is quiescent (e.g. while playback
// is stopped or paused and the output callback isn't popping). The engine
// controller does not use it: on Stop/Seek it builds a fresh ring instead.
func (p *Producer) Reset() {
	p.rb.readPos.Store(0)
	p.rb.writePos.Store(0)
}

// QueuedSamples returns the number of samples the consumer has not yet
// popped. It is advisory: the consumer may be draining concurrently, so
// the value can be stale by the time the caller acts on it.
func (p *Producer) QueuedSamples() uint64 {
	return p.rb.availableRead()
}

// Capacity returns the buffer's total size in samples.
func (p *Producer) Capacity() uint64 {
	return p.rb.size
}

// Consumer is the exclusive read half of a ring buffer. It must only be
// used from a single goroutine or audio callback context (the output
// stream).
type Consumer struct {
	rb *RingBuffer
}

// PopSlice copies as many samples as are available into data, up to
// len(data), and returns the count actually copied. It never blocks and
// never allocates.
func (c *Consumer) PopSlice(data []float32) int {
	n := uint64(len(data))
	if n == 0 {
		return 0
	}

	available := c.rb.availableRead()
	toRead := min(n, available)
	if toRead == 0 {
		return 0
	}

	readPos := c.rb.readPos.Load()
	for i := uint64(0); i < toRead; i++ {
		data[i] = c.rb.buffer[(readPos+i)&c.rb.mask]
	}
	c.rb.readPos.Store(readPos + toRead)
	return int(toRead)
}

// AvailableRead returns the number of samples that can currently be
// popped without blocking.
func (c *Consumer) AvailableRead() uint64 {
	return c.rb.availableRead()
}

// Capacity returns the buffer's total size in samples.
func (c *Consumer) Capacity() uint64 {
	return c.rb.size
}

// nextPowerOf2 rounds up to the next power of 2.
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
