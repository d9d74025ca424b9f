// Package eventframering provides a lock-free SPSC ring buffer of
// eventframe.Frame values. The engine's event sink pushes state,
// position, duration, peak, and device events into it; an external sink
// goroutine drains it at its own pace, so a slow consumer never blocks
// the publishers.
package eventframering

import (
	"sync/atomic"

	"github.com/resonix-audio/audioengine/pkg/eventframe"
	"github.com/resonix-audio/audioengine/pkg/types"
)

// Re-export common ringbuffer errors for backwards compatibility.
var (
	ErrInsufficientSpace = types.ErrInsufficientSpace
	ErrInsufficientData  = types.ErrInsufficientData
)

// EventFrameRingBuffer is a lock-free single-producer single-consumer ring
// buffer of eventframe.Frame values.
//
// Thread safety:
//   - Write() must only be called from one goroutine at a time; callers
//     with several publishing goroutines (the engine's event sink) must
//     serialize them
//   - Read() must only be called by the consumer (the external sink)
type EventFrameRingBuffer struct {
	buffer   []eventframe.Frame
	size     uint64 // must be power of 2
	mask     uint64 // size - 1, for efficient modulo
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

// New creates a new event frame ring buffer with the given capacity
// (number of frames). Capacity is rounded up to the next power of 2.
func New(capacity uint64) *EventFrameRingBuffer {
	capacity = nextPowerOf2(capacity)

	return &EventFrameRingBuffer{
		buffer: make([]eventframe.Frame, capacity),
		size:   capacity,
		mask:   capacity - 1,
	}
}

// Write writes frames to the ring buffer, writing as many as possible and
// returning the count actually written (partial writes are allowed, like
// an io.Writer). The Payload slice is deep-copied so the caller may reuse
// its buffer once Write returns.
//
// This method must only be called by the producer.
func (rb *EventFrameRingBuffer) Write(frames []eventframe.Frame) (int, error) {
	frameCount := uint64(len(frames))
	if frameCount == 0 {
		return 0, nil
	}

	available := rb.AvailableWrite()
	toWrite := min(frameCount, available)
	if toWrite == 0 {
		return 0, ErrInsufficientSpace
	}

	writePos := rb.writePos.Load()
	for i := uint64(0); i < toWrite; i++ {
		pos := (writePos + i) & rb.mask
		rb.buffer[pos] = frames[i]
		rb.buffer[pos].Payload = make([]byte, len(frames[i].Payload))
		copy(rb.buffer[pos].Payload, frames[i].Payload)
	}
	rb.writePos.Store(writePos + toWrite)

	return int(toWrite), nil
}

// Read reads up to numFrames from the ring buffer. If fewer are available
// than requested, it returns what's available without error; if the
// buffer is empty, it returns (nil, ErrInsufficientData).
//
// This method must only be called by the consumer.
func (rb *EventFrameRingBuffer) Read(numFrames int) ([]eventframe.Frame, error) {
	if numFrames <= 0 {
		return nil, nil
	}

	available := rb.AvailableRead()
	if available == 0 {
		return nil, ErrInsufficientData
	}

	toRead := min(uint64(numFrames), available)
	readPos := rb.readPos.Load()
	result := make([]eventframe.Frame, toRead)
	for i := uint64(0); i < toRead; i++ {
		result[i] = rb.buffer[(readPos+i)&rb.mask]
	}
	rb.readPos.Store(readPos + toRead)

	return result, nil
}

// AvailableWrite returns the number of frames available for writing.
func (rb *EventFrameRingBuffer) AvailableWrite() uint64 {
	return rb.size - (rb.writePos.Load() - rb.readPos.Load())
}

// AvailableRead returns the number of frames available for reading.
func (rb *EventFrameRingBuffer) AvailableRead() uint64 {
	return rb.writePos.Load() - rb.readPos.Load()
}

// Size returns the total capacity of the ring buffer (number of frames).
func (rb *EventFrameRingBuffer) Size() uint64 {
	return rb.size
}

// Reset clears the ring buffer by resetting read and write positions.
func (rb *EventFrameRingBuffer) Reset() {
	rb.readPos.Store(0)
	rb.writePos.Store(0)
}

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
