// Package types holds the small set of contracts shared across the
// decoder implementations and the ring buffers.
package types

import "errors"

// AudioDecoder is the interface every format decoder (MP3, FLAC, WAV,
// Ogg Vorbis) implements. Decoders produce interleaved, byte-packed,
// little-endian signed PCM; the engine converts to float32 downstream.
type AudioDecoder interface {
	// Open prepares fileName for decoding. It must be called before any
	// other method.
	Open(fileName string) error

	// Close releases the decoder's file handle and native resources. Safe
	// to call on an unopened decoder and safe to call more than once.
	Close() error

	// GetFormat returns the source sample rate in Hz, the channel count,
	// and the bits per sample of the decoder's PCM output (8/16/24/32).
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes up to samples interleaved frames into audio,
	// which must hold at least samples * channels * (bitsPerSample/8)
	// bytes, and returns the number of frames actually decoded. A short
	// or zero count with a non-nil error marks the end of the stream.
	DecodeSamples(samples int, audio []byte) (int, error)
}

// Ring buffer errors shared by the frame-based event ring. Compare with
// errors.Is.
var (
	// ErrInsufficientSpace indicates the ring has no room for the write.
	ErrInsufficientSpace = errors.New("insufficient space in ringbuffer")

	// ErrInsufficientData indicates the ring holds no data to read.
	ErrInsufficientData = errors.New("insufficient data in ringbuffer")
)
