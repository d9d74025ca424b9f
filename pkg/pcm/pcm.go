// Package pcm converts between the interleaved byte-packed PCM buffers
// produced by pkg/decoders and the float32 sample slices the engine's
// resampler and ring buffer operate on.
package pcm

import "fmt"

// ToFloat32 unpacks n interleaved PCM samples (n = frames * channels) from
// audio, which holds bitsPerSample-wide little-endian signed integers
// (8-bit samples are unsigned, centered at 128), into out, which must have
// length >= n. It returns the number of samples written.
func ToFloat32(audio []byte, bitsPerSample int, out []float32) (int, error) {
	bytesPerSample := bitsPerSample / 8
	if bytesPerSample <= 0 {
		return 0, fmt.Errorf("pcm: unsupported bits per sample: %d", bitsPerSample)
	}

	n := len(audio) / bytesPerSample
	if n > len(out) {
		n = len(out)
	}

	switch bitsPerSample {
	case 8:
		for i := 0; i < n; i++ {
			// 8-bit PCM is conventionally unsigned, centered at 128.
			out[i] = (float32(audio[i]) - 128) / 128
		}
	case 16:
		for i := 0; i < n; i++ {
			off := i * 2
			v := int16(audio[off]) | int16(audio[off+1])<<8
			out[i] = float32(v) / 32768
		}
	case 24:
		for i := 0; i < n; i++ {
			off := i * 3
			v := int32(audio[off]) | int32(audio[off+1])<<8 | int32(audio[off+2])<<16
			if v&0x800000 != 0 {
				v |= -1 << 24 // sign-extend
			}
			out[i] = float32(v) / 8388608
		}
	case 32:
		for i := 0; i < n; i++ {
			off := i * 4
			v := int32(audio[off]) | int32(audio[off+1])<<8 | int32(audio[off+2])<<16 | int32(audio[off+3])<<24
			out[i] = float32(v) / 2147483648
		}
	default:
		return 0, fmt.Errorf("pcm: unsupported bits per sample: %d", bitsPerSample)
	}

	return n, nil
}

// FromFloat32 packs samples into audio as interleaved little-endian signed
// integers of the given bit depth (unsigned, centered at 128, for 8-bit),
// clamping to [-1, 1] first. audio must have room for
// len(samples) * (bitsPerSample/8) bytes.
func FromFloat32(samples []float32, bitsPerSample int, audio []byte) (int, error) {
	bytesPerSample := bitsPerSample / 8
	if bytesPerSample <= 0 {
		return 0, fmt.Errorf("pcm: unsupported bits per sample: %d", bitsPerSample)
	}

	n := len(samples)
	if n*bytesPerSample > len(audio) {
		n = len(audio) / bytesPerSample
	}

	switch bitsPerSample {
	case 8:
		for i := 0; i < n; i++ {
			s := clamp(samples[i])
			audio[i] = byte(int16(s*127) + 128)
		}
	case 16:
		for i := 0; i < n; i++ {
			s := clamp(samples[i])
			v := int16(s * 32767)
			off := i * 2
			audio[off] = byte(v)
			audio[off+1] = byte(v >> 8)
		}
	case 24:
		for i := 0; i < n; i++ {
			s := clamp(samples[i])
			v := int32(s * 8388607)
			off := i * 3
			audio[off] = byte(v)
			audio[off+1] = byte(v >> 8)
			audio[off+2] = byte(v >> 16)
		}
	case 32:
		for i := 0; i < n; i++ {
			s := clamp(samples[i])
			v := int32(float64(s) * 2147483647)
			off := i * 4
			audio[off] = byte(v)
			audio[off+1] = byte(v >> 8)
			audio[off+2] = byte(v >> 16)
			audio[off+3] = byte(v >> 24)
		}
	default:
		return 0, fmt.Errorf("pcm: unsupported bits per sample: %d", bitsPerSample)
	}

	return n * bytesPerSample, nil
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
