package ogg

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// Decoder wraps jfreymuth/oggvorbis to provide Ogg Vorbis decoding.
// Implements types.AudioDecoder. oggvorbis decodes to float32 samples;
// this wrapper clamps and packs them to 16-bit little-endian PCM to match
// the byte-oriented AudioDecoder interface the other decoders use.
type Decoder struct {
	file       *os.File
	reader     *oggvorbis.Reader
	rate       int
	channels   int
	tmpSamples []float32
}

const oggBitsPerSample = 16

// NewDecoder creates a new Ogg Vorbis decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens an Ogg Vorbis file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode ogg vorbis stream: %w", err)
	}

	d.file = file
	d.reader = reader
	d.rate = reader.SampleRate()
	d.channels = reader.Channels()

	return nil
}

// Close closes the decoder and releases resources.
func (d *Decoder) Close() error {
	d.reader = nil
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (rate, channels, bits per sample).
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, oggBitsPerSample
}

// DecodeSamples decodes up to 'samples' audio samples (interleaved frames)
// into the provided buffer, clamping float32 output to [-1, 1] and packing
// it as 16-bit little-endian PCM.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	need := samples * d.channels
	if cap(d.tmpSamples) < need {
		d.tmpSamples = make([]float32, need)
	}
	buf := d.tmpSamples[:need]

	n, err := d.reader.Read(buf)
	if n == 0 {
		return 0, err
	}

	frames := n / d.channels
	bytesPerFrame := d.channels * (oggBitsPerSample / 8)
	if frames*bytesPerFrame > len(audio) {
		frames = len(audio) / bytesPerFrame
	}

	for i := 0; i < frames*d.channels; i++ {
		s := buf[i]
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(audio[i*2:], uint16(int16(s*32767)))
	}

	return frames, err
}
