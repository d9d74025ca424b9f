package mp3

import (
	"fmt"
	"io"
	"os"

	mp3 "github.com/imcarsen/go-mp3"
)

// Decoder wraps imcarsen/go-mp3's io.Reader-based decoder to provide MP3
// decoding. Implements types.AudioDecoder. The underlying library always
// produces 16-bit little-endian stereo PCM, matching the upstream
// hajimehoshi/go-mp3 family this module derives from.
type Decoder struct {
	file    *os.File
	decoder *mp3.Decoder
	rate    int
}

const (
	mp3Channels      = 2
	mp3BitsPerSample = 16
)

// NewDecoder creates a new MP3 decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// GetFormat returns the audio format (rate, channels, bits per sample).
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, mp3Channels, mp3BitsPerSample
}

// DecodeSamples decodes the specified number of samples into the audio
// buffer. Returns the number of samples decoded (not bytes).
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	bytesPerSample := mp3BitsPerSample / 8
	bytesPerFrame := mp3Channels * bytesPerSample
	need := samples * bytesPerFrame
	if need > len(audio) {
		need = (len(audio) / bytesPerFrame) * bytesPerFrame
	}

	n, err := io.ReadFull(d.decoder, audio[:need])
	framesRead := n / bytesPerFrame
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return framesRead, io.EOF
	}
	return framesRead, err
}

// Open opens and initializes an MP3 file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	d.file = file
	d.decoder = decoder
	d.rate = decoder.SampleRate()

	return nil
}

// Close closes the decoder and releases resources.
func (d *Decoder) Close() error {
	d.decoder = nil
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// Rate returns the sample rate in Hz.
func (d *Decoder) Rate() int {
	return d.rate
}

// Channels returns the number of audio channels.
func (d *Decoder) Channels() int {
	return mp3Channels
}

// Encoding returns the bits per sample (for consistency with the FLAC
// decoder's helper methods).
func (d *Decoder) Encoding() int {
	return mp3BitsPerSample
}
