// Package device wraps the PortAudio binding used by the output stream
// component, building and tearing down real-time callback streams around
// the engine's ring buffer consumer.
package device

import (
	"fmt"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Initialize must be called once before any Stream is opened.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases PortAudio's global resources. Call once at shutdown,
// after every Stream has been closed.
func Terminate() error {
	return portaudio.Terminate()
}

// Version returns the underlying PortAudio library version string, useful
// for diagnostic logging at startup.
func Version() string {
	return portaudio.GetVersionText()
}

// Config describes the output stream to open.
type Config struct {
	DeviceIndex     int
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// FillFunc supplies one block of interleaved float32 samples to be played.
// It must not block and must not allocate: it runs on PortAudio's
// real-time callback thread.
type FillFunc func(out []float32)

// Stream is a callback-mode PortAudio output stream that accepts float32
// samples from the caller via FillFunc and converts them to 16-bit PCM at
// the last moment, since the PortAudio binding's sample formats are
// integer-only.
type Stream struct {
	pa       *portaudio.PaStream
	channels int
	fill     FillFunc
	scratch  []float32
	pcmBuf   []byte
}

// Open builds and starts a callback-mode output stream. fill is invoked
// from the PortAudio audio thread each time a block of audio is needed.
func Open(cfg Config, fill FillFunc) (*Stream, error) {
	s := &Stream{
		channels: cfg.Channels,
		fill:     fill,
		scratch:  make([]float32, cfg.FramesPerBuffer*cfg.Channels),
		pcmBuf:   make([]byte, cfg.FramesPerBuffer*cfg.Channels*2),
	}

	s.pa = &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  cfg.DeviceIndex,
			ChannelCount: cfg.Channels,
			SampleFormat: portaudio.SampleFmtInt16,
		},
		SampleRate: float64(cfg.SampleRate),
	}

	if err := s.pa.OpenCallback(cfg.FramesPerBuffer, s.callback); err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := s.pa.StartStream(); err != nil {
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}

	return s, nil
}

func (s *Stream) callback(
	input, output []byte,
	frameCount uint,
	timeInfo *portaudio.StreamCallbackTimeInfo,
	statusFlags portaudio.StreamCallbackFlags,
) portaudio.StreamCallbackResult {
	need := int(frameCount) * s.channels
	if cap(s.scratch) < need {
		s.scratch = make([]float32, need)
	}
	block := s.scratch[:need]

	s.fill(block)

	if cap(s.pcmBuf) < need*2 {
		s.pcmBuf = make([]byte, need*2)
	}
	pcm := s.pcmBuf[:need*2]
	for i, v := range block {
		clamped := v
		if clamped > 1 {
			clamped = 1
		} else if clamped < -1 {
			clamped = -1
		}
		sample := int16(clamped * 32767)
		pcm[i*2] = byte(sample)
		pcm[i*2+1] = byte(sample >> 8)
	}

	copy(output, pcm)
	return portaudio.Continue
}

// Close stops and closes the stream, releasing its callback registration.
func (s *Stream) Close() error {
	if err := s.pa.StopStream(); err != nil {
		return err
	}
	return s.pa.CloseCallback()
}
