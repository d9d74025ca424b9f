package engine

import (
	"sync/atomic"

	"github.com/resonix-audio/audioengine/pkg/device"
	"github.com/resonix-audio/audioengine/pkg/ringbuffer"
)

// outputAtomics are the values the real-time callback shares with the
// controller and metrics emitter. All access is lock-free.
type outputAtomics struct {
	state         atomic.Int32 // PlaybackState
	volumeBits    atomic.Uint32
	framesPlayed  atomic.Uint64
	queuedSamples atomic.Uint64
	peakLBits     atomic.Uint32
	peakRBits     atomic.Uint32
	rmsBits       atomic.Uint32
}

func newOutputAtomics() *outputAtomics {
	a := &outputAtomics{}
	a.volumeBits.Store(floatBits(1.0))
	return a
}

// setVolume clamps v to [0,1] before storing it. NaN fails both
// comparisons below, so it is special-cased to 0 rather than stored as-is.
func (a *outputAtomics) setVolume(v float32) {
	switch {
	case v != v:
		v = 0
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	a.volumeBits.Store(floatBits(v))
}

func (a *outputAtomics) volume() float32 { return bitsFloat(a.volumeBits.Load()) }

// outputStream wraps a device.Stream, pulling float32 samples from the
// ring buffer consumer on every callback invocation. Its callback never
// allocates or blocks: the scratch buffer is sized once, up front.
type outputStream struct {
	dev      *device.Stream
	cons     *ringbuffer.Consumer
	channels int
	atoms    *outputAtomics
}

func openOutputStream(cfg device.Config, cons *ringbuffer.Consumer, atoms *outputAtomics) (*outputStream, error) {
	os := &outputStream{
		cons:     cons,
		channels: cfg.Channels,
		atoms:    atoms,
	}

	dev, err := device.Open(cfg, os.fill)
	if err != nil {
		return nil, err
	}
	os.dev = dev
	return os, nil
}

// fill is the real-time callback body: pop from the ring, zero-pad any
// shortfall, apply volume, update played-frame/peak/RMS atomics. The
// state gate keeps a stream left open between Stop and the next Play
// from leaking stale samples into the device; device.Stream runs its
// callback continuously, so pausing is expressed here rather than by
// stopping the stream.
func (os *outputStream) fill(out []float32) {
	state := PlaybackState(os.atoms.state.Load())
	if state != StatePlaying {
		for i := range out {
			out[i] = 0
		}
		return
	}

	got := os.cons.PopSlice(out)
	saturatingSub(&os.atoms.queuedSamples, uint64(got))

	if got < len(out) {
		for i := got; i < len(out); i++ {
			out[i] = 0
		}
	}

	vol := os.atoms.volume()
	if vol != 1.0 {
		for i := 0; i < got; i++ {
			out[i] *= vol
		}
	}

	if os.channels > 0 {
		os.atoms.framesPlayed.Add(uint64(got / os.channels))
	}

	var peakL, peakR float32
	ch := os.channels
	if ch < 1 {
		ch = 1
	}
	for i := 0; i+ch <= got; i += ch {
		l := abs32(out[i])
		r := l
		if ch > 1 {
			r = abs32(out[i+1])
		}
		if l > peakL {
			peakL = l
		}
		if r > peakR {
			peakR = r
		}
	}
	os.atoms.peakLBits.Store(floatBits(peakL))
	os.atoms.peakRBits.Store(floatBits(peakR))
	rms := sqrt32((peakL*peakL + peakR*peakR) * 0.5)
	os.atoms.rmsBits.Store(floatBits(rms))
}

// Close stops and releases the underlying device stream. The stream runs
// continuously from construction onward; Play/Pause/Stop are expressed
// purely through atoms.state, not by starting and stopping the device.
func (os *outputStream) Close() error { return os.dev.Close() }
