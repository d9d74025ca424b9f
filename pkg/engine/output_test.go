package engine

import (
	"math"
	"testing"

	"github.com/resonix-audio/audioengine/pkg/ringbuffer"
)

// newTestOutputStream builds an outputStream around a fresh ring buffer
// pair without opening a real device, since fill() never touches os.dev.
func newTestOutputStream(channels int) (*outputStream, *ringbuffer.Producer) {
	prod, cons := ringbuffer.New(4096)
	atoms := newOutputAtomics()
	return &outputStream{cons: cons, channels: channels, atoms: atoms}, prod
}

func TestFillZerosWhenNotPlaying(t *testing.T) {
	os, prod := newTestOutputStream(2)
	prod.PushSlice([]float32{0.5, 0.5, 0.5, 0.5})

	out := make([]float32, 8)
	for i := range out {
		out[i] = 1 // sentinel, should be overwritten with zero
	}
	os.fill(out)

	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0 while stopped", i, v)
		}
	}
	if os.atoms.framesPlayed.Load() != 0 {
		t.Errorf("framesPlayed advanced while stopped: %d", os.atoms.framesPlayed.Load())
	}
}

func TestFillPreservesBlockLengthOnUnderrun(t *testing.T) {
	os, prod := newTestOutputStream(2)
	os.atoms.state.Store(int32(StatePlaying))

	prod.PushSlice([]float32{0.25, 0.25}) // one frame only

	out := make([]float32, 8)
	os.fill(out)

	if out[0] != 0.25 || out[1] != 0.25 {
		t.Errorf("first frame = (%v, %v), want (0.25, 0.25)", out[0], out[1])
	}
	for i := 2; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 (zero-padded shortfall)", i, out[i])
		}
	}
	if got := os.atoms.framesPlayed.Load(); got != 1 {
		t.Errorf("framesPlayed = %d, want 1 (only popped samples count)", got)
	}
}

func TestFillAppliesVolume(t *testing.T) {
	os, prod := newTestOutputStream(1)
	os.atoms.state.Store(int32(StatePlaying))
	os.atoms.setVolume(0.5)

	prod.PushSlice([]float32{1.0, 1.0})

	out := make([]float32, 2)
	os.fill(out)

	for i, v := range out {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Errorf("out[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestFillComputesPeakAndRMS(t *testing.T) {
	os, prod := newTestOutputStream(2)
	os.atoms.state.Store(int32(StatePlaying))

	prod.PushSlice([]float32{0.5, -0.8, 0.2, 0.1})

	out := make([]float32, 4)
	os.fill(out)

	peakL := bitsFloat(os.atoms.peakLBits.Load())
	peakR := bitsFloat(os.atoms.peakRBits.Load())
	if peakL != 0.5 {
		t.Errorf("peakL = %v, want 0.5", peakL)
	}
	if peakR != 0.8 {
		t.Errorf("peakR = %v, want 0.8", peakR)
	}

	wantRMS := float32(math.Sqrt(float64(peakL*peakL+peakR*peakR) * 0.5))
	gotRMS := bitsFloat(os.atoms.rmsBits.Load())
	if math.Abs(float64(gotRMS-wantRMS)) > 1e-6 {
		t.Errorf("rms = %v, want %v", gotRMS, wantRMS)
	}
}

func TestFillMonoMirrorsPeakLIntoPeakR(t *testing.T) {
	os, prod := newTestOutputStream(1)
	os.atoms.state.Store(int32(StatePlaying))

	prod.PushSlice([]float32{-0.6})

	out := make([]float32, 1)
	os.fill(out)

	peakL := bitsFloat(os.atoms.peakLBits.Load())
	peakR := bitsFloat(os.atoms.peakRBits.Load())
	if peakL != 0.6 || peakR != 0.6 {
		t.Errorf("mono peaks = (%v, %v), want (0.6, 0.6)", peakL, peakR)
	}
}
