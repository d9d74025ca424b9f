package engine

import "testing"

func TestWrapIndexNext(t *testing.T) {
	tests := []struct {
		cur, delta, length int
		wantIndex          int
		wantChanged        bool
	}{
		{cur: 0, delta: 1, length: 3, wantIndex: 1, wantChanged: true},
		{cur: 2, delta: 1, length: 3, wantIndex: 0, wantChanged: true},
		{cur: -1, delta: 1, length: 3, wantIndex: 1, wantChanged: true},
		{cur: 0, delta: -1, length: 3, wantIndex: 2, wantChanged: true},
		{cur: 0, delta: 3, length: 3, wantIndex: 0, wantChanged: false},
		{cur: 1, delta: 0, length: 3, wantIndex: 1, wantChanged: false},
		{cur: 0, delta: 1, length: 1, wantIndex: 0, wantChanged: false},
	}

	for _, tt := range tests {
		gotIndex, gotChanged := wrapIndex(tt.cur, tt.delta, tt.length)
		if gotIndex != tt.wantIndex || gotChanged != tt.wantChanged {
			t.Errorf("wrapIndex(%d, %d, %d): got (%d, %v), want (%d, %v)",
				tt.cur, tt.delta, tt.length, gotIndex, gotChanged, tt.wantIndex, tt.wantChanged)
		}
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.SampleRate != 48000 {
		t.Errorf("default SampleRate: got %d, want 48000", cfg.SampleRate)
	}
	if cfg.Channels != 2 {
		t.Errorf("default Channels: got %d, want 2", cfg.Channels)
	}
	if cfg.FramesPerBuffer != 4096 {
		t.Errorf("default FramesPerBuffer: got %d, want 4096", cfg.FramesPerBuffer)
	}

	cfg = Config{SampleRate: 44100, Channels: 1, FramesPerBuffer: 512}.withDefaults()
	if cfg.SampleRate != 44100 || cfg.Channels != 1 || cfg.FramesPerBuffer != 512 {
		t.Errorf("withDefaults overrode explicit values: got %+v", cfg)
	}
}

func TestSetVolumeClampsAndRejectsNaN(t *testing.T) {
	a := newOutputAtomics()

	tests := []struct {
		in   float32
		want float32
	}{
		{in: 0.5, want: 0.5},
		{in: -1, want: 0},
		{in: 2.0, want: 1},
		{in: float32(nan()), want: 0},
	}

	for _, tt := range tests {
		a.setVolume(tt.in)
		if got := a.volume(); got != tt.want {
			t.Errorf("setVolume(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestVolumeAndStateAtomicsDefault(t *testing.T) {
	a := newOutputAtomics()
	if got := a.volume(); got != 1.0 {
		t.Errorf("default volume: got %v, want 1.0", got)
	}
	if PlaybackState(a.state.Load()) != StateStopped {
		t.Errorf("default state: got %v, want Stopped", PlaybackState(a.state.Load()))
	}
}
