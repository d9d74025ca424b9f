package ringbuffer

import (
	"testing"
)

func TestNewRoundsUpToPowerOf2(t *testing.T) {
	tests := []struct {
		requested uint64
		wantCap   uint64
	}{
		{requested: 1, wantCap: 1},
		{requested: 3, wantCap: 4},
		{requested: 100, wantCap: 128},
		{requested: 1024, wantCap: 1024},
	}

	for _, tt := range tests {
		p, _ := New(tt.requested)
		if p.Capacity() != tt.wantCap {
			t.Errorf("New(%d) capacity: got %d, want %d", tt.requested, p.Capacity(), tt.wantCap)
		}
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	p, c := New(16)

	in := []float32{0.1, 0.2, 0.3, 0.4}
	n := p.PushSlice(in)
	if n != len(in) {
		t.Fatalf("PushSlice: got %d, want %d", n, len(in))
	}

	out := make([]float32, len(in))
	n = c.PopSlice(out)
	if n != len(in) {
		t.Fatalf("PopSlice: got %d, want %d", n, len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestPushSlicePartialWhenFull(t *testing.T) {
	p, _ := New(4)

	n := p.PushSlice([]float32{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Errorf("PushSlice into full-capacity-4 buffer: got %d, want 4", n)
	}

	n = p.PushSlice([]float32{7})
	if n != 0 {
		t.Errorf("PushSlice into already-full buffer: got %d, want 0", n)
	}
}

func TestPopSliceEmptyReturnsZero(t *testing.T) {
	_, c := New(8)

	out := make([]float32, 4)
	n := c.PopSlice(out)
	if n != 0 {
		t.Errorf("PopSlice on empty buffer: got %d, want 0", n)
	}
}

func TestWrapAround(t *testing.T) {
	p, c := New(4)

	// fill, drain half, fill again to force the write position past the
	// end of the backing array
	p.PushSlice([]float32{1, 2, 3, 4})
	out := make([]float32, 2)
	c.PopSlice(out)
	if out[0] != 1 || out[1] != 2 {
		t.Fatalf("first pop: got %v, want [1 2]", out)
	}

	n := p.PushSlice([]float32{5, 6})
	if n != 2 {
		t.Fatalf("PushSlice after drain: got %d, want 2", n)
	}

	rest := make([]float32, 4)
	n = c.PopSlice(rest)
	if n != 4 {
		t.Fatalf("PopSlice remaining: got %d, want 4", n)
	}
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if rest[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, rest[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	p, c := New(8)

	p.PushSlice([]float32{1, 2, 3, 4})
	c.PopSlice(make([]float32, 1))
	p.Reset()

	if got := p.QueuedSamples(); got != 0 {
		t.Errorf("QueuedSamples after Reset: got %d, want 0", got)
	}
	if got := p.AvailableWrite(); got != p.Capacity() {
		t.Errorf("AvailableWrite after Reset: got %d, want %d", got, p.Capacity())
	}

	n := p.PushSlice([]float32{9, 9, 9, 9, 9, 9, 9, 9})
	if n != 8 {
		t.Errorf("PushSlice after Reset: got %d, want full capacity 8", n)
	}
}

func TestQueuedSamplesAdvisory(t *testing.T) {
	p, c := New(8)

	p.PushSlice([]float32{1, 2, 3})
	if got := p.QueuedSamples(); got != 3 {
		t.Errorf("QueuedSamples: got %d, want 3", got)
	}

	c.PopSlice(make([]float32, 1))
	if got := p.QueuedSamples(); got != 2 {
		t.Errorf("QueuedSamples after pop: got %d, want 2", got)
	}
}
