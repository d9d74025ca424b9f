package pcm

import "testing"

func TestRoundTrip16Bit(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1}
	audio := make([]byte, len(in)*2)

	n, err := FromFloat32(in, 16, audio)
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}
	if n != len(audio) {
		t.Fatalf("FromFloat32: wrote %d bytes, want %d", n, len(audio))
	}

	out := make([]float32, len(in))
	samples, err := ToFloat32(audio, 16, out)
	if err != nil {
		t.Fatalf("ToFloat32 failed: %v", err)
	}
	if samples != len(in) {
		t.Fatalf("ToFloat32: got %d samples, want %d", samples, len(in))
	}

	for i := range in {
		diff := out[i] - in[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestToFloat32UnsupportedBitDepth(t *testing.T) {
	_, err := ToFloat32([]byte{0, 1, 2}, 12, make([]float32, 1))
	if err == nil {
		t.Error("expected error for unsupported bit depth")
	}
}

func TestFromFloat32ClampsOutOfRange(t *testing.T) {
	audio := make([]byte, 2)
	_, err := FromFloat32([]float32{5.0}, 16, audio)
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}

	out := make([]float32, 1)
	if _, err := ToFloat32(audio, 16, out); err != nil {
		t.Fatalf("ToFloat32 failed: %v", err)
	}
	if out[0] < 0.99 || out[0] > 1.0 {
		t.Errorf("clamped sample: got %v, want ~1.0", out[0])
	}
}

func Test24BitRoundTrip(t *testing.T) {
	in := []float32{0.25, -0.25}
	audio := make([]byte, len(in)*3)

	if _, err := FromFloat32(in, 24, audio); err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}

	out := make([]float32, len(in))
	if _, err := ToFloat32(audio, 24, out); err != nil {
		t.Fatalf("ToFloat32 failed: %v", err)
	}

	for i := range in {
		diff := out[i] - in[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}
