package ogg

import (
	"testing"
)

func TestNewDecoder(t *testing.T) {
	decoder := NewDecoder()
	if decoder == nil {
		t.Fatal("NewDecoder returned nil")
	}
}

func TestDecoderGetFormat(t *testing.T) {
	decoder := NewDecoder()

	rate, channels, bps := decoder.GetFormat()
	if rate != 0 || channels != 0 {
		t.Errorf("Expected zero rate/channels before Open, got rate=%d, channels=%d", rate, channels)
	}
	if bps != oggBitsPerSample {
		t.Errorf("Expected bps=%d (fixed output format), got %d", oggBitsPerSample, bps)
	}
}

func TestDecoderClose(t *testing.T) {
	decoder := NewDecoder()

	if err := decoder.Close(); err != nil {
		t.Errorf("Close on unopened decoder failed: %v", err)
	}
	if err := decoder.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestDecodeSamplesWithoutOpen(t *testing.T) {
	decoder := NewDecoder()

	buffer := make([]byte, 1024)
	_, err := decoder.DecodeSamples(len(buffer)/2, buffer)
	if err == nil {
		t.Error("Expected error when decoding without opening file")
	}
}
