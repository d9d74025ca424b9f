package engine

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/resonix-audio/audioengine/pkg/ringbuffer"

	gowav "github.com/youpy/go-wav"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeConstWAV writes frames of 16-bit stereo PCM at rate Hz where every
// sample holds value, returning the file path.
func writeConstWAV(t *testing.T, dir, name string, frames int, rate int, value int16) string {
	t.Helper()

	const channels = 2
	fileName := filepath.Join(dir, name)
	f, err := os.Create(fileName)
	if err != nil {
		t.Fatalf("create test wav: %v", err)
	}
	defer f.Close()

	data := make([]byte, frames*channels*2)
	for i := 0; i < frames*channels; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(value))
	}

	w := gowav.NewWriter(f, uint32(frames), channels, uint32(rate), 16)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return fileName
}

func TestDrainControlRecordsSwitchTo(t *testing.T) {
	prod, _ := ringbuffer.New(64)
	w := newDecoderWorker(prod, 48000, 2, newOutputAtomics(), discardLogger())

	w.switchTo("next.wav")
	if stopped := w.drainControl(); stopped {
		t.Fatal("drainControl reported stop for a SwitchTo message")
	}
	if !w.haveNext || w.nextFile != "next.wav" {
		t.Errorf("SwitchTo not recorded: haveNext=%v nextFile=%q", w.haveNext, w.nextFile)
	}
}

func TestDrainControlReportsStop(t *testing.T) {
	prod, _ := ringbuffer.New(64)
	w := newDecoderWorker(prod, 48000, 2, newOutputAtomics(), discardLogger())

	w.ctrl <- decoderControl{kind: decoderStop}
	if stopped := w.drainControl(); !stopped {
		t.Error("drainControl did not report stop")
	}
}

func TestPushWithBackpressureStopsWhileRingFull(t *testing.T) {
	prod, _ := ringbuffer.New(8)
	w := newDecoderWorker(prod, 48000, 2, newOutputAtomics(), discardLogger())

	// Fill the ring so the next push must spin in the retry loop.
	filler := make([]float32, 8)
	if n := prod.PushSlice(filler); n != 8 {
		t.Fatalf("fill push: got %d, want 8", n)
	}

	result := make(chan bool, 1)
	go func() {
		result <- w.pushWithBackpressure(make([]float32, 4))
	}()

	w.ctrl <- decoderControl{kind: decoderStop}

	select {
	case stopped := <-result:
		if !stopped {
			t.Error("pushWithBackpressure returned without honoring Stop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pushWithBackpressure did not observe Stop")
	}
}

func TestPushWithBackpressureCountsQueuedSamples(t *testing.T) {
	prod, cons := ringbuffer.New(1024)
	atoms := newOutputAtomics()
	w := newDecoderWorker(prod, 48000, 2, atoms, discardLogger())

	data := make([]float32, 100)
	if stopped := w.pushWithBackpressure(data); stopped {
		t.Fatal("pushWithBackpressure reported stop with no Stop sent")
	}
	if got := atoms.queuedSamples.Load(); got != 100 {
		t.Errorf("queuedSamples: got %d, want 100", got)
	}
	if got := cons.AvailableRead(); got != 100 {
		t.Errorf("ring occupancy: got %d, want 100", got)
	}
}

func TestWorkerDecodesTrackToRing(t *testing.T) {
	const frames = 512
	const rate = 8000
	path := writeConstWAV(t, t.TempDir(), "a.wav", frames, rate, 100)

	prod, cons := ringbuffer.New(1 << 16)
	atoms := newOutputAtomics()
	w := newDecoderWorker(prod, rate, 2, atoms, discardLogger())

	go w.run(path, nil)

	select {
	case _, ok := <-w.eos:
		if !ok {
			t.Fatal("eos channel closed without an end-of-stream event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not reach end of stream")
	}
	<-w.done

	out := make([]float32, frames*2+16)
	got := cons.PopSlice(out)
	if got != frames*2 {
		t.Fatalf("popped %d samples, want %d", got, frames*2)
	}

	want := float32(100) / 32768
	for i := 0; i < got; i++ {
		if out[i] != want {
			t.Fatalf("sample %d: got %v, want %v", i, out[i], want)
		}
	}
}

func TestWorkerGaplessTransition(t *testing.T) {
	const frames = 256
	const rate = 8000
	dir := t.TempDir()
	first := writeConstWAV(t, dir, "a.wav", frames, rate, 100)
	second := writeConstWAV(t, dir, "b.wav", frames, rate, 200)

	prod, cons := ringbuffer.New(1 << 16)
	atoms := newOutputAtomics()
	w := newDecoderWorker(prod, rate, 2, atoms, discardLogger())

	// Pre-sent before run, the way the controller chains the next track.
	w.switchTo(second)
	go w.run(first, nil)

	select {
	case _, ok := <-w.eos:
		if !ok {
			t.Fatal("eos channel closed without an end-of-stream event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not reach end of stream")
	}
	<-w.done

	// End-of-stream fires exactly once, after both tracks: the only thing
	// left on the channel is its close.
	if _, ok := <-w.eos; ok {
		t.Error("worker emitted a second end-of-stream")
	}

	out := make([]float32, frames*4+16)
	got := cons.PopSlice(out)
	if got != frames*4 {
		t.Fatalf("popped %d samples, want %d (both tracks, no gap)", got, frames*4)
	}

	wantFirst := float32(100) / 32768
	wantSecond := float32(200) / 32768
	for i := 0; i < frames*2; i++ {
		if out[i] != wantFirst {
			t.Fatalf("track 1 sample %d: got %v, want %v", i, out[i], wantFirst)
		}
	}
	for i := frames * 2; i < frames*4; i++ {
		if out[i] != wantSecond {
			t.Fatalf("track 2 sample %d: got %v, want %v", i, out[i], wantSecond)
		}
	}
}

func TestWorkerUnsupportedFileEmitsEOS(t *testing.T) {
	prod, _ := ringbuffer.New(64)
	w := newDecoderWorker(prod, 48000, 2, newOutputAtomics(), discardLogger())

	go w.run(filepath.Join(t.TempDir(), "missing.xyz"), nil)

	select {
	case _, ok := <-w.eos:
		if !ok {
			t.Fatal("eos channel closed without an end-of-stream event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not emit end of stream for an unsupported file")
	}
	<-w.done
}

func TestWorkerStopJoins(t *testing.T) {
	const frames = 4096
	const rate = 8000
	path := writeConstWAV(t, t.TempDir(), "long.wav", frames, rate, 50)

	// A tiny ring forces the worker into its push-retry loop, where it
	// must still observe Stop promptly.
	prod, _ := ringbuffer.New(256)
	w := newDecoderWorker(prod, rate, 2, newOutputAtomics(), discardLogger())

	go w.run(path, nil)
	time.Sleep(20 * time.Millisecond)

	joined := make(chan struct{})
	go func() {
		w.stop()
		close(joined)
	}()

	select {
	case <-joined:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not join the worker")
	}

	// A stopped worker closes eos without sending, so a watcher blocked
	// on it is released rather than leaked.
	if _, ok := <-w.eos; ok {
		t.Error("stopped worker sent an end-of-stream event")
	}
}
