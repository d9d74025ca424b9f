package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/resonix-audio/audioengine/pkg/decoders"
	"github.com/resonix-audio/audioengine/pkg/pcm"
	"github.com/resonix-audio/audioengine/pkg/resample"
	"github.com/resonix-audio/audioengine/pkg/ringbuffer"
	"github.com/resonix-audio/audioengine/pkg/types"
)

// decodeChunkSamples is the number of samples pulled from the decoder per
// iteration of the inner packet loop.
const decodeChunkSamples = 4096

// backpressureThresholdSeconds bounds how far ahead of playback the
// decoder worker buffers before it starts sleeping.
const backpressureThresholdSeconds = 2

type decoderControlKind int

const (
	decoderStop decoderControlKind = iota
	decoderSwitchTo
)

type decoderControl struct {
	kind decoderControlKind
	path string
}

// decoderWorker runs the outer per-track / inner per-packet decode loop on
// its own goroutine: open, decode, resample/mix, push. Control messages
// (Stop, SwitchTo) are drained non-blockingly between packets and during
// the ring-full retry loop, which is what makes track transitions gapless.
type decoderWorker struct {
	prod    *ringbuffer.Producer
	outRate int
	outCh   int
	ctrl    chan decoderControl
	done    chan struct{}
	eos     chan struct{}
	atoms   *outputAtomics
	log     *slog.Logger

	nextFile string
	haveNext bool
}

func newDecoderWorker(prod *ringbuffer.Producer, outRate, outCh int, atoms *outputAtomics, log *slog.Logger) *decoderWorker {
	return &decoderWorker{
		prod:    prod,
		outRate: outRate,
		outCh:   outCh,
		ctrl:    make(chan decoderControl, 4),
		done:    make(chan struct{}),
		eos:     make(chan struct{}, 1),
		atoms:   atoms,
		log:     log,
	}
}

// stop asks the worker to exit and blocks until it has.
func (w *decoderWorker) stop() {
	select {
	case w.ctrl <- decoderControl{kind: decoderStop}:
	default:
	}
	<-w.done
}

// switchTo informs the worker of the next queued track so the transition
// at end-of-track is gapless.
func (w *decoderWorker) switchTo(path string) {
	select {
	case w.ctrl <- decoderControl{kind: decoderSwitchTo, path: path}:
	default:
	}
}

// run is the worker goroutine's body: the outer per-track loop. path is
// the first track; seekSeconds, if non-nil, seeks into it before decoding.
// eos carries a value only on a natural end or error, but is closed on
// every exit so a watcher blocked on it never outlives the worker; a
// close-only wake (the Stop path) is disarmed by the controller's
// current-worker check.
func (w *decoderWorker) run(path string, seekSeconds *float64) {
	defer close(w.done)
	defer close(w.eos)

	current := path
	for {
		err := w.decodeTrack(current, seekSeconds)
		seekSeconds = nil

		if err == errWorkerStopped {
			return
		}
		if err != nil {
			w.log.Warn("decoder worker track error", "file", current, "err", err)
			w.eos <- struct{}{}
			return
		}
		if !w.haveNext {
			w.eos <- struct{}{}
			return
		}
		current = w.nextFile
		w.haveNext = false
	}
}

// decodeTrack decodes one file until it ends naturally (nil), a Stop
// control message arrives (errWorkerStopped), or decode setup fails.
func (w *decoderWorker) decodeTrack(path string, seekSeconds *float64) error {
	dec, err := decoders.NewDecoder(path)
	if err != nil {
		return fmt.Errorf("open decoder: %w", err)
	}
	defer dec.Close()

	srcRate, srcCh, bitsPerSample := dec.GetFormat()
	if seekSeconds != nil {
		if serr := seekDecoder(dec, *seekSeconds, srcRate); serr != nil {
			w.log.Warn("seek failed, starting from beginning", "file", path, "err", serr)
		}
	}

	bytesPerSample := bitsPerSample / 8
	rawBuf := make([]byte, decodeChunkSamples*srcCh*bytesPerSample)
	floatBuf := make([]float32, decodeChunkSamples*srcCh)

	for {
		if w.drainControl() {
			return errWorkerStopped
		}

		queuedSeconds := float64(w.atoms.queuedSamples.Load()) / float64(w.outRate*w.outCh)
		if queuedSeconds > backpressureThresholdSeconds {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		n, derr := dec.DecodeSamples(decodeChunkSamples, rawBuf)
		if n == 0 {
			return nil // natural end of stream
		}

		samplesN, convErr := pcm.ToFloat32(rawBuf[:n*srcCh*bytesPerSample], bitsPerSample, floatBuf)
		if convErr != nil {
			if derr != nil {
				return nil
			}
			continue // skip malformed packet
		}

		mixed := resample.ResampleAndMix(floatBuf[:samplesN], srcRate, srcCh, w.outRate, w.outCh)
		if len(mixed) != 0 {
			if w.pushWithBackpressure(mixed) {
				return errWorkerStopped
			}
		}

		// A decoder reporting an error alongside a final partial read (e.g.
		// io.EOF from io.ReadFull) has no more data after this; the samples
		// above are still pushed, but the track ends here.
		if derr != nil {
			return nil
		}
	}
}

// drainControl non-blockingly drains pending control messages, recording
// any SwitchTo request and reporting whether a Stop was seen.
func (w *decoderWorker) drainControl() bool {
	for {
		select {
		case msg := <-w.ctrl:
			switch msg.kind {
			case decoderStop:
				return true
			case decoderSwitchTo:
				w.nextFile = msg.path
				w.haveNext = true
			}
		default:
			return false
		}
	}
}

// pushWithBackpressure pushes data into the ring buffer, retrying with a
// short sleep whenever the ring is full, and reports whether a Stop
// arrived while waiting.
func (w *decoderWorker) pushWithBackpressure(data []float32) (stopped bool) {
	off := 0
	for off < len(data) {
		n := w.prod.PushSlice(data[off:])
		if n == 0 {
			if w.drainControl() {
				return true
			}
			time.Sleep(500 * time.Microsecond)
			continue
		}
		off += n
		w.atoms.queuedSamples.Add(uint64(n))
	}
	return false
}

func seekDecoder(dec types.AudioDecoder, seconds float64, rate int) error {
	type sampleSeeker interface {
		SeekToSample(sample int64) error
	}
	if ss, ok := dec.(sampleSeeker); ok {
		return ss.SeekToSample(int64(seconds * float64(rate)))
	}
	return fmt.Errorf("decoder does not support seeking")
}

var errWorkerStopped = fmt.Errorf("decoder worker stopped")
