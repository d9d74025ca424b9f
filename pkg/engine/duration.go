package engine

import (
	"math"

	"github.com/resonix-audio/audioengine/pkg/decoders"
)

// totalSampler is implemented by decoders that can report a track's total
// sample count directly from its header (currently FLAC's), letting the
// duration scan skip decode-and-discard entirely.
type totalSampler interface {
	TotalSamples() int64
}

// durationScanChunkSamples is the chunk size used by the decode-and-count
// fallback path. It doesn't need to match the decoder worker's own chunk
// size; the scan discards the decoded samples, it only counts them.
const durationScanChunkSamples = 8192

// kickDurationScan launches a short-lived goroutine that opens path,
// determines its duration and publishes a duration event. It never
// touches controller state directly except through the sample
// rate it was built with and the atomics it stores into, both of which
// are safe to touch from any goroutine.
func (c *Controller) kickDurationScan(path string) {
	go func() {
		seconds, err := scanDuration(path)
		if err != nil {
			c.log.Warn("engine: duration scan failed", "file", path, "err", err)
			return
		}
		frames := uint64(math.Round(seconds * float64(c.outRate)))
		c.durationFrames.Store(frames)
		c.events.publish(Event{Kind: EventDuration, DurationSecs: seconds})
	}()
}

// scanDuration prefers a decoder's native total-sample count when
// available; otherwise it decodes the file to completion, accumulating
// the frame count, for formats whose headers carry no frame count.
func scanDuration(path string) (float64, error) {
	dec, err := decoders.NewDecoder(path)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	rate, channels, bitsPerSample := dec.GetFormat()
	if rate <= 0 {
		return 0, nil
	}

	if ts, ok := dec.(totalSampler); ok {
		if total := ts.TotalSamples(); total > 0 {
			return float64(total) / float64(rate), nil
		}
	}

	bytesPerSample := bitsPerSample / 8
	if bytesPerSample <= 0 || channels <= 0 {
		return 0, nil
	}
	buf := make([]byte, durationScanChunkSamples*channels*bytesPerSample)

	var totalFrames int64
	for {
		n, derr := dec.DecodeSamples(durationScanChunkSamples, buf)
		if n > 0 {
			totalFrames += int64(n)
		}
		if derr != nil || n == 0 {
			break
		}
	}
	return float64(totalFrames) / float64(rate), nil
}
