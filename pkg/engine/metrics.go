package engine

import "time"

// metricsEmitInterval is the ~10Hz cadence of position and peak events.
const metricsEmitInterval = 100 * time.Millisecond

// Metrics is a pull-API read-view over engine state: a thin wrapper so
// external callers (UI polling, the CLI's status printer) can query
// position/duration/sample-rate without going through the command
// channel.
type Metrics struct {
	c *Controller
}

// Position returns frames-played converted to seconds.
func (m Metrics) Position() float64 {
	return float64(m.c.atoms.framesPlayed.Load()) / float64(m.c.outRate)
}

// Duration returns the scanned track duration in seconds, or 0 if the
// duration scan for the current track hasn't completed yet.
func (m Metrics) Duration() float64 {
	return float64(m.c.durationFrames.Load()) / float64(m.c.outRate)
}

// SampleRate returns the engine's fixed output sample rate.
func (m Metrics) SampleRate() uint32 {
	return m.c.sampleRateBits.Load()
}

// Volume returns the current playback volume in [0,1].
func (m Metrics) Volume() float32 {
	return m.c.atoms.volume()
}

// State returns the current playback state.
func (m Metrics) State() PlaybackState {
	return PlaybackState(m.c.atoms.state.Load())
}

// metricsLoop is the long-lived metrics emitter goroutine: every ~100ms
// it samples the played-frames and peak/RMS atomics and
// publishes position and peak events. It never reads the queue or the
// decoder worker, only the atomics in outputAtomics, so it needs no
// synchronization with the EC goroutine.
func (c *Controller) metricsLoop() {
	ticker := time.NewTicker(metricsEmitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pos := float64(c.atoms.framesPlayed.Load()) / float64(c.outRate)
			c.events.publish(Event{Kind: EventPosition, PositionSecs: pos})

			peakL := bitsFloat(c.atoms.peakLBits.Load())
			peakR := bitsFloat(c.atoms.peakRBits.Load())
			rms := bitsFloat(c.atoms.rmsBits.Load())
			c.events.publish(Event{Kind: EventPeak, PeakLeft: peakL, PeakRight: peakR, PeakRMS: rms})
		case <-c.done:
			return
		}
	}
}
