package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// run is the controller's single goroutine: it drains reqCh and eosCh and
// executes every operation to completion before looking at the next one,
// so command processing is strictly serial.
func (c *Controller) run() {
	defer close(c.loopDone)
	for {
		select {
		case env, ok := <-c.reqCh:
			if !ok {
				return
			}
			env.reply <- c.dispatch(env.cmd)
		case w := <-c.eosCh:
			c.handleEOS(w)
		}
	}
}

func (c *Controller) dispatch(cmd Command) error {
	switch cmd.Kind {
	case CmdLoad:
		return c.handleLoad(cmd.Path)
	case CmdSetQueue:
		return c.handleSetQueue(cmd.Queue, cmd.StartAt)
	case CmdSetQueueAndPlay:
		return c.handleSetQueueAndPlay(cmd.Queue, cmd.StartAt)
	case CmdPlay:
		return c.handlePlay()
	case CmdPause:
		return c.handlePause()
	case CmdStop:
		return c.handleStop()
	case CmdSeek:
		return c.handleSeek(cmd.SeekSecs)
	case CmdSetVolume:
		return c.handleSetVolume(cmd.Volume)
	case CmdNext:
		return c.step(1)
	case CmdPrev:
		return c.step(-1)
	default:
		return fmt.Errorf("engine: unknown command kind %d", cmd.Kind)
	}
}

// handleLoad replaces the queue with a single track. Fails only on a
// syntactically invalid path; whether the file decodes is discovered at
// Play time.
func (c *Controller) handleLoad(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("engine: load: empty path")
	}
	if err := c.stopPlayback(); err != nil {
		return err
	}
	c.queue = []string{path}
	c.index = 0
	c.durationFrames.Store(0)
	c.events.publish(Event{Kind: EventState, State: StateStopped})
	c.kickDurationScan(path)
	return nil
}

func (c *Controller) handleSetQueue(items []string, startAt int) error {
	if err := c.stopPlayback(); err != nil {
		return err
	}
	c.queue = append([]string(nil), items...)
	if startAt >= 0 && startAt < len(c.queue) {
		c.index = startAt
	} else {
		c.index = -1
	}
	c.durationFrames.Store(0)
	c.events.publish(Event{Kind: EventState, State: StateStopped})
	if c.index >= 0 {
		c.kickDurationScan(c.queue[c.index])
	}
	return nil
}

func (c *Controller) handleSetQueueAndPlay(items []string, startAt int) error {
	if err := c.handleSetQueue(items, startAt); err != nil {
		return err
	}
	return c.handlePlay()
}

// handlePlay is a no-op when already Playing, resumes the stream when
// Paused (the decoder worker and its ring buffer are left untouched), and
// spawns a fresh decoder worker when Stopped.
func (c *Controller) handlePlay() error {
	switch PlaybackState(c.atoms.state.Load()) {
	case StatePlaying:
		return nil
	case StatePaused:
		c.atoms.state.Store(int32(StatePlaying))
		c.events.publish(Event{Kind: EventState, State: StatePlaying})
		return nil
	}

	if c.index < 0 || c.index >= len(c.queue) {
		return fmt.Errorf("engine: play: no current track")
	}

	if c.prod == nil {
		prod, err := c.rebuildStream()
		if err != nil {
			return fmt.Errorf("engine: play: rebuild stream: %w", err)
		}
		c.prod = prod
	}

	path := c.queue[c.index]
	w := newDecoderWorker(c.prod, c.outRate, c.outCh, c.atoms, c.log)
	c.prod = nil
	c.worker = w
	go w.run(path, nil)

	if next, ok := c.peekNext(); ok {
		w.switchTo(next)
	}
	c.spawnEOSWatcher(w)
	c.warmUp()

	c.atoms.state.Store(int32(StatePlaying))
	c.events.publish(Event{Kind: EventState, State: StatePlaying})
	return nil
}

func (c *Controller) handlePause() error {
	if PlaybackState(c.atoms.state.Load()) == StatePlaying {
		c.atoms.state.Store(int32(StatePaused))
		c.events.publish(Event{Kind: EventState, State: StatePaused})
	}
	return nil
}

func (c *Controller) handleStop() error {
	if err := c.stopPlayback(); err != nil {
		c.log.Error("engine: stop: rebuild stream failed", "err", err)
		return err
	}
	c.events.publish(Event{Kind: EventState, State: StateStopped})
	return nil
}

// handleSeek rebuilds the ring buffer and stream, seeds played-frames
// from the target position before the output stream ever runs, and
// restarts the decoder worker with an initial seek. Whether playback
// resumes depends on the state at entry.
func (c *Controller) handleSeek(seconds float64) error {
	if math.IsNaN(seconds) {
		return fmt.Errorf("engine: seek: NaN seconds")
	}
	if math.IsInf(seconds, 0) {
		return fmt.Errorf("engine: seek: infinite seconds")
	}
	if seconds < 0 {
		seconds = 0
	}
	if c.index < 0 || c.index >= len(c.queue) {
		return fmt.Errorf("engine: seek: no current track")
	}

	wasPlaying := PlaybackState(c.atoms.state.Load()) == StatePlaying
	c.atoms.state.Store(int32(StatePaused))

	if c.worker != nil {
		c.worker.stop()
		c.worker = nil
	}
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}

	prod, err := c.rebuildStream()
	if err != nil {
		return fmt.Errorf("engine: seek: rebuild stream: %w", err)
	}

	c.atoms.framesPlayed.Store(uint64(math.Round(seconds * float64(c.outRate))))
	c.atoms.queuedSamples.Store(0)

	seek := seconds
	w := newDecoderWorker(prod, c.outRate, c.outCh, c.atoms, c.log)
	c.prod = nil // the idle producer, if any, belonged to the ring just torn down
	c.worker = w
	go w.run(c.queue[c.index], &seek)

	if next, ok := c.peekNext(); ok {
		w.switchTo(next)
	}
	c.spawnEOSWatcher(w)
	c.warmUp()

	if wasPlaying {
		c.atoms.state.Store(int32(StatePlaying))
		c.events.publish(Event{Kind: EventState, State: StatePlaying})
	} else {
		c.events.publish(Event{Kind: EventState, State: StatePaused})
	}
	return nil
}

func (c *Controller) handleSetVolume(v float32) error {
	c.atoms.setVolume(v)
	return nil
}

// step implements both Next (delta=1) and Prev (delta=-1): wraps the
// index modulo queue length, no-ops on an empty queue or an unchanged
// index, otherwise stops, updates the index, kicks a duration scan for
// the new track and plays it.
func (c *Controller) step(delta int) error {
	length := len(c.queue)
	if length == 0 {
		return nil
	}

	newIndex, changed := wrapIndex(c.index, delta, length)
	if !changed {
		return nil
	}

	if err := c.stopPlayback(); err != nil {
		return err
	}
	c.index = newIndex
	c.durationFrames.Store(0)
	c.kickDurationScan(c.queue[c.index])
	return c.handlePlay()
}

// wrapIndex computes the new index for a Next/Prev step. cur may be -1
// (no current track), in which case it is treated as 0 before applying
// delta. changed is false when the wrap lands back on cur (a step of
// n % len == 0).
func wrapIndex(cur, delta, length int) (newIndex int, changed bool) {
	base := cur
	if base < 0 {
		base = 0
	}
	newIndex = ((base+delta)%length + length) % length
	return newIndex, newIndex != cur
}

// peekNext reports the literal next path in queue order (no wraparound),
// used to pre-send SwitchTo for gapless chaining.
func (c *Controller) peekNext() (string, bool) {
	if c.index < 0 {
		return "", false
	}
	ni := c.index + 1
	if ni < len(c.queue) {
		return c.queue[ni], true
	}
	return "", false
}

// stopPlayback tears down any running worker and stream, resets
// played-frames and queued-samples, and leaves a fresh idle ring buffer
// pair ready for the next Play. It is the shared body of Stop, Load,
// SetQueue and the Next/Prev step.
func (c *Controller) stopPlayback() error {
	if c.worker != nil {
		c.worker.stop()
		c.worker = nil
	}
	c.atoms.state.Store(int32(StateStopped))

	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
	prod, err := c.rebuildStream()
	if err != nil {
		return fmt.Errorf("engine: rebuild stream: %w", err)
	}
	c.prod = prod
	c.atoms.framesPlayed.Store(0)
	c.atoms.queuedSamples.Store(0)
	return nil
}

// warmUp blocks until the ring buffer holds at least prebufferSamples or
// prebufferTimeout elapses, whichever comes first.
func (c *Controller) warmUp() {
	deadline := time.Now().Add(prebufferTimeout)
	for time.Now().Before(deadline) {
		if c.atoms.queuedSamples.Load() >= prebufferSamples {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// spawnEOSWatcher blocks on w's event channel and forwards end-of-stream
// to the command loop via eosCh, one short-lived goroutine per Play/Seek.
// The channel is closed when the worker exits for any reason, so a
// stopped worker releases its watcher too; handleEOS ignores the
// resulting notification because the stopped worker is no longer
// current.
func (c *Controller) spawnEOSWatcher(w *decoderWorker) {
	go func() {
		<-w.eos
		select {
		case c.eosCh <- w:
		case <-c.done:
		}
	}()
}

// handleEOS transitions Playing to Stopped and emits "ended", but only if
// w is still the current worker: a Stop or Seek that raced ahead of a
// stale EOS notification has already replaced it, and that notification
// must be ignored.
func (c *Controller) handleEOS(w *decoderWorker) {
	if c.worker != w {
		return
	}
	c.worker = nil
	c.atoms.state.Store(int32(StateStopped))

	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
	prod, err := c.rebuildStream()
	if err != nil {
		c.log.Error("engine: rebuild stream after end of stream", "err", err)
	} else {
		c.prod = prod
	}
	c.atoms.framesPlayed.Store(0)
	c.atoms.queuedSamples.Store(0)

	c.events.publish(Event{Kind: EventState, State: StateEnded})
}
