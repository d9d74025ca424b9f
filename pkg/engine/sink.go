package engine

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/resonix-audio/audioengine/pkg/eventframe"
	"github.com/resonix-audio/audioengine/pkg/eventframering"
)

// eventSinkCapacity is generous relative to the ~100ms metrics cadence:
// a slow consumer can fall behind for several seconds before frames start
// being dropped.
const eventSinkCapacity = 1024

// EventSink is the producer side of the engine's event ring buffer. The
// metrics emitter, the command loop, duration scanners and device-change
// notifications all push through it, so the ring's single-producer
// requirement is enforced by mu; Drain is called by whatever external
// consumer (UI bridge, CLI printer) wants events.
type EventSink struct {
	mu sync.Mutex
	rb *eventframering.EventFrameRingBuffer
}

func newEventSink() *EventSink {
	return &EventSink{rb: eventframering.New(eventSinkCapacity)}
}

// publish encodes ev and pushes it into the ring buffer. A full buffer
// silently drops the event rather than blocking the caller, since events
// are advisory telemetry, not playback-critical data. The lock serializes
// the engine's several publishing goroutines into the one producer the
// ring supports; it is never taken on the audio callback path.
func (s *EventSink) publish(ev Event) {
	s.mu.Lock()
	_, _ = s.rb.Write([]eventframe.Frame{ev.toFrame()})
	s.mu.Unlock()
}

// Drain pulls up to max pending events for the external consumer.
func (s *EventSink) Drain(max int) []Event {
	frames, err := s.rb.Read(max)
	if err != nil {
		return nil
	}
	out := make([]Event, 0, len(frames))
	for _, f := range frames {
		if ev, ok := eventFromFrame(f); ok {
			out = append(out, ev)
		}
	}
	return out
}

// eventFromFrame decodes a wire frame back into an Event. It is the
// inverse of Event.toFrame, used by in-process consumers that want typed
// values rather than raw bytes (the CLI status printer, tests).
func eventFromFrame(f eventframe.Frame) (Event, bool) {
	switch f.Kind {
	case eventframe.KindState:
		if len(f.Payload) < 1 {
			return Event{}, false
		}
		return Event{Kind: EventState, State: PlaybackState(f.Payload[0])}, true
	case eventframe.KindPosition:
		if len(f.Payload) < 8 {
			return Event{}, false
		}
		secs := math.Float64frombits(binary.LittleEndian.Uint64(f.Payload))
		return Event{Kind: EventPosition, PositionSecs: secs}, true
	case eventframe.KindDuration:
		if len(f.Payload) < 8 {
			return Event{}, false
		}
		secs := math.Float64frombits(binary.LittleEndian.Uint64(f.Payload))
		return Event{Kind: EventDuration, DurationSecs: secs}, true
	case eventframe.KindPeak:
		if len(f.Payload) < 12 {
			return Event{}, false
		}
		l := math.Float32frombits(binary.LittleEndian.Uint32(f.Payload[0:4]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(f.Payload[4:8]))
		rms := math.Float32frombits(binary.LittleEndian.Uint32(f.Payload[8:12]))
		return Event{Kind: EventPeak, PeakLeft: l, PeakRight: r, PeakRMS: rms}, true
	case eventframe.KindDevice:
		return Event{Kind: EventDevice, DeviceName: string(f.Payload)}, true
	default:
		return Event{}, false
	}
}
