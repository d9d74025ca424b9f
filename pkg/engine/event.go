package engine

import (
	"encoding/binary"
	"math"

	"github.com/resonix-audio/audioengine/pkg/eventframe"
)

// EventKind identifies which variant of Event a value holds.
type EventKind int

const (
	EventState EventKind = iota
	EventPosition
	EventDuration
	EventPeak
	EventDevice
)

// PlaybackState is the engine's transport state. StateEnded is a
// transient value published when the queue finishes naturally; the
// stored state atomic itself returns to StateStopped.
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
	StateEnded
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "stopped"
	}
}

// Event is the tagged union of notifications the engine publishes to its
// event sink. Only the field matching Kind is populated.
type Event struct {
	Kind EventKind

	State        PlaybackState
	PositionSecs float64
	DurationSecs float64
	PeakLeft     float32
	PeakRight    float32
	PeakRMS      float32
	DeviceName   string
}

// toFrame encodes an Event as an eventframe.Frame so it can be pushed
// through the event sink's ring buffer.
func (e Event) toFrame() eventframe.Frame {
	switch e.Kind {
	case EventState:
		return eventframe.Frame{Kind: eventframe.KindState, Payload: []byte{byte(e.State)}}
	case EventPosition:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(e.PositionSecs))
		return eventframe.Frame{Kind: eventframe.KindPosition, Payload: buf}
	case EventDuration:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(e.DurationSecs))
		return eventframe.Frame{Kind: eventframe.KindDuration, Payload: buf}
	case EventPeak:
		buf := make([]byte, 12)
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(e.PeakLeft))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(e.PeakRight))
		binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(e.PeakRMS))
		return eventframe.Frame{Kind: eventframe.KindPeak, Payload: buf}
	case EventDevice:
		return eventframe.Frame{Kind: eventframe.KindDevice, Payload: []byte(e.DeviceName)}
	default:
		return eventframe.Frame{}
	}
}
