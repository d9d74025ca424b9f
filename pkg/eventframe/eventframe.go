// Package eventframe defines the wire encoding for engine.Event values
// that cross the event sink boundary: a small fixed header plus a
// variable-length, kind-specific payload.
package eventframe

import (
	"encoding/binary"
	"fmt"
)

// Kind identifies which Event variant a Frame carries.
type Kind uint8

const (
	KindState Kind = iota
	KindPosition
	KindDuration
	KindPeak
	KindDevice
)

// Frame is the wire form of an engine event: a kind tag plus an opaque,
// kind-specific payload already encoded by the caller. eventframe does
// not know the shape of any individual event, only how to frame it.
type Frame struct {
	Kind    Kind
	Payload []byte // raw encoded event body (last field for better memory layout)
}

// Marshal serializes Frame to a byte slice using little-endian encoding.
//
// Binary format (5 byte header):
//   - Kind (1 byte, uint8)
//   - Payload length (4 bytes, uint32)
//   - Payload (variable length)
func (f *Frame) Marshal() []byte {
	headerSize := 5
	buf := make([]byte, headerSize+len(f.Payload))

	buf[0] = byte(f.Kind)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(f.Payload)))
	copy(buf[5:], f.Payload)

	return buf
}

// Unmarshal deserializes a byte slice into Frame.
//
// Returns an error if the buffer is too small for the header or the
// payload length field exceeds the remaining buffer size.
func (f *Frame) Unmarshal(data []byte) error {
	headerSize := 5
	if len(data) < headerSize {
		return fmt.Errorf("buffer too small: got %d bytes, need at least %d bytes", len(data), headerSize)
	}

	f.Kind = Kind(data[0])
	payloadLen := int(binary.LittleEndian.Uint32(data[1:5]))

	if len(data) < headerSize+payloadLen {
		return fmt.Errorf("buffer too small for payload: got %d bytes, need %d bytes", len(data), headerSize+payloadLen)
	}

	f.Payload = make([]byte, payloadLen)
	copy(f.Payload, data[5:5+payloadLen])

	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f *Frame) MarshalBinary() ([]byte, error) {
	return f.Marshal(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *Frame) UnmarshalBinary(data []byte) error {
	return f.Unmarshal(data)
}
