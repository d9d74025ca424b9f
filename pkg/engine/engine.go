// Package engine implements the real-time playback core: a decoder worker
// feeding a lock-free ring buffer that a device callback drains, all
// coordinated by a single-goroutine controller that owns queue, transport
// and seek semantics.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/resonix-audio/audioengine/pkg/device"
	"github.com/resonix-audio/audioengine/pkg/ringbuffer"
)

// ringBufferCapacitySamples is the fixed SPSC ring capacity, ≈2,000,000
// samples. ringbuffer.New rounds this to the next power of 2.
const ringBufferCapacitySamples = 2_000_000

// prebufferSamples is how many queued samples Play/Seek wait for before
// starting output (≈1s @ 48kHz stereo), bounded by prebufferTimeout.
const prebufferSamples = 96_000

const prebufferTimeout = 1200 * time.Millisecond

// Config configures a new Controller. SampleRate and Channels describe the
// fixed output format the device stream is opened at. The go-portaudio
// binding this module builds on (github.com/drgolem/go-portaudio) has no
// device-capability query API, so unlike a probe-then-open design, the
// caller supplies the output format explicitly; see DESIGN.md.
type Config struct {
	DeviceIndex     int
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	Logger          *slog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 2
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 4096
	}
	return cfg
}

// envelope pairs a Command with a reply channel so the public API can be a
// synchronous, error-returning method set while the underlying channel
// remains a fire-and-forget tagged union.
type envelope struct {
	cmd   Command
	reply chan error
}

// Controller is the engine controller (EC): it owns the queue, the shared
// atomics, the ring buffer producer handle between tracks, the decoder
// worker's lifecycle and the output stream. Every field below this comment
// that isn't an atomic or a channel is touched only from the run goroutine.
type Controller struct {
	cfg     device.Config
	outRate int
	outCh   int
	log     *slog.Logger

	reqCh    chan envelope
	eosCh    chan *decoderWorker
	done     chan struct{}
	loopDone chan struct{}

	events         *EventSink
	atoms          *outputAtomics
	durationFrames atomic.Uint64
	sampleRateBits atomic.Uint32

	queue []string
	index int // -1 means no current track

	prod   *ringbuffer.Producer // idle producer, valid only while Stopped
	stream *outputStream
	worker *decoderWorker
}

// New opens the output device and starts the engine's background
// goroutines (command loop, metrics emitter). Failure to open a device is
// fatal at construction: no goroutines are started and no error is
// silently swallowed.
func New(cfg Config) (*Controller, error) {
	cfg = cfg.withDefaults()

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := device.Initialize(); err != nil {
		return nil, fmt.Errorf("engine: initialize audio device: %w", err)
	}
	log.Debug("audio host initialized", "version", device.Version())

	c := &Controller{
		cfg: device.Config{
			DeviceIndex:     cfg.DeviceIndex,
			SampleRate:      cfg.SampleRate,
			Channels:        cfg.Channels,
			FramesPerBuffer: cfg.FramesPerBuffer,
		},
		outRate:  cfg.SampleRate,
		outCh:    cfg.Channels,
		log:      log,
		reqCh:    make(chan envelope),
		eosCh:    make(chan *decoderWorker, 4),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		events:   newEventSink(),
		atoms:    newOutputAtomics(),
		index:    -1,
	}
	c.sampleRateBits.Store(uint32(cfg.SampleRate))

	prod, err := c.rebuildStream()
	if err != nil {
		_ = device.Terminate()
		return nil, fmt.Errorf("engine: open output device: %w", err)
	}
	c.prod = prod

	go c.run()
	go c.metricsLoop()

	return c, nil
}

// rebuildStream builds a fresh ring buffer pair and opens a device stream
// around its consumer half, replacing c.stream. It never touches c.worker;
// callers are responsible for tearing down any existing worker first. This
// is the only safe way to swap a ring buffer's consumer half: tear down
// both sides and construct fresh ones rather than attempt to move a live
// consumer out from under a running callback.
func (c *Controller) rebuildStream() (*ringbuffer.Producer, error) {
	prod, cons := ringbuffer.New(ringBufferCapacitySamples)
	stream, err := openOutputStream(c.cfg, cons, c.atoms)
	if err != nil {
		return nil, err
	}
	c.stream = stream
	return prod, nil
}

// Events returns the engine's event sink, the pull side of the event
// stream.
func (c *Controller) Events() *EventSink { return c.events }

// Metrics returns a read-only view over the engine's position, duration
// and sample rate.
func (c *Controller) Metrics() Metrics { return Metrics{c: c} }

// NotifyDeviceChanged publishes a device event. The engine does not watch
// for device hot-plug itself; this gives an external watcher somewhere to
// report through once it has picked a new device.
func (c *Controller) NotifyDeviceChanged(name string) {
	c.events.publish(Event{Kind: EventDevice, DeviceName: name})
}

// Send submits cmd to the controller's command loop and blocks until it
// has been fully processed, returning any error from the operation. The
// named wrapper methods below (Load, Play, Seek, ...) are convenience
// constructors around the same Command union and the same Send.
func (c *Controller) Send(cmd Command) error {
	reply := make(chan error, 1)
	c.reqCh <- envelope{cmd: cmd, reply: reply}
	return <-reply
}

func (c *Controller) Load(path string) error { return c.Send(LoadCommand(path)) }

func (c *Controller) SetQueue(items []string, startAt int) error {
	return c.Send(SetQueueCommand(items, startAt))
}

func (c *Controller) SetQueueAndPlay(items []string, startAt int) error {
	return c.Send(SetQueueAndPlayCommand(items, startAt))
}

func (c *Controller) Play() error { return c.Send(PlayCommand()) }

func (c *Controller) Pause() error { return c.Send(PauseCommand()) }

func (c *Controller) Stop() error { return c.Send(StopCommand()) }

func (c *Controller) Seek(seconds float64) error { return c.Send(SeekCommand(seconds)) }

func (c *Controller) SetVolume(v float32) error { return c.Send(SetVolumeCommand(v)) }

func (c *Controller) Next() error { return c.Send(NextCommand()) }

func (c *Controller) Prev() error { return c.Send(PrevCommand()) }

// Close stops playback, tears down the output stream and releases the
// device. The Controller must not be used afterward.
func (c *Controller) Close() error {
	_ = c.Send(StopCommand())
	close(c.done)
	close(c.reqCh)
	<-c.loopDone

	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
	return device.Terminate()
}
