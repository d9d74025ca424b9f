package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resonix-audio/audioengine/pkg/engine"

	"github.com/spf13/cobra"
)

var (
	playDeviceIdx int
	playRate      int
	playChannels  int
	playFrames    int
	playStartAt   int
	playVolume    float32
	playVerbose   bool
)

// playCmd handles both a single file and a multi-file queue: the engine
// owns queue and gapless transition semantics, so the CLI never loops
// over files or reopens the device between tracks.
var playCmd = &cobra.Command{
	Use:   "play <audio_file> [audio_file...]",
	Short: "Load a queue of audio files and play them",
	Long: `Load one or more audio files into the engine's queue and play them back
to back, gaplessly, using the real-time decode/resample/output pipeline.

Examples:
  # Play a single file
  audioengine play music.flac

  # Play a queue; the second track starts gaplessly as the first ends
  audioengine play song1.mp3 song2.flac song3.wav

  # Pick an output device and sample rate
  audioengine play -d 0 -r 44100 music.flac

Status (state, position, duration, volume) is logged every 2 seconds while
the queue plays. Ctrl-C or SIGTERM stops playback and exits.

Supported Formats: .mp3, .flac, .fla, .wav, .ogg`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&playDeviceIdx, "device", "d", 1, "Audio output device index")
	playCmd.Flags().IntVarP(&playRate, "rate", "r", 48000, "Output sample rate in Hz")
	playCmd.Flags().IntVarP(&playChannels, "channels", "c", 2, "Output channel count")
	playCmd.Flags().IntVarP(&playFrames, "frames", "f", 4096, "Device frames per buffer")
	playCmd.Flags().IntVarP(&playStartAt, "start-at", "s", 0, "Queue index to start playback at")
	playCmd.Flags().Float32VarP(&playVolume, "volume", "V", 1.0, "Initial volume [0,1]")
	playCmd.Flags().BoolVarP(&playVerbose, "verbose", "v", false, "Verbose output (debug logging)")
}

func runPlay(cmd *cobra.Command, args []string) {
	logLevel := slog.LevelInfo
	if playVerbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	for _, f := range args {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			slog.Error("file not found", "path", f)
			os.Exit(1)
		}
	}

	slog.Info("opening audio engine",
		"device_index", playDeviceIdx,
		"sample_rate", playRate,
		"channels", playChannels,
		"frames_per_buffer", playFrames,
		"track_count", len(args))

	eng, err := engine.New(engine.Config{
		DeviceIndex:     playDeviceIdx,
		SampleRate:      playRate,
		Channels:        playChannels,
		FramesPerBuffer: playFrames,
		Logger:          logger,
	})
	if err != nil {
		slog.Error("failed to open audio engine", "error", err)
		slog.Error("hint: make sure PortAudio is installed and the device index is valid")
		os.Exit(1)
	}
	defer eng.Close()

	if err := eng.SetVolume(playVolume); err != nil {
		slog.Warn("failed to set initial volume", "error", err)
	}

	if err := eng.SetQueueAndPlay(args, playStartAt); err != nil {
		slog.Error("failed to start playback", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ended := make(chan struct{})
	go watchEvents(eng, ended)

	statusDone := make(chan struct{})
	go monitorEngineStatus(eng, statusDone)

	select {
	case <-ended:
		slog.Info("playback completed")
	case sig := <-sigChan:
		slog.Info("signal received, stopping playback", "signal", sig)
	}

	close(statusDone)
	if err := eng.Stop(); err != nil {
		slog.Error("failed to stop engine", "error", err)
	}
	slog.Info("exiting")
}

// watchEvents drains the engine's event sink and logs state transitions,
// sending one value on ended once playback finishes the queue naturally.
func watchEvents(eng *engine.Controller, ended chan<- struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		for _, ev := range eng.Events().Drain(32) {
			switch ev.Kind {
			case engine.EventState:
				slog.Info("state changed", "state", ev.State.String())
				if ev.State == engine.StateEnded {
					ended <- struct{}{}
					return
				}
			case engine.EventDuration:
				slog.Info("duration scanned", "seconds", fmt.Sprintf("%.3f", ev.DurationSecs))
			case engine.EventDevice:
				slog.Info("device changed", "name", ev.DeviceName)
			}
		}
	}
}

// monitorEngineStatus prints playback status every 2 seconds.
func monitorEngineStatus(eng *engine.Controller, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m := eng.Metrics()
			slog.Info("playback status",
				"state", m.State().String(),
				"position", fmt.Sprintf("%.2fs", m.Position()),
				"duration", fmt.Sprintf("%.2fs", m.Duration()),
				"volume", fmt.Sprintf("%.2f", m.Volume()))
		case <-done:
			return
		}
	}
}
