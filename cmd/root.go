package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audioengine",
	Short: "Real-time playback engine: decode, resample, and stream to a device",
	Long: `audioengine is the playback core of a local music player: it takes a file
path, decodes compressed audio, adapts it to the output device's sample rate
and channel count, and delivers samples to the audio hardware with low,
stable latency while responding to transport commands.

Commands:
  - play: Load a queue of files and drive playback from the terminal
  - transform: Convert an audio file to a different sample rate and WAV format`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
