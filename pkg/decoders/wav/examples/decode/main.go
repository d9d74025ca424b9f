// Decodes a WAV file through the engine's decoder and PCM conversion
// layers and reports duration and the loudest sample found.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/resonix-audio/audioengine/pkg/decoders/wav"
	"github.com/resonix-audio/audioengine/pkg/pcm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: decode <input.wav>")
		os.Exit(1)
	}

	decoder := wav.NewDecoder()
	if err := decoder.Open(os.Args[1]); err != nil {
		log.Fatalf("open: %v", err)
	}
	defer decoder.Close()

	rate, channels, bps := decoder.GetFormat()
	fmt.Printf("%s: %d Hz, %d ch, %d bit\n", os.Args[1], rate, channels, bps)

	const chunkFrames = 1024
	raw := make([]byte, chunkFrames*channels*bps/8)
	samples := make([]float32, chunkFrames*channels)

	totalFrames := 0
	var peak float32
	for {
		n, err := decoder.DecodeSamples(chunkFrames, raw)
		if n == 0 {
			break
		}
		totalFrames += n

		sn, cerr := pcm.ToFloat32(raw[:n*channels*bps/8], bps, samples)
		if cerr != nil {
			log.Fatalf("pcm convert: %v", cerr)
		}
		for _, s := range samples[:sn] {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}

		if err != nil {
			break
		}
	}

	fmt.Printf("frames: %d\n", totalFrames)
	fmt.Printf("duration: %.3f s\n", float64(totalFrames)/float64(rate))
	fmt.Printf("peak: %.4f\n", peak)
}
