// Decodes an MP3 file through the engine's decoder layer, resamples it to
// a target rate with the engine's linear resampler, and reports the frame
// counts on both sides of the conversion.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/resonix-audio/audioengine/pkg/decoders/mp3"
	"github.com/resonix-audio/audioengine/pkg/pcm"
	"github.com/resonix-audio/audioengine/pkg/resample"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: decode <input.mp3> [target_rate]")
		os.Exit(1)
	}

	targetRate := 48000
	if len(os.Args) > 2 {
		r, err := strconv.Atoi(os.Args[2])
		if err != nil || r <= 0 {
			log.Fatalf("bad target rate %q", os.Args[2])
		}
		targetRate = r
	}

	decoder := mp3.NewDecoder()
	if err := decoder.Open(os.Args[1]); err != nil {
		log.Fatalf("open: %v", err)
	}
	defer decoder.Close()

	rate, channels, bps := decoder.GetFormat()
	fmt.Printf("%s: %d Hz, %d ch, %d bit -> %d Hz\n", os.Args[1], rate, channels, bps, targetRate)

	const chunkFrames = 1152 // one MPEG granule pair
	raw := make([]byte, chunkFrames*channels*bps/8)
	samples := make([]float32, chunkFrames*channels)

	srcFrames, dstFrames := 0, 0
	for {
		n, err := decoder.DecodeSamples(chunkFrames, raw)
		if n == 0 {
			break
		}
		srcFrames += n

		sn, cerr := pcm.ToFloat32(raw[:n*channels*bps/8], bps, samples)
		if cerr != nil {
			log.Fatalf("pcm convert: %v", cerr)
		}
		out := resample.LinearResample(samples[:sn], rate, targetRate, channels)
		dstFrames += len(out) / channels

		if err != nil {
			break
		}
	}

	fmt.Printf("source frames: %d (%.3f s)\n", srcFrames, float64(srcFrames)/float64(rate))
	fmt.Printf("resampled frames: %d (%.3f s)\n", dstFrames, float64(dstFrames)/float64(targetRate))
}
