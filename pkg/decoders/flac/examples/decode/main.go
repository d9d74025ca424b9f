// Decodes a FLAC file through the engine's decoder layer and demonstrates
// the header-based duration path (TotalSamples) against the actual decoded
// frame count, plus sample-accurate seeking.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/resonix-audio/audioengine/pkg/decoders/flac"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: decode <input.flac> [seek_seconds]")
		os.Exit(1)
	}

	decoder := flac.NewDecoder()
	if err := decoder.Open(os.Args[1]); err != nil {
		log.Fatalf("open: %v", err)
	}
	defer decoder.Close()

	rate, channels, bps := decoder.GetFormat()
	fmt.Printf("%s: %d Hz, %d ch, %d bit\n", os.Args[1], rate, channels, bps)

	if total := decoder.TotalSamples(); total > 0 {
		fmt.Printf("header frames: %d (%.3f s)\n", total, float64(total)/float64(rate))
	} else {
		fmt.Println("header frames: not present")
	}

	if len(os.Args) > 2 {
		var seekSecs float64
		if _, err := fmt.Sscanf(os.Args[2], "%f", &seekSecs); err != nil {
			log.Fatalf("bad seek value %q: %v", os.Args[2], err)
		}
		target := int64(seekSecs * float64(rate))
		if err := decoder.SeekToSample(target); err != nil {
			log.Fatalf("seek to sample %d: %v", target, err)
		}
		fmt.Printf("seeked to frame %d (%.3f s)\n", target, seekSecs)
	}

	const chunkFrames = 4096
	buf := make([]byte, chunkFrames*channels*bps/8)

	decodedFrames := 0
	for {
		n, err := decoder.DecodeSamples(chunkFrames, buf)
		if n == 0 {
			break
		}
		decodedFrames += n
		if err != nil {
			break
		}
	}

	fmt.Printf("decoded frames: %d (%.3f s)\n", decodedFrames, float64(decodedFrames)/float64(rate))
}
