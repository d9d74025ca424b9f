// Package resample implements the engine's deliberately simple channel
// mixer and linear-interpolation resampler. It favors bounded, predictable
// CPU cost over audio fidelity: there is no bandlimited filtering here,
// only linear interpolation and straightforward channel duplication /
// averaging.
package resample

// MixChannels remaps an interleaved buffer of srcCh channels to dstCh
// channels, frame by frame. input must hold a whole number of frames
// (len(input) % srcCh == 0); the returned slice holds
// (len(input)/srcCh)*dstCh samples.
//
// srcCh == dstCh is a plain copy. 1 -> 2 duplicates the mono sample into
// both channels. 2 -> 1 averages left and right. Other downmixes average
// all source channels into one value and replicate it across every
// output; other upmixes copy the source channels through and fill the
// extra outputs by replicating the last source channel.
func MixChannels(input []float32, srcCh, dstCh int) []float32 {
	if srcCh <= 0 || dstCh <= 0 {
		return nil
	}
	frames := len(input) / srcCh
	if srcCh == dstCh {
		out := make([]float32, frames*dstCh)
		copy(out, input[:frames*srcCh])
		return out
	}

	out := make([]float32, frames*dstCh)

	switch {
	case srcCh == 1 && dstCh == 2:
		for f := 0; f < frames; f++ {
			s := input[f]
			out[f*2] = s
			out[f*2+1] = s
		}
	case srcCh == 2 && dstCh == 1:
		for f := 0; f < frames; f++ {
			l := input[f*2]
			r := input[f*2+1]
			out[f] = (l + r) / 2
		}
	case dstCh < srcCh:
		for f := 0; f < frames; f++ {
			var sum float32
			for ch := 0; ch < srcCh; ch++ {
				sum += input[f*srcCh+ch]
			}
			avg := sum / float32(srcCh)
			for ch := 0; ch < dstCh; ch++ {
				out[f*dstCh+ch] = avg
			}
		}
	default:
		for f := 0; f < frames; f++ {
			last := input[f*srcCh+srcCh-1]
			for ch := 0; ch < dstCh; ch++ {
				if ch < srcCh {
					out[f*dstCh+ch] = input[f*srcCh+ch]
				} else {
					out[f*dstCh+ch] = last
				}
			}
		}
	}

	return out
}

// LinearResample resamples an interleaved buffer of channels channels from
// srcRate to dstRate using per-channel linear interpolation. If
// srcRate == dstRate, input is returned unchanged (no copy, no allocation),
// which keeps the common same-rate path allocation-free on the decode loop.
func LinearResample(input []float32, srcRate, dstRate, channels int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || channels <= 0 {
		return input
	}

	srcFrames := len(input) / channels
	if srcFrames == 0 {
		return nil
	}

	ratio := float64(dstRate) / float64(srcRate)
	dstFrames := int(float64(srcFrames)*ratio + 0.5)
	out := make([]float32, dstFrames*channels)

	step := 1.0 / ratio
	for ch := 0; ch < channels; ch++ {
		t := 0.0
		for f := 0; f < dstFrames; f++ {
			i0 := int(t)
			i1 := i0 + 1
			if i1 >= srcFrames {
				i1 = srcFrames - 1
			}
			if i0 >= srcFrames {
				i0 = srcFrames - 1
			}
			frac := float32(t - float64(i0))
			a := input[i0*channels+ch]
			b := input[i1*channels+ch]
			out[f*channels+ch] = a + (b-a)*frac
			t += step
		}
	}

	return out
}

// ResampleAndMix converts a packet of interleaved samples from
// (srcCh, srcRate) to (dstCh, dstRate). Channels are remapped first so
// the resampler only ever interpolates within the destination channel
// layout.
func ResampleAndMix(input []float32, srcRate, srcCh, dstRate, dstCh int) []float32 {
	mixed := input
	if srcCh != dstCh {
		mixed = MixChannels(input, srcCh, dstCh)
	}
	if srcRate != dstRate {
		mixed = LinearResample(mixed, srcRate, dstRate, dstCh)
	}
	return mixed
}
