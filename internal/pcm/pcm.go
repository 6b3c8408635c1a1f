// Package pcm contains the small amount of waveform plumbing the local
// neural engines need: 16-bit PCM WAV encode/decode, float conversion,
// linear resampling and int16 quantization.
package pcm

import "math"

// Quantize converts normalized float samples to 16-bit signed PCM by
// round(sample * 32767), clamping at the int16 bounds so full-scale input
// cannot overflow.
func Quantize(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * 32767)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}

// ToFloat converts 16-bit PCM samples to normalized floats in [-1, 1).
func ToFloat(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768
	}
	return out
}

// Resample converts a mono float waveform from one sample rate to another by
// linear interpolation. Rates equal or input shorter than two samples come
// back unchanged.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || from <= 0 || to <= 0 || len(samples) < 2 {
		return samples
	}
	ratio := float64(from) / float64(to)
	n := int(math.Ceil(float64(len(samples)) * float64(to) / float64(from)))
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
