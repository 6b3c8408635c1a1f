package pcm

import (
	"math"
	"testing"
)

func TestQuantizeNeutralValues(t *testing.T) {
	tests := []struct {
		name   string
		in     float64
		expect int16
	}{
		{name: "silence", in: 0, expect: 0},
		{name: "full scale positive", in: 1.0, expect: 32767},
		{name: "full scale negative", in: -1.0, expect: -32767},
		{name: "half scale", in: 0.5, expect: 16384}, // round(16383.5)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantize([]float64{tt.in})[0]
			if got != tt.expect {
				t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.expect)
			}
		})
	}
}

func TestQuantizeClampsOverdrive(t *testing.T) {
	// Samples beyond full scale must clip, never wrap.
	out := Quantize([]float64{1.5, -1.5, 2.0, -2.0})
	for i, s := range out {
		if s != math.MaxInt16 && s != math.MinInt16 {
			t.Errorf("sample %d not clamped: %d", i, s)
		}
	}
	if out[0] != math.MaxInt16 || out[1] != math.MinInt16 {
		t.Errorf("clamp direction wrong: %v", out)
	}
}

func TestFloatRoundTripStaysInRange(t *testing.T) {
	in := []int16{0, 1, -1, 1000, -1000, math.MaxInt16, math.MinInt16}
	out := Quantize(ToFloat(in))
	for i := range in {
		diff := int(out[i]) - int(in[i])
		if diff < -1 || diff > 1 {
			t.Errorf("sample %d drifted: %d -> %d", i, in[i], out[i])
		}
	}
}

func TestResampleIdentity(t *testing.T) {
	in := []float64{0, 0.5, -0.5, 1}
	out := Resample(in, 22050, 22050)
	if len(out) != len(in) {
		t.Fatalf("identity resample changed length: %d", len(out))
	}
}

func TestResampleLength(t *testing.T) {
	in := make([]float64, 22050) // one second
	out := Resample(in, 22050, 48000)

	// One second of audio at the target rate, within one sample.
	if got := len(out); got < 47999 || got > 48001 {
		t.Errorf("expected ~48000 samples, got %d", got)
	}
}

func TestResampleStaysBounded(t *testing.T) {
	// Linear interpolation between in-range samples cannot leave the range.
	in := make([]float64, 1000)
	for i := range in {
		in[i] = math.Sin(float64(i) / 10)
	}
	for _, s := range Resample(in, 22050, 48000) {
		if s > 1 || s < -1 {
			t.Fatalf("resampled sample out of range: %v", s)
		}
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []int16{0, 1000, -1000, math.MaxInt16, math.MinInt16}
	data := EncodeWAV(samples, 48000, 1)

	w, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if w.SampleRate != 48000 {
		t.Errorf("declared sample rate = %d, want 48000", w.SampleRate)
	}
	if w.Channels != 1 {
		t.Errorf("channels = %d, want 1", w.Channels)
	}
	if len(w.Samples) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(w.Samples), len(samples))
	}
	for i := range samples {
		if w.Samples[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, w.Samples[i], samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not audio"), make([]byte, 100)} {
		if _, err := DecodeWAV(data); err == nil {
			t.Error("expected error for invalid wav data")
		}
	}
}
