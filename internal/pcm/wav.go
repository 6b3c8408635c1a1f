package pcm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// WAV holds decoded 16-bit PCM audio.
type WAV struct {
	SampleRate int
	Channels   int
	Samples    []int16 // interleaved when Channels > 1
}

var (
	errNotRIFF        = errors.New("not a RIFF/WAVE file")
	errNoDataChunk    = errors.New("wav has no data chunk")
	errUnsupportedWAV = errors.New("unsupported wav encoding")
)

// DecodeWAV parses a 16-bit PCM WAV file.
func DecodeWAV(data []byte) (*WAV, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotRIFF
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		haveFmt       bool
	)

	// Walk the chunk list; fmt must precede data.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errUnsupportedWAV
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != 1 || bitsPerSample != 16 || channels < 1 {
				return nil, fmt.Errorf("%w: format=%d bits=%d channels=%d",
					errUnsupportedWAV, format, bitsPerSample, channels)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, errUnsupportedWAV
			}
			n := size / 2
			samples := make([]int16, n)
			for i := 0; i < n; i++ {
				samples[i] = int16(binary.LittleEndian.Uint16(data[body+2*i : body+2*i+2]))
			}
			return &WAV{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
		}

		// Chunks are word-aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, errNoDataChunk
}

// EncodeWAV writes 16-bit PCM samples into a WAV container declaring the
// given sample rate and channel count.
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	if channels < 1 {
		channels = 1
	}
	dataLen := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen)) //nolint:errcheck
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))         //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(1))          //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(channels))   //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)) //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))   //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign)) //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(16))         //nolint:errcheck

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen)) //nolint:errcheck
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s) //nolint:errcheck
	}
	return buf.Bytes()
}
