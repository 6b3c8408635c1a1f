// Package player plays synthesized audio on the local sound device. It
// understands the two container formats the engines emit: MP3 and PCM16 WAV.
package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/artiphoria-hub/text2audio/internal/pcm"
)

// Play decodes the audio and blocks until playback completes.
func Play(data []byte, mimeType string) error {
	if len(data) == 0 {
		return errors.New("no audio to play")
	}
	switch mimeType {
	case "audio/mpeg":
		return playMP3(data)
	case "audio/wav", "audio/x-wav":
		return playWAV(data)
	default:
		return fmt.Errorf("cannot play %s", mimeType)
	}
}

func playMP3(data []byte) error {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding mp3: %w", err)
	}
	// go-mp3 always yields 16-bit stereo at the stream's rate.
	return playPCM(dec, dec.SampleRate(), 2)
}

func playWAV(data []byte) error {
	w, err := pcm.DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("decoding wav: %w", err)
	}
	raw := make([]byte, len(w.Samples)*2)
	for i, s := range w.Samples {
		raw[i*2] = byte(s)
		raw[i*2+1] = byte(s >> 8)
	}
	return playPCM(bytes.NewReader(raw), w.SampleRate, w.Channels)
}

func playPCM(src io.Reader, sampleRate, channels int) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(src)
	defer p.Close() //nolint:errcheck
	p.Play()
	for p.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}
