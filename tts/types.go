// Package tts provides the multi-engine text-to-speech orchestration core:
// request/result types, the engine contract, text chunking and the registry
// that routes synthesis requests to the configured engines.
package tts

import "encoding/base64"

// EngineID identifies a synthesis engine.
type EngineID string

// Known engine identifiers.
const (
	// EngineEdge is the Microsoft Edge streaming neural voice service.
	EngineEdge EngineID = "edge"
	// EngineGTTS is the Google Translate batch voice service.
	EngineGTTS EngineID = "gtts"
	// EngineCoqui covers locally hosted Coqui models, including XTTS
	// voice cloning.
	EngineCoqui EngineID = "coqui"
	// EnginePiper covers locally hosted Piper voice models.
	EnginePiper EngineID = "piper"
)

// Capabilities describes what an engine can do.
type Capabilities struct {
	Streaming    bool // audio arrives as a stream of chunks
	VoiceCloning bool // can condition on reference audio
	MultiSpeaker bool // exposes more than one speaker per model
	Multilingual bool // supports more than one language
}

// EngineInfo describes one engine as offered to callers. Availability is
// resolved once at process start and never changes afterwards.
type EngineInfo struct {
	ID           EngineID
	Name         string
	Available    bool
	Capabilities Capabilities
	Languages    []string // language codes the engine accepts, nil if open-ended
}

// Request carries one synthesis invocation. Each engine consumes only the
// subset of parameters it supports and ignores the rest.
type Request struct {
	Text   string
	Engine EngineID

	// Voice/model selection.
	Voice     string // streaming-network voice short name
	Model     string // local multi-model key
	Language  string // language code for language-addressed engines
	SpeakerID string // speaker within a multi-speaker model

	// Numeric tuning.
	RatePct    int     // rate offset in percent, 0 = neutral
	PitchHz    int     // pitch offset in Hz, 0 = neutral
	VolumePct  int     // volume percentage, 100 = neutral
	Speed      float64 // local-model length scale, 1.0 = neutral
	Slow       bool    // batch-network slow mode
	TLD        string  // batch-network regional accent, top-level-domain style
	SampleRate int     // requested output sample rate for waveform engines

	// Expressiveness controls for cloning-capable backends.
	Stability         float64
	Clarity           float64
	StyleExaggeration float64

	// ReferenceAudio is an optional recording for voice cloning.
	ReferenceAudio []byte
}

// Result is the outcome of a successful synthesis. Data is never empty.
type Result struct {
	Data     []byte
	MimeType string
	Ext      string
}

// DataURL encodes the audio as a single embeddable data object, suitable for
// a download link or an <audio> element.
func (r *Result) DataURL() string {
	return "data:" + r.MimeType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
