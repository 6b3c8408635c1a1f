// Package piper implements the local lightweight neural adapter. Models are
// small per language voices distributed as an .onnx weight file plus a JSON
// sidecar describing the native sample rate and speaker roster.
package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/artiphoria-hub/text2audio/internal/pcm"
	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
)

// languageModels maps language codes to the model stem expected under the
// model directory: <stem>.onnx and <stem>.onnx.json.
var languageModels = map[string]string{
	"en": "en_US-libritts-high",
	"de": "de_DE-thorsten-high",
	"es": "es_ES-sharvard-medium",
	"fr": "fr_FR-upmc-medium",
	"it": "it_IT-riccardo-x_low",
	"pt": "pt_BR-faber-medium",
	"ru": "ru_RU-irina-medium",
	"zh": "zh_CN-huayan-medium",
}

// Languages returns the language codes with known models, in no particular
// order.
func Languages() []string {
	langs := make([]string, 0, len(languageModels))
	for l := range languageModels {
		langs = append(langs, l)
	}
	return langs
}

// Engine is the lightweight neural adapter.
type Engine struct {
	cfg    tts.PiperConfig
	tmp    *tempfile.Manager
	logger *log.Logger

	mu      sync.Mutex
	handles map[string]*ModelHandle
	group   singleflight.Group

	// run invokes the synthesis binary. Tests swap it out.
	run func(ctx context.Context, h *ModelHandle, text, outPath string, speakerID int) error
}

// New creates the adapter.
func New(cfg tts.PiperConfig, tmp *tempfile.Manager, logger *log.Logger) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		cfg:     cfg,
		tmp:     tmp,
		logger:  logger.WithPrefix("piper"),
		handles: make(map[string]*ModelHandle),
	}
	e.run = e.runBinary
	return e
}

// Info implements tts.Engine. The engine is usable when both the binary and
// the model directory are present.
func (e *Engine) Info() tts.EngineInfo {
	_, binErr := exec.LookPath(e.cfg.Binary)
	_, dirErr := os.Stat(e.cfg.ModelDir)
	langs := Languages()
	return tts.EngineInfo{
		ID:        tts.EnginePiper,
		Name:      "Piper neural voices",
		Available: binErr == nil && dirErr == nil,
		Capabilities: tts.Capabilities{
			MultiSpeaker: true,
		},
		Languages: langs,
	}
}

// Validate implements tts.Engine.
func (e *Engine) Validate(req tts.Request) error {
	lang := req.Language
	if lang == "" {
		return tts.ErrMissingLanguage
	}
	if _, ok := languageModels[lang]; !ok {
		return fmt.Errorf("no model for language %q", lang)
	}
	return nil
}

// Synthesize implements tts.Engine. The model's raw output is resampled and
// requantized when the request asks for a different sample rate than the
// model's native one.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	handle, err := e.handle(req.Language)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EnginePiper, "load model", err)
	}

	speakerID := e.cfg.SpeakerID
	if req.SpeakerID != "" {
		id, ok := handle.SpeakerID(req.SpeakerID)
		if !ok {
			return nil, tts.NewSynthesisError(tts.EnginePiper, "validate",
				fmt.Errorf("%w: %q not in the %s roster", tts.ErrUnknownSpeaker, req.SpeakerID, req.Language))
		}
		speakerID = id
	}

	var data []byte
	err = e.tmp.WithFile("wav", func(path string) error {
		if err := e.run(ctx, handle, req.Text, path, speakerID); err != nil {
			return err
		}
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EnginePiper, "synthesize", err)
	}
	if len(data) == 0 {
		return nil, tts.NewSynthesisError(tts.EnginePiper, "synthesize", tts.ErrEmptyAudio)
	}

	rate := req.SampleRate
	if rate == 0 {
		rate = e.cfg.SampleRate
	}
	if rate != 0 && rate != handle.SampleRate {
		data, err = retarget(data, rate)
		if err != nil {
			return nil, tts.NewSynthesisError(tts.EnginePiper, "resample", err)
		}
	}

	e.logger.Debug("synthesis complete", "lang", req.Language, "model", handle.Stem, "bytes", len(data))
	return &tts.Result{Data: data, MimeType: "audio/wav", Ext: "wav"}, nil
}

// Speakers enumerates the roster for a language. Empty for single speaker
// models.
func (e *Engine) Speakers(language string) ([]string, error) {
	handle, err := e.handle(language)
	if err != nil {
		return nil, err
	}
	return handle.Speakers(), nil
}

// handle returns the parsed model for a language, building it at most once.
func (e *Engine) handle(language string) (*ModelHandle, error) {
	stem, ok := languageModels[language]
	if !ok {
		return nil, fmt.Errorf("no model for language %q", language)
	}

	e.mu.Lock()
	if h, ok := e.handles[language]; ok {
		e.mu.Unlock()
		return h, nil
	}
	e.mu.Unlock()

	v, err, _ := e.group.Do(language, func() (interface{}, error) {
		e.mu.Lock()
		if h, ok := e.handles[language]; ok {
			e.mu.Unlock()
			return h, nil
		}
		e.mu.Unlock()

		h, err := LoadModel(e.cfg.ModelDir, stem)
		if err != nil {
			return nil, err
		}
		e.logger.Info("model loaded", "lang", language, "model", stem, "rate", h.SampleRate)
		e.mu.Lock()
		e.handles[language] = h
		e.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelHandle), nil
}

func (e *Engine) runBinary(ctx context.Context, h *ModelHandle, text, outPath string, speakerID int) error {
	args := []string{
		"--model", h.ModelPath,
		"--config", h.ConfigPath,
		"--output_file", outPath,
	}
	if speakerID > 0 {
		args = append(args, "--speaker", strconv.Itoa(speakerID))
	}
	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", err, lastLine(msg))
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return lines[len(lines)-1]
}

// retarget decodes a PCM16 WAV, resamples it through a float waveform, and
// re-encodes at the requested rate.
func retarget(wavData []byte, rate int) ([]byte, error) {
	w, err := pcm.DecodeWAV(wavData)
	if err != nil {
		return nil, err
	}
	samples := pcm.Resample(pcm.ToFloat(w.Samples), w.SampleRate, rate)
	return pcm.EncodeWAV(pcm.Quantize(samples), rate, w.Channels), nil
}
