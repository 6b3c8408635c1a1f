// Package coqui implements the local multi-model neural adapter. Each model
// is served by its own long lived tts-server subprocess; handles are built
// once per model key and reused across requests.
package coqui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
)

// Engine is the multi-model neural adapter.
type Engine struct {
	cfg    tts.CoquiConfig
	tmp    *tempfile.Manager
	logger *log.Logger

	mu       sync.Mutex
	handles  map[string]*ModelHandle
	nextPort int
	group    singleflight.Group

	client *http.Client

	// newHandle builds a ModelHandle for a model name. Tests swap it out.
	newHandle func(ctx context.Context, model string, port int) (*ModelHandle, error)
}

// New creates the adapter. Handles are constructed lazily on first use of a
// model.
func New(cfg tts.CoquiConfig, tmp *tempfile.Manager, logger *log.Logger) *Engine {
	if cfg.ServerBinary == "" {
		cfg.ServerBinary = "tts-server"
	}
	if cfg.BasePort <= 0 {
		cfg.BasePort = 5002
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		cfg:      cfg,
		tmp:      tmp,
		logger:   logger.WithPrefix("coqui"),
		handles:  make(map[string]*ModelHandle),
		nextPort: cfg.BasePort,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
	e.newHandle = e.startServer
	return e
}

// Info implements tts.Engine. Availability follows the server binary being
// on PATH.
func (e *Engine) Info() tts.EngineInfo {
	_, err := exec.LookPath(e.cfg.ServerBinary)
	return tts.EngineInfo{
		ID:        tts.EngineCoqui,
		Name:      "Coqui neural models",
		Available: err == nil,
		Capabilities: tts.Capabilities{
			VoiceCloning: true,
			MultiSpeaker: true,
			Multilingual: true,
		},
	}
}

// Validate implements tts.Engine.
func (e *Engine) Validate(req tts.Request) error {
	if req.Model == "" && e.cfg.Model == "" {
		return tts.ErrMissingModel
	}
	model := req.Model
	if model == "" {
		model = e.cfg.Model
	}
	if req.SpeakerID != "" {
		roster := modelSpeakers[model]
		if len(roster) > 0 && !containsSpeaker(roster, req.SpeakerID) {
			return fmt.Errorf("%w: %q not offered by %s", tts.ErrUnknownSpeaker, req.SpeakerID, model)
		}
	}
	return nil
}

// Synthesize implements tts.Engine.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	model := req.Model
	if model == "" {
		model = e.cfg.Model
	}

	handle, err := e.handle(ctx, model)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineCoqui, "load model", err)
	}

	speaker := req.SpeakerID
	if speaker == "" {
		if roster := modelSpeakers[model]; len(roster) > 0 {
			speaker = roster[0]
		}
	}

	var styleWav string
	if len(req.ReferenceAudio) > 0 {
		if !supportsCloning(model) {
			// The model cannot consume the reference clip. Fall back to its
			// stock roster rather than failing the request.
			e.logger.Warn("model does not support voice cloning, using stock voice", "model", model)
		} else {
			f, err := e.tmp.New("wav")
			if err != nil {
				return nil, tts.NewSynthesisError(tts.EngineCoqui, "reference audio", err)
			}
			defer f.Release() //nolint:errcheck
			if err := os.WriteFile(f.Path, req.ReferenceAudio, 0o644); err != nil {
				return nil, tts.NewSynthesisError(tts.EngineCoqui, "reference audio", err)
			}
			styleWav = f.Path
		}
	}

	data, err := handle.Speak(ctx, e.client, req.Text, speaker, req.Language, styleWav)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineCoqui, "synthesize", err)
	}
	if len(data) == 0 {
		return nil, tts.NewSynthesisError(tts.EngineCoqui, "synthesize", tts.ErrEmptyAudio)
	}

	e.logger.Debug("synthesis complete", "model", model, "speaker", speaker, "bytes", len(data))
	return &tts.Result{Data: data, MimeType: "audio/wav", Ext: "wav"}, nil
}

// handle returns the live handle for a model, building it at most once even
// under concurrent first use.
func (e *Engine) handle(ctx context.Context, model string) (*ModelHandle, error) {
	e.mu.Lock()
	if h, ok := e.handles[model]; ok {
		e.mu.Unlock()
		return h, nil
	}
	e.mu.Unlock()

	v, err, _ := e.group.Do(model, func() (interface{}, error) {
		e.mu.Lock()
		if h, ok := e.handles[model]; ok {
			e.mu.Unlock()
			return h, nil
		}
		// Only the winning call reaches this point, so ports are consumed
		// one per server actually started.
		port := e.nextPort
		e.nextPort++
		e.mu.Unlock()

		e.logger.Info("loading model", "model", model, "port", port)
		h, err := e.newHandle(ctx, model, port)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.handles[model] = h
		e.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelHandle), nil
}

// Evict shuts down and forgets the handle for one model. Retention is
// otherwise unbounded; this is the hook a memory-bounded policy would call.
func (e *Engine) Evict(model string) error {
	e.mu.Lock()
	h, ok := e.handles[model]
	if ok {
		delete(e.handles, model)
	}
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return h.Close()
}

// Close shuts down all live model servers.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for name, h := range e.handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(e.handles, name)
	}
	return firstErr
}

// ModelHandle is a running tts-server instance bound to one model.
type ModelHandle struct {
	Model   string
	BaseURL string

	cmd  *exec.Cmd
	once sync.Once
}

// startServer launches tts-server for a model and waits for it to accept
// requests.
func (e *Engine) startServer(ctx context.Context, model string, port int) (*ModelHandle, error) {
	cmd := exec.Command(e.cfg.ServerBinary,
		"--model_name", model,
		"--port", strconv.Itoa(port),
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", e.cfg.ServerBinary, err)
	}

	h := &ModelHandle{
		Model:   model,
		BaseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		cmd:     cmd,
	}

	deadline := time.Now().Add(e.cfg.StartupTimeout)
	for {
		if time.Now().After(deadline) {
			_ = h.Close()
			return nil, fmt.Errorf("model %s did not become ready within %s", model, e.cfg.StartupTimeout)
		}
		select {
		case <-ctx.Done():
			_ = h.Close()
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
		resp, err := e.client.Get(h.BaseURL + "/")
		if err != nil {
			continue
		}
		resp.Body.Close() //nolint:errcheck
		return h, nil
	}
}

// Speak performs one synthesis call against the model server.
func (h *ModelHandle) Speak(ctx context.Context, client *http.Client, text, speaker, language, styleWav string) ([]byte, error) {
	q := url.Values{}
	q.Set("text", text)
	if speaker != "" {
		q.Set("speaker_id", speaker)
	}
	if language != "" {
		q.Set("language_id", language)
	}
	if styleWav != "" {
		q.Set("style_wav", styleWav)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/api/tts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Close terminates the model server process. Safe to call more than once.
func (h *ModelHandle) Close() error {
	var err error
	h.once.Do(func() {
		if h.cmd != nil && h.cmd.Process != nil {
			err = h.cmd.Process.Kill()
			_ = h.cmd.Wait()
		}
	})
	return err
}

func containsSpeaker(roster []string, id string) bool {
	for _, s := range roster {
		if s == id {
			return true
		}
	}
	return false
}
