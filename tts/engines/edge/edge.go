// Package edge implements the streaming-network synthesis adapter on top of
// the Edge read-aloud voice service. The service is inherently a stream; the
// adapter bridges it into one blocking call by creating a communicator per
// request, draining it to completion and tearing it down. Communicators are
// never shared between requests.
package edge

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
)

// streamer drains one request's stream into a single buffer.
type streamer interface {
	Stream() ([]byte, error)
}

// Engine is the streaming-network adapter.
type Engine struct {
	cfg    tts.EdgeConfig
	tmp    *tempfile.Manager
	logger *log.Logger

	// connect builds the communicator for one request. Swapped out in tests.
	connect func(req tts.Request, voice string) (streamer, error)
}

// New creates the adapter. The service needs no local dependencies, so the
// engine is always available.
func New(cfg tts.EdgeConfig, tmp *tempfile.Manager, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{cfg: cfg, tmp: tmp, logger: logger.WithPrefix("edge")}
	e.connect = func(req tts.Request, voice string) (streamer, error) {
		conn, err := edge_tts.NewCommunicate(
			req.Text,
			edge_tts.SetVoice(voice),
			edge_tts.SetRate(signedPercent(req.RatePct)),
			edge_tts.SetPitch(signedHertz(req.PitchHz)),
			edge_tts.SetVolume(volumeOffset(req.VolumePct)),
		)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return e
}

// Info implements tts.Engine.
func (e *Engine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		ID:        tts.EngineEdge,
		Name:      "Microsoft Edge neural voices",
		Available: true,
		Capabilities: tts.Capabilities{
			Streaming:    true,
			Multilingual: true,
		},
	}
}

// Validate implements tts.Engine. The streaming service is addressed by
// voice short name; a request without one is rejected before dispatch.
func (e *Engine) Validate(req tts.Request) error {
	if req.Voice == "" && e.cfg.Voice == "" {
		return tts.ErrMissingVoice
	}
	return nil
}

// Synthesize implements tts.Engine. The stream is drained into a scoped
// temporary file which is removed on every exit path.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	voice := req.Voice
	if voice == "" {
		voice = e.cfg.Voice
	}

	conn, err := e.connect(req, voice)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineEdge, "connect", err)
	}

	var data []byte
	err = e.tmp.WithFile("mp3", func(path string) error {
		b, err := conn.Stream()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineEdge, "stream", err)
	}
	if len(data) == 0 {
		return nil, tts.NewSynthesisError(tts.EngineEdge, "stream", tts.ErrEmptyAudio)
	}

	e.logger.Debug("stream complete", "voice", voice, "bytes", len(data))
	return &tts.Result{Data: data, MimeType: "audio/mpeg", Ext: "mp3"}, nil
}

// signedPercent renders a rate or generic percentage offset as the service's
// signed string form, e.g. "+0%", "-10%".
func signedPercent(v int) string {
	return fmt.Sprintf("%+d%%", v)
}

// signedHertz renders a pitch offset, e.g. "+0Hz", "-20Hz".
func signedHertz(v int) string {
	return fmt.Sprintf("%+dHz", v)
}

// volumeOffset converts an absolute volume percentage (100 = neutral) into
// the service's offset form: 100 -> "+0%", 50 -> "-50%".
func volumeOffset(pct int) string {
	if pct == 0 {
		pct = 100
	}
	return signedPercent(pct - 100)
}
