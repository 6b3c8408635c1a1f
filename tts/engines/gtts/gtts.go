// Package gtts implements the batch-network synthesis adapter against the
// Google Translate voice endpoint. There is no voice or gender selection:
// one voice per language and regional accent.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/artiphoria-hub/text2audio/tts"
)

// maxTextLength is the service's hard request limit.
const maxTextLength = 5000

// Engine is the batch-network adapter.
type Engine struct {
	cfg     tts.GTTSConfig
	baseURL string // overrides the per-TLD host when set (tests)
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseURL pins all requests to one base URL instead of the per-TLD host.
func WithBaseURL(u string) Option {
	return func(e *Engine) { e.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.client = c }
}

// New creates the adapter. Requests are rate limited to avoid being blocked
// by the service.
func New(cfg tts.GTTSConfig, logger *log.Logger, opts ...Option) *Engine {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 50
	}
	if cfg.TLD == "" {
		cfg.TLD = "com"
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:  logger.WithPrefix("gtts"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Info implements tts.Engine.
func (e *Engine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		ID:        tts.EngineGTTS,
		Name:      "Google Translate voice",
		Available: true,
		Capabilities: tts.Capabilities{
			Multilingual: true,
		},
	}
}

// Validate implements tts.Engine. The service is addressed by language, not
// by voice.
func (e *Engine) Validate(req tts.Request) error {
	if req.Language == "" && e.cfg.Language == "" {
		return tts.ErrMissingLanguage
	}
	if n := utf8.RuneCountInString(req.Text); n > maxTextLength {
		return tts.NewSynthesisError(tts.EngineGTTS, "validate",
			fmt.Errorf("text too long: %d characters (max %d)", n, maxTextLength))
	}
	return nil
}

// Synthesize implements tts.Engine with a single synchronous call.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "rate limit", err)
	}

	lang := req.Language
	if lang == "" {
		lang = e.cfg.Language
	}
	tld := req.TLD
	if tld == "" {
		tld = e.cfg.TLD
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", req.Text)
	if req.Slow || e.cfg.Slow {
		q.Set("ttsspeed", "0.3")
	}

	base := e.baseURL
	if base == "" {
		base = fmt.Sprintf("https://translate.google.%s/translate_tts", tld)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "request", err)
	}
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "request", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "request",
			fmt.Errorf("service returned HTTP %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "read", err)
	}
	if len(data) == 0 {
		return nil, tts.NewSynthesisError(tts.EngineGTTS, "read", tts.ErrEmptyAudio)
	}

	e.logger.Debug("batch call complete", "lang", lang, "tld", tld, "bytes", len(data))
	return &tts.Result{Data: data, MimeType: "audio/mpeg", Ext: "mp3"}, nil
}
