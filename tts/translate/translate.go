// Package translate adapts the free translation endpoint for whole or
// chunked text, preserving chunk order.
package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"

	"github.com/artiphoria-hub/text2audio/tts"
)

// DefaultEndpoint is the unauthenticated translation service.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Translator issues translation calls. Source language is always detected by
// the service ("auto").
type Translator struct {
	endpoint   string
	client     *http.Client
	chunkLimit int
	logger     *log.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// New creates a translator with the given chunk limit. A limit of zero means
// tts.DefaultChunkLimit.
func New(chunkLimit int, logger *log.Logger, opts ...Option) *Translator {
	if chunkLimit <= 0 {
		chunkLimit = tts.DefaultChunkLimit
	}
	if logger == nil {
		logger = log.Default()
	}
	t := &Translator{
		endpoint:   DefaultEndpoint,
		client:     &http.Client{Timeout: 30 * time.Second},
		chunkLimit: chunkLimit,
		logger:     logger.WithPrefix("translate"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithEndpoint overrides the translation service URL.
func WithEndpoint(url string) Option {
	return func(t *Translator) { t.endpoint = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Translator) { t.client = c }
}

// Translate converts text into the target language. Text over the chunk
// limit is split, translated chunk by chunk in order and rejoined with single
// spaces. Any chunk failure aborts the whole operation; partial output is
// never returned.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if len(text) <= t.chunkLimit {
		return t.translateOne(ctx, text, targetLang)
	}

	chunks := tts.Chunk(text, t.chunkLimit)
	t.logger.Debug("translating in chunks", "chunks", len(chunks), "target", targetLang)

	translated := make([]string, len(chunks))
	for i, chunk := range chunks {
		out, err := t.translateOne(ctx, chunk, targetLang)
		if err != nil {
			return "", fmt.Errorf("translation failed on chunk %d of %d: %w", i+1, len(chunks), err)
		}
		translated[i] = out
	}
	return strings.Join(translated, " "), nil
}

func (t *Translator) translateOne(ctx context.Context, text, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("unable to build translation request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read translation response: %w", err)
	}
	return decodeResponse(body)
}

// decodeResponse extracts the translated text from the service's nested
// array payload: [[["<translated>","<original>",...], ...], ...].
func decodeResponse(body []byte) (string, error) {
	var payload []interface{}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("unable to parse translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translation response held no text")
	}
	return b.String(), nil
}
