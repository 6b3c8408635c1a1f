// Package catalog loads, caches and filters the voice metadata offered by
// the streaming voice directory service.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// DefaultEndpoint is the read-aloud voice directory queried when no cache
// file exists.
const DefaultEndpoint = "https://speech.platform.bing.com/consumer/speech/synthesize/" +
	"readaloud/voices/list?trustedclienttoken=6A5AA1D4EAFF4E9FB37E23D68491D6F4"

// VoiceTag carries the directory's categorical labels for a voice.
type VoiceTag struct {
	ContentCategories  []string `json:"ContentCategories"`
	VoicePersonalities []string `json:"VoicePersonalities"`
}

// Voice is one selectable synthetic voice, immutable once loaded. Identity is
// the ShortName.
type Voice struct {
	ShortName    string   `json:"ShortName"`
	FriendlyName string   `json:"FriendlyName"`
	Gender       string   `json:"Gender"`
	Locale       string   `json:"Locale"`
	VoiceTag     VoiceTag `json:"VoiceTag"`
}

// Personalities returns the voice's personality tags.
func (v Voice) Personalities() []string { return v.VoiceTag.VoicePersonalities }

// HasPersonality reports whether the voice carries the given tag.
func (v Voice) HasPersonality(tag string) bool {
	for _, p := range v.VoiceTag.VoicePersonalities {
		if p == tag {
			return true
		}
	}
	return false
}

// Store loads the voice catalog once per process and serves the memoized
// result afterwards. Loading prefers the local cache file; a miss falls back
// to the directory service and persists the response. Every failure is
// recovered into an empty catalog so callers can still render.
type Store struct {
	cacheFile string
	endpoint  string
	client    *http.Client
	logger    *log.Logger

	once   sync.Once
	voices []Voice
}

// Option configures a Store.
type Option func(*Store)

// WithEndpoint overrides the directory service URL.
func WithEndpoint(url string) Option {
	return func(s *Store) { s.endpoint = url }
}

// WithHTTPClient overrides the HTTP client used for the directory query.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// NewStore creates a catalog store backed by the given cache file.
func NewStore(cacheFile string, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		cacheFile: cacheFile,
		endpoint:  DefaultEndpoint,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger.WithPrefix("catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the catalog in directory order. The first call does the work;
// later calls return the same slice without touching disk or network.
func (s *Store) Load(ctx context.Context) []Voice {
	s.once.Do(func() {
		voices, err := s.load(ctx)
		if err != nil {
			// Soft-fail: the caller keeps running with no voices
			// selectable.
			s.logger.Warn("voice catalog unavailable", "err", err)
			return
		}
		s.voices = voices
		s.logger.Debug("voice catalog loaded", "voices", len(voices))
	})
	return s.voices
}

func (s *Store) load(ctx context.Context) ([]Voice, error) {
	if voices, err := s.readCache(); err == nil {
		return voices, nil
	} else if !os.IsNotExist(err) {
		s.logger.Warn("ignoring unreadable voice cache", "path", s.cacheFile, "err", err)
	}

	voices, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.writeCache(voices); err != nil {
		// Cache persistence is best effort.
		s.logger.Warn("unable to persist voice cache", "path", s.cacheFile, "err", err)
	}
	return voices, nil
}

func (s *Store) fetch(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build directory request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice directory query failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice directory returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory response: %w", err)
	}

	var voices []Voice
	if err := sonic.Unmarshal(body, &voices); err != nil {
		return nil, fmt.Errorf("unable to parse voice directory response: %w", err)
	}
	return dropLocaleless(voices), nil
}

// dropLocaleless enforces the catalog invariant that every entry has a
// locale.
func dropLocaleless(voices []Voice) []Voice {
	out := voices[:0]
	for _, v := range voices {
		if v.Locale != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) readCache() ([]Voice, error) {
	if s.cacheFile == "" {
		return nil, os.ErrNotExist
	}
	compressed, err := os.ReadFile(s.cacheFile)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress voice cache: %w", err)
	}
	var voices []Voice
	if err := sonic.Unmarshal(raw, &voices); err != nil {
		return nil, fmt.Errorf("unable to parse voice cache: %w", err)
	}
	return dropLocaleless(voices), nil
}

func (s *Store) writeCache(voices []Voice) error {
	if s.cacheFile == "" {
		return nil
	}
	raw, err := sonic.Marshal(voices)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(raw, nil)
	if err := enc.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.cacheFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.cacheFile, compressed, 0o644)
}
