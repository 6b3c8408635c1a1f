package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
)

const directoryJSON = `[
	{"ShortName":"en-US-JennyNeural","FriendlyName":"Jenny","Gender":"Female","Locale":"en-US",
	 "VoiceTag":{"ContentCategories":["Conversation"],"VoicePersonalities":["Friendly","Considerate"]}},
	{"ShortName":"ar-EG-SalmaNeural","FriendlyName":"Salma","Gender":"Female","Locale":"ar-EG",
	 "VoiceTag":{"VoicePersonalities":["Friendly"]}},
	{"ShortName":"broken-no-locale","FriendlyName":"Broken","Gender":"Male","Locale":""}
]`

func quietLogger() *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.FatalLevel)
	return l
}

func TestLoadFetchesAndPersists(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(directoryJSON))
	}))
	defer srv.Close()

	cacheFile := filepath.Join(t.TempDir(), "voices.json.zst")
	s := NewStore(cacheFile, quietLogger(), WithEndpoint(srv.URL))

	voices := s.Load(context.Background())
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices (locale-less entry dropped), got %d", len(voices))
	}
	if voices[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("order not preserved: %v", voices[0])
	}
	if !voices[0].HasPersonality("Friendly") {
		t.Error("personality tags not decoded")
	}
	if _, err := os.Stat(cacheFile); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one directory query, got %d", hits.Load())
	}
}

func TestLoadIsMemoized(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(directoryJSON))
	}))
	defer srv.Close()

	s := NewStore(filepath.Join(t.TempDir(), "voices.json.zst"), quietLogger(), WithEndpoint(srv.URL))

	first := s.Load(context.Background())
	second := s.Load(context.Background())
	if hits.Load() != 1 {
		t.Errorf("expected one directory query across loads, got %d", hits.Load())
	}
	if len(first) != len(second) {
		t.Error("memoized result differs")
	}
}

func TestLoadPrefersCacheFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("directory must not be queried when the cache file exists")
	}))
	defer srv.Close()

	cacheFile := filepath.Join(t.TempDir(), "voices.json.zst")

	// Seed the cache through a first store.
	seed := NewStore(cacheFile, quietLogger())
	if err := seed.writeCache([]Voice{{ShortName: "en-US-JennyNeural", Locale: "en-US"}}); err != nil {
		t.Fatalf("writeCache: %v", err)
	}

	s := NewStore(cacheFile, quietLogger(), WithEndpoint(srv.URL))
	voices := s.Load(context.Background())
	if len(voices) != 1 || voices[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("cache not used: %v", voices)
	}
}

func TestLoadSoftFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStore(filepath.Join(t.TempDir(), "voices.json.zst"), quietLogger(), WithEndpoint(srv.URL))
	if voices := s.Load(context.Background()); len(voices) != 0 {
		t.Errorf("expected empty catalog on failure, got %d voices", len(voices))
	}
}

func TestLoadSoftFailsOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := NewStore(filepath.Join(t.TempDir(), "voices.json.zst"), quietLogger(), WithEndpoint(srv.URL))
	if voices := s.Load(context.Background()); len(voices) != 0 {
		t.Errorf("expected empty catalog on parse failure, got %d voices", len(voices))
	}
}

func TestCorruptCacheFallsBackToDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(directoryJSON))
	}))
	defer srv.Close()

	cacheFile := filepath.Join(t.TempDir(), "voices.json.zst")
	if err := os.WriteFile(cacheFile, []byte("corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(cacheFile, quietLogger(), WithEndpoint(srv.URL))
	if voices := s.Load(context.Background()); len(voices) != 2 {
		t.Errorf("expected fetch fallback past corrupt cache, got %d voices", len(voices))
	}
}
