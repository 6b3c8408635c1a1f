package edge

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
)

// fakeStream satisfies streamer with canned bytes or a canned error.
type fakeStream struct {
	data []byte
	err  error
}

func (f fakeStream) Stream() ([]byte, error) { return f.data, f.err }

// newTestEngine builds an engine whose communicator is stubbed out. The
// returned dir is the temp manager's directory, for cleanup assertions.
func newTestEngine(t *testing.T, s streamer) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	tmp, err := tempfile.NewManager(dir)
	if err != nil {
		t.Fatalf("temp manager: %v", err)
	}
	e := New(tts.EdgeConfig{}, tmp, nil)
	e.connect = func(req tts.Request, voice string) (streamer, error) {
		return s, nil
	}
	return e, dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover temp files, found %d", len(entries))
	}
}

func TestSignedPercent(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "+0%"},
		{25, "+25%"},
		{-50, "-50%"},
	}
	for _, tt := range tests {
		if got := signedPercent(tt.in); got != tt.want {
			t.Errorf("signedPercent(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignedHertz(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "+0Hz"},
		{20, "+20Hz"},
		{-50, "-50Hz"},
	}
	for _, tt := range tests {
		if got := signedHertz(tt.in); got != tt.want {
			t.Errorf("signedHertz(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVolumeOffset(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{100, "+0%"},
		{150, "+50%"},
		{50, "-50%"},
		{0, "+0%"}, // unset request defaults to neutral
	}
	for _, tt := range tests {
		if got := volumeOffset(tt.in); got != tt.want {
			t.Errorf("volumeOffset(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateRequiresVoice(t *testing.T) {
	tmp, _ := tempfile.NewManager(t.TempDir())
	e := New(tts.EdgeConfig{}, tmp, nil)

	if err := e.Validate(tts.Request{Text: "hi"}); !errors.Is(err, tts.ErrMissingVoice) {
		t.Errorf("expected ErrMissingVoice, got %v", err)
	}
	if err := e.Validate(tts.Request{Text: "hi", Voice: "en-US-JennyNeural"}); err != nil {
		t.Errorf("unexpected error with voice set: %v", err)
	}
}

func TestValidateAcceptsConfiguredDefaultVoice(t *testing.T) {
	tmp, _ := tempfile.NewManager(t.TempDir())
	e := New(tts.EdgeConfig{Voice: "en-US-JennyNeural"}, tmp, nil)

	if err := e.Validate(tts.Request{Text: "hi"}); err != nil {
		t.Errorf("configured default voice should satisfy validation: %v", err)
	}
}

func TestSynthesizeReturnsStreamedAudio(t *testing.T) {
	e, dir := newTestEngine(t, fakeStream{data: []byte("mp3bytes")})

	res, err := e.Synthesize(context.Background(), tts.Request{Text: "hi", Voice: "en-US-JennyNeural"})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(res.Data) != "mp3bytes" {
		t.Errorf("unexpected audio: %q", res.Data)
	}
	if res.MimeType != "audio/mpeg" || res.Ext != "mp3" {
		t.Errorf("unexpected result metadata: %+v", res)
	}
	assertDirEmpty(t, dir)
}

func TestSynthesizeCleansUpOnStreamFailure(t *testing.T) {
	e, dir := newTestEngine(t, fakeStream{err: errors.New("websocket closed")})

	_, err := e.Synthesize(context.Background(), tts.Request{Text: "hi", Voice: "en-US-JennyNeural"})
	var serr *tts.SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if serr.Engine != tts.EngineEdge {
		t.Errorf("wrong engine in error: %s", serr.Engine)
	}
	assertDirEmpty(t, dir)
}

func TestSynthesizeEmptyStream(t *testing.T) {
	e, dir := newTestEngine(t, fakeStream{})

	_, err := e.Synthesize(context.Background(), tts.Request{Text: "hi", Voice: "en-US-JennyNeural"})
	if !errors.Is(err, tts.ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestSynthesizeFallsBackToConfiguredVoice(t *testing.T) {
	dir := t.TempDir()
	tmp, err := tempfile.NewManager(dir)
	if err != nil {
		t.Fatalf("temp manager: %v", err)
	}
	e := New(tts.EdgeConfig{Voice: "de-DE-KatjaNeural"}, tmp, nil)

	var gotVoice string
	e.connect = func(req tts.Request, voice string) (streamer, error) {
		gotVoice = voice
		return fakeStream{data: []byte("x")}, nil
	}

	if _, err := e.Synthesize(context.Background(), tts.Request{Text: "hi"}); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if gotVoice != "de-DE-KatjaNeural" {
		t.Errorf("voice = %q, want configured default", gotVoice)
	}
}

func TestInfoCapabilities(t *testing.T) {
	tmp, _ := tempfile.NewManager(t.TempDir())
	info := New(tts.EdgeConfig{}, tmp, nil).Info()

	if info.ID != tts.EngineEdge {
		t.Errorf("wrong id: %s", info.ID)
	}
	if !info.Available {
		t.Error("network engine must always be available")
	}
	if !info.Capabilities.Streaming {
		t.Error("edge is a streaming engine")
	}
	if info.Capabilities.VoiceCloning {
		t.Error("edge does not clone voices")
	}
}
