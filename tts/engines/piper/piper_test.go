package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/artiphoria-hub/text2audio/internal/pcm"
	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
)

func quietLogger() *log.Logger {
	l := log.Default()
	l.SetLevel(log.FatalLevel)
	return l
}

// writeModel drops a fake weight file and sidecar for a stem into dir.
func writeModel(t *testing.T, dir, stem, sidecar string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, stem+".onnx"), []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".onnx.json"), []byte(sidecar), 0o644); err != nil {
		t.Fatal(err)
	}
}

const multiSpeakerSidecar = `{
	"audio": {"sample_rate": 22050},
	"num_speakers": 3,
	"speaker_id_map": {"amy": 0, "joe": 1, "kim": 2}
}`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeModel(t, dir, languageModels["en"], multiSpeakerSidecar)
	tmp, err := tempfile.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := New(tts.PiperConfig{ModelDir: dir}, tmp, quietLogger())
	e.run = func(ctx context.Context, h *ModelHandle, text, outPath string, speakerID int) error {
		samples := make([]int16, 100)
		for i := range samples {
			samples[i] = int16(i * 50)
		}
		data := pcm.EncodeWAV(samples, h.SampleRate, 1)
		return os.WriteFile(outPath, data, 0o644)
	}
	return e
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "voice", multiSpeakerSidecar)

	h, err := LoadModel(dir, "voice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if h.SampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", h.SampleRate)
	}
	if got := h.Speakers(); !reflect.DeepEqual(got, []string{"amy", "joe", "kim"}) {
		t.Errorf("roster = %v, want id ordering amy joe kim", got)
	}
	if id, ok := h.SpeakerID("kim"); !ok || id != 2 {
		t.Errorf("SpeakerID(kim) = %d, %v", id, ok)
	}
	if _, ok := h.SpeakerID("zed"); ok {
		t.Error("unknown speaker resolved")
	}
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadModel(dir, "missing"); err == nil {
		t.Fatal("expected error for missing weights")
	}

	writeModel(t, dir, "norate", `{"audio": {}}`)
	if _, err := LoadModel(dir, "norate"); err == nil {
		t.Fatal("expected error for sidecar without sample rate")
	}

	writeModel(t, dir, "garbage", `{{{`)
	if _, err := LoadModel(dir, "garbage"); err == nil {
		t.Fatal("expected error for unparseable sidecar")
	}
}

func TestValidate(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Validate(tts.Request{Text: "hi"}); !errors.Is(err, tts.ErrMissingLanguage) {
		t.Fatalf("expected ErrMissingLanguage, got %v", err)
	}
	if err := e.Validate(tts.Request{Text: "hi", Language: "xx"}); err == nil {
		t.Fatal("expected error for unmapped language")
	}
	if err := e.Validate(tts.Request{Text: "hi", Language: "en"}); err != nil {
		t.Fatalf("mapped language rejected: %v", err)
	}
}

func TestSynthesizeNativeRate(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Synthesize(context.Background(), tts.Request{Text: "hi", Language: "en"})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	w, err := pcm.DecodeWAV(res.Data)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if w.SampleRate != 22050 {
		t.Errorf("rate = %d, want the model's native 22050", w.SampleRate)
	}
	if len(w.Samples) != 100 {
		t.Errorf("samples = %d, want 100 untouched", len(w.Samples))
	}
}

func TestSynthesizeRetargetsSampleRate(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Synthesize(context.Background(), tts.Request{
		Text: "hi", Language: "en", SampleRate: 48000,
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	w, err := pcm.DecodeWAV(res.Data)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if w.SampleRate != 48000 {
		t.Errorf("rate = %d, want requested 48000", w.SampleRate)
	}
	// 100 samples at 22050 stretch to ~218 at 48000.
	if len(w.Samples) < 210 || len(w.Samples) > 226 {
		t.Errorf("samples = %d, want ~218 after resampling", len(w.Samples))
	}
}

func TestSynthesizeUnknownSpeaker(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Synthesize(context.Background(), tts.Request{
		Text: "hi", Language: "en", SpeakerID: "zed",
	})
	if !errors.Is(err, tts.ErrUnknownSpeaker) {
		t.Fatalf("expected ErrUnknownSpeaker, got %v", err)
	}
}

func TestModelParsedOncePerLanguage(t *testing.T) {
	e := newTestEngine(t)
	h1, err := e.handle("en")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := e.handle("en")
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("second lookup built a new handle")
	}
}

func TestSpeakersRoster(t *testing.T) {
	e := newTestEngine(t)
	roster, err := e.Speakers("en")
	if err != nil {
		t.Fatalf("speakers: %v", err)
	}
	if !reflect.DeepEqual(roster, []string{"amy", "joe", "kim"}) {
		t.Errorf("roster = %v", roster)
	}
}
