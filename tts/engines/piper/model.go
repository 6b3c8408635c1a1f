package piper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bytedance/sonic"
)

// ModelHandle is a parsed model: the weight file path plus the metadata the
// sidecar declares. Constructing one validates that both files exist;
// actual inference happens in the synthesis binary.
type ModelHandle struct {
	Stem       string
	ModelPath  string
	ConfigPath string
	SampleRate int

	speakerIDs map[string]int
}

// modelConfig mirrors the sidecar fields we consume.
type modelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	NumSpeakers  int            `json:"num_speakers"`
	SpeakerIDMap map[string]int `json:"speaker_id_map"`
}

// LoadModel reads and validates the sidecar for a model stem.
func LoadModel(dir, stem string) (*ModelHandle, error) {
	modelPath := filepath.Join(dir, stem+".onnx")
	configPath := modelPath + ".json"

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model weights: %w", err)
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("model config: %w", err)
	}

	var cfg modelConfig
	if err := sonic.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(configPath), err)
	}
	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("%s declares no sample rate", filepath.Base(configPath))
	}

	return &ModelHandle{
		Stem:       stem,
		ModelPath:  modelPath,
		ConfigPath: configPath,
		SampleRate: cfg.Audio.SampleRate,
		speakerIDs: cfg.SpeakerIDMap,
	}, nil
}

// Speakers returns the roster names sorted by their model-internal id.
func (h *ModelHandle) Speakers() []string {
	if len(h.speakerIDs) == 0 {
		return nil
	}
	names := make([]string, 0, len(h.speakerIDs))
	for name := range h.speakerIDs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return h.speakerIDs[names[i]] < h.speakerIDs[names[j]]
	})
	return names
}

// SpeakerID resolves a roster name to the model-internal id.
func (h *ModelHandle) SpeakerID(name string) (int, bool) {
	id, ok := h.speakerIDs[name]
	return id, ok
}
