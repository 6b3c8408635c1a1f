package tts

import (
	"fmt"
	"time"
)

// Config contains all synthesis configuration options.
type Config struct {
	// Engine is the default engine when a request does not name one.
	Engine string `yaml:"engine" env:"TEXT2AUDIO_ENGINE" envDefault:"edge"`

	// TempDir holds every ephemeral file written by the adapters.
	// Empty means the system temp directory.
	TempDir string `yaml:"temp_dir" env:"TEXT2AUDIO_TEMP_DIR"`

	// Engine-specific configurations.
	Edge      EdgeConfig      `yaml:"edge"`
	GTTS      GTTSConfig      `yaml:"gtts"`
	Coqui     CoquiConfig     `yaml:"coqui"`
	Piper     PiperConfig     `yaml:"piper"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Translate TranslateConfig `yaml:"translate"`
}

// EdgeConfig contains streaming-network engine settings.
type EdgeConfig struct {
	Voice     string `yaml:"voice" env:"TEXT2AUDIO_EDGE_VOICE"`
	RatePct   int    `yaml:"rate" env:"TEXT2AUDIO_EDGE_RATE" envDefault:"0"`
	PitchHz   int    `yaml:"pitch" env:"TEXT2AUDIO_EDGE_PITCH" envDefault:"0"`
	VolumePct int    `yaml:"volume" env:"TEXT2AUDIO_EDGE_VOLUME" envDefault:"100"`
}

// GTTSConfig contains batch-network engine settings.
type GTTSConfig struct {
	Language          string `yaml:"language" env:"TEXT2AUDIO_GTTS_LANGUAGE" envDefault:"en"`
	TLD               string `yaml:"tld" env:"TEXT2AUDIO_GTTS_TLD" envDefault:"com"`
	Slow              bool   `yaml:"slow" env:"TEXT2AUDIO_GTTS_SLOW" envDefault:"false"`
	RequestsPerMinute int    `yaml:"requests_per_minute" env:"TEXT2AUDIO_GTTS_RPM" envDefault:"50"`
}

// CoquiConfig contains local multi-model neural engine settings.
type CoquiConfig struct {
	ServerBinary   string        `yaml:"server_binary" env:"TEXT2AUDIO_COQUI_SERVER" envDefault:"tts-server"`
	Model          string        `yaml:"model" env:"TEXT2AUDIO_COQUI_MODEL" envDefault:"tts_models/multilingual/multi-dataset/xtts_v2"`
	StartupTimeout time.Duration `yaml:"startup_timeout" env:"TEXT2AUDIO_COQUI_STARTUP_TIMEOUT" envDefault:"120s"`
	BasePort       int           `yaml:"base_port" env:"TEXT2AUDIO_COQUI_BASE_PORT" envDefault:"5002"`
}

// PiperConfig contains local lightweight neural engine settings.
type PiperConfig struct {
	Binary     string `yaml:"binary" env:"TEXT2AUDIO_PIPER_BINARY" envDefault:"piper"`
	ModelDir   string `yaml:"model_dir" env:"TEXT2AUDIO_PIPER_MODEL_DIR"`
	SampleRate int    `yaml:"sample_rate" env:"TEXT2AUDIO_PIPER_SAMPLE_RATE" envDefault:"22050"`
	SpeakerID  int    `yaml:"speaker_id" env:"TEXT2AUDIO_PIPER_SPEAKER_ID" envDefault:"0"`
}

// CatalogConfig controls the voice catalog store.
type CatalogConfig struct {
	// CacheFile overrides the default cache location.
	CacheFile string `yaml:"cache_file" env:"TEXT2AUDIO_CATALOG_CACHE_FILE"`
}

// TranslateConfig controls the translation adapter.
type TranslateConfig struct {
	ChunkLimit int `yaml:"chunk_limit" env:"TEXT2AUDIO_TRANSLATE_CHUNK_LIMIT" envDefault:"4500"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Engine: string(EngineEdge),
		Edge:   EdgeConfig{VolumePct: 100},
		GTTS: GTTSConfig{
			Language:          "en",
			TLD:               "com",
			RequestsPerMinute: 50,
		},
		Coqui: CoquiConfig{
			ServerBinary:   "tts-server",
			Model:          "tts_models/multilingual/multi-dataset/xtts_v2",
			StartupTimeout: 120 * time.Second,
			BasePort:       5002,
		},
		Piper: PiperConfig{
			Binary:     "piper",
			SampleRate: 22050,
		},
		Translate: TranslateConfig{ChunkLimit: DefaultChunkLimit},
	}
}

// Validate checks the configuration for values no engine can work with.
func (c Config) Validate() error {
	switch EngineID(c.Engine) {
	case EngineEdge, EngineGTTS, EngineCoqui, EnginePiper:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	if c.GTTS.RequestsPerMinute < 1 {
		return fmt.Errorf("gtts requests_per_minute must be positive, got %d", c.GTTS.RequestsPerMinute)
	}
	if c.Piper.SampleRate < 8000 || c.Piper.SampleRate > 192000 {
		return fmt.Errorf("piper sample_rate must be between 8000 and 192000, got %d", c.Piper.SampleRate)
	}
	if c.Translate.ChunkLimit < 1 {
		return fmt.Errorf("translate chunk_limit must be positive, got %d", c.Translate.ChunkLimit)
	}
	if c.Coqui.BasePort < 1 || c.Coqui.BasePort > 65535 {
		return fmt.Errorf("coqui base_port out of range: %d", c.Coqui.BasePort)
	}
	return nil
}
