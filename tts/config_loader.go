package tts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads synthesis configuration: defaults, then
// environment variables, then any values set in Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if viper.IsSet("engine") {
		cfg.Engine = viper.GetString("engine")
	}
	if viper.IsSet("temp_dir") {
		cfg.TempDir = viper.GetString("temp_dir")
	}

	// Streaming-network engine
	if viper.IsSet("edge.voice") {
		cfg.Edge.Voice = viper.GetString("edge.voice")
	}
	if viper.IsSet("edge.rate") {
		cfg.Edge.RatePct = viper.GetInt("edge.rate")
	}
	if viper.IsSet("edge.pitch") {
		cfg.Edge.PitchHz = viper.GetInt("edge.pitch")
	}
	if viper.IsSet("edge.volume") {
		cfg.Edge.VolumePct = viper.GetInt("edge.volume")
	}

	// Batch-network engine
	if viper.IsSet("gtts.language") {
		cfg.GTTS.Language = viper.GetString("gtts.language")
	}
	if viper.IsSet("gtts.tld") {
		cfg.GTTS.TLD = viper.GetString("gtts.tld")
	}
	if viper.IsSet("gtts.slow") {
		cfg.GTTS.Slow = viper.GetBool("gtts.slow")
	}
	if viper.IsSet("gtts.requests_per_minute") {
		cfg.GTTS.RequestsPerMinute = viper.GetInt("gtts.requests_per_minute")
	}

	// Local multi-model engine
	if viper.IsSet("coqui.server_binary") {
		cfg.Coqui.ServerBinary = viper.GetString("coqui.server_binary")
	}
	if viper.IsSet("coqui.model") {
		cfg.Coqui.Model = viper.GetString("coqui.model")
	}
	if viper.IsSet("coqui.startup_timeout") {
		cfg.Coqui.StartupTimeout = viper.GetDuration("coqui.startup_timeout")
	}
	if viper.IsSet("coqui.base_port") {
		cfg.Coqui.BasePort = viper.GetInt("coqui.base_port")
	}

	// Local lightweight engine
	if viper.IsSet("piper.binary") {
		cfg.Piper.Binary = viper.GetString("piper.binary")
	}
	if viper.IsSet("piper.model_dir") {
		cfg.Piper.ModelDir = viper.GetString("piper.model_dir")
	}
	if viper.IsSet("piper.sample_rate") {
		cfg.Piper.SampleRate = viper.GetInt("piper.sample_rate")
	}
	if viper.IsSet("piper.speaker_id") {
		cfg.Piper.SpeakerID = viper.GetInt("piper.speaker_id")
	}

	if viper.IsSet("catalog.cache_file") {
		cfg.Catalog.CacheFile = viper.GetString("catalog.cache_file")
	}
	if viper.IsSet("translate.chunk_limit") {
		cfg.Translate.ChunkLimit = viper.GetInt("translate.chunk_limit")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
