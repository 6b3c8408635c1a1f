package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# default synthesis engine: edge, gtts, coqui, or piper
engine: "edge"
# directory for ephemeral audio files (empty means the system temp dir)
temp_dir: ""

# Edge streaming voice service
edge:
  # voice short name, e.g. en-US-JennyNeural
  voice: ""
  # rate offset in percent
  rate: 0
  # pitch offset in Hz
  pitch: 0
  # volume percentage
  volume: 100

# Google Translate batch voice service
gtts:
  language: "en"
  # regional accent, top-level-domain style: com, co.uk, com.au, ...
  tld: "com"
  slow: false
  requests_per_minute: 50

# Coqui neural models, served locally
coqui:
  server_binary: "tts-server"
  model: "tts_models/multilingual/multi-dataset/xtts_v2"
  startup_timeout: "120s"
  base_port: 5002

# Piper neural voices, run locally
piper:
  binary: "piper"
  # directory with <model>.onnx and <model>.onnx.json pairs
  model_dir: ""
  sample_rate: 22050
  speaker_id: 0

# voice directory cache
catalog:
  # cache file location (empty means the default data dir)
  cache_file: ""

translate:
  # maximum characters per translation request
  chunk_limit: 4500
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the text2audio config file",
	Long:    paragraph(fmt.Sprintf("\n%s the text2audio config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("text2audio config\ntext2audio config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("text2audio", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
