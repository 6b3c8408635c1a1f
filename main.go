// Package main provides the text2audio command line interface.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/artiphoria-hub/text2audio/internal/player"
	"github.com/artiphoria-hub/text2audio/internal/tempfile"
	"github.com/artiphoria-hub/text2audio/tts"
	"github.com/artiphoria-hub/text2audio/tts/catalog"
	"github.com/artiphoria-hub/text2audio/tts/engines/coqui"
	"github.com/artiphoria-hub/text2audio/tts/engines/edge"
	"github.com/artiphoria-hub/text2audio/tts/engines/gtts"
	"github.com/artiphoria-hub/text2audio/tts/engines/piper"
	"github.com/artiphoria-hub/text2audio/tts/translate"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	engineName  string
	voiceName   string
	modelName   string
	langCode    string
	translateTo string
	speakerID   string
	outputFile  string
	playAudio   bool
	dataURL     bool
	showText    bool
	slowMode    bool
	accentTLD   string
	ratePct     int
	pitchHz     int
	volumePct   int
	sampleRate  int
	refAudio    string

	rootCmd = &cobra.Command{
		Use:   "text2audio [FILE]",
		Short: "Turn text into speech, with any voice you like",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into speech, %s. Reads from a file, an argument, or stdin, optionally translates first, and synthesizes with the engine of your choice.", keyword("with any voice you like")),
		),
		Example:          "  text2audio story.txt -o story.mp3\n  echo 'hola mundo' | text2audio -e gtts -l es --play\n  text2audio story.txt -t fr --voice fr-FR-DeniseNeural -o conte.mp3",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("engine") {
		engineName = viper.GetString("engine")
	}

	if outputFile != "" && dataURL {
		return errors.New("cannot use both --output and --data-url")
	}
	if translateTo != "" {
		if _, err := language.Parse(translateTo); err != nil {
			return fmt.Errorf("%q is not a language code: %w", translateTo, err)
		}
	}
	return nil
}

// readText resolves the input text: an explicit file argument, "-", or piped
// stdin.
func readText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("unable to read input: %w", err)
		}
		return string(b), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("unable to stat stdin: %w", err)
	}
	isPipe := stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0
	if !isPipe && len(args) == 0 {
		return "", errors.New("no input: pass a file, or pipe text on stdin")
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	return string(b), nil
}

// buildRegistry constructs every engine adapter and the registry in front of
// them.
func buildRegistry(cfg tts.Config, logger *log.Logger) (*tts.Registry, *tempfile.Manager, error) {
	tmp, err := tempfile.NewManager(cfg.TempDir)
	if err != nil {
		return nil, nil, err
	}
	reg := tts.NewRegistry(logger,
		edge.New(cfg.Edge, tmp, logger),
		gtts.New(cfg.GTTS, logger),
		coqui.New(cfg.Coqui, tmp, logger),
		piper.New(cfg.Piper, tmp, logger),
	)
	return reg, tmp, nil
}

// catalogCacheFile resolves the default voice catalog cache location.
func catalogCacheFile(cfg tts.Config) string {
	if cfg.Catalog.CacheFile != "" {
		return cfg.Catalog.CacheFile
	}
	scope := gap.NewScope(gap.User, "text2audio")
	path, err := scope.DataPath("voices.json.zst")
	if err != nil {
		return filepath.Join(os.TempDir(), "text2audio-voices.json.zst")
	}
	return path
}

// pickVoice chooses a streaming voice for a language when the user did not
// name one.
func pickVoice(ctx context.Context, cfg tts.Config, lang string, logger *log.Logger) string {
	store := catalog.NewStore(catalogCacheFile(cfg), logger)
	voices := store.Load(ctx)
	subset, _ := catalog.Filter(voices, lang, "")
	if len(subset) == 0 {
		return ""
	}
	return subset[0].ShortName
}

func execute(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.Default()

	text, err := readText(args)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return tts.ErrEmptyText
	}

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		fmt.Fprintln(os.Stderr, subtle(fmt.Sprintf("%s characters",
			humanize.Comma(int64(utf8.RuneCountInString(text))))))
	}

	if translateTo != "" {
		tr := translate.New(cfg.Translate.ChunkLimit, logger)
		translated, err := tr.Translate(ctx, text, translateTo)
		if err != nil {
			return err
		}
		text = translated
		if showText {
			fmt.Fprintln(os.Stderr, translated)
		}
		if langCode == "" {
			langCode = translateTo
		}
	}

	reg, _, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	engineID := tts.EngineID(engineName)
	if engineName == "" {
		engineID = tts.EngineID(cfg.Engine)
	}

	// A translated request without an explicit voice gets the first
	// catalog voice matching the target language.
	voice := voiceName
	if engineID == tts.EngineEdge && voice == "" && cfg.Edge.Voice == "" && langCode != "" {
		voice = pickVoice(ctx, cfg, langCode, logger)
	}

	req := tts.Request{
		Text:       text,
		Engine:     engineID,
		Voice:      voice,
		Model:      modelName,
		Language:   langCode,
		SpeakerID:  speakerID,
		RatePct:    ratePct,
		PitchHz:    pitchHz,
		VolumePct:  volumePct,
		Slow:       slowMode,
		TLD:        accentTLD,
		SampleRate: sampleRate,
	}
	if refAudio != "" {
		clip, err := os.ReadFile(refAudio)
		if err != nil {
			return fmt.Errorf("unable to read reference audio: %w", err)
		}
		req.ReferenceAudio = clip
	}

	res, err := reg.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	return deliver(res, interactive)
}

// deliver routes the synthesized audio to the selected destination.
func deliver(res *tts.Result, interactive bool) error {
	switch {
	case dataURL:
		fmt.Println(res.DataURL())
		return nil
	case outputFile != "":
		name := outputFile
		if filepath.Ext(name) == "" {
			name += "." + res.Ext
		}
		if err := os.WriteFile(name, res.Data, 0o644); err != nil {
			return fmt.Errorf("unable to write audio: %w", err)
		}
		fmt.Fprintln(os.Stderr, subtle(fmt.Sprintf("wrote %s (%s)",
			name, humanize.Bytes(uint64(len(res.Data))))))
		if playAudio {
			return player.Play(res.Data, res.MimeType)
		}
		return nil
	case playAudio:
		return player.Play(res.Data, res.MimeType)
	case interactive:
		return errors.New("refusing to write audio to a terminal: use --output, --play or --data-url")
	default:
		if _, err := os.Stdout.Write(res.Data); err != nil {
			return fmt.Errorf("unable to write audio: %w", err)
		}
		return nil
	}
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "synthesis engine (edge/gtts/coqui/piper)")
	rootCmd.Flags().StringVar(&voiceName, "voice", "", "voice short name (edge)")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "model name (coqui)")
	rootCmd.Flags().StringVarP(&langCode, "language", "l", "", "language code (gtts/coqui/piper)")
	rootCmd.Flags().StringVarP(&translateTo, "translate", "t", "", "translate to this language before synthesis")
	rootCmd.Flags().StringVar(&speakerID, "speaker", "", "speaker within a multi-speaker model")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write audio to this file")
	rootCmd.Flags().BoolVar(&playAudio, "play", false, "play the audio on the local sound device")
	rootCmd.Flags().BoolVar(&dataURL, "data-url", false, "print the audio as a base64 data URL")
	rootCmd.Flags().BoolVar(&showText, "show-text", false, "echo the translated text before synthesis")
	rootCmd.Flags().BoolVar(&slowMode, "slow", false, "slow speech (gtts)")
	rootCmd.Flags().StringVar(&accentTLD, "tld", "", "regional accent domain, e.g. co.uk (gtts)")
	rootCmd.Flags().IntVar(&ratePct, "rate", 0, "rate offset in percent (edge)")
	rootCmd.Flags().IntVar(&pitchHz, "pitch", 0, "pitch offset in Hz (edge)")
	rootCmd.Flags().IntVar(&volumePct, "volume", 100, "volume percentage (edge)")
	rootCmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "output sample rate (piper)")
	rootCmd.Flags().StringVar(&refAudio, "ref-audio", "", "reference recording for voice cloning (coqui)")

	rootCmd.AddCommand(voicesCmd, enginesCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "text2audio")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "text2audio")}, dirs...)
	}

	if c := os.Getenv("TEXT2AUDIO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("text2audio")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("text2audio")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "text2audio.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
