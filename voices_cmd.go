package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/artiphoria-hub/text2audio/tts"
	"github.com/artiphoria-hub/text2audio/tts/catalog"
)

var (
	voiceLocale      string
	voicePersonality string

	voiceNameColStyle = lipgloss.NewStyle().Bold(true)

	voicesCmd = &cobra.Command{
		Use:     "voices [QUERY]",
		Short:   "List the streaming voice directory",
		Long:    paragraph(fmt.Sprintf("\n%s the streaming voice directory, filtered by locale or personality, or fuzzy-searched by name.", keyword("List"))),
		Example: "  text2audio voices --locale fr\n  text2audio voices --locale en --personality Cheerful\n  text2audio voices jenny",
		Args:    cobra.MaximumNArgs(1),
		RunE:    listVoices,
	}
)

func listVoices(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := log.Default()

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	store := catalog.NewStore(catalogCacheFile(cfg), logger)
	voices := store.Load(ctx)
	if len(voices) == 0 {
		return fmt.Errorf("the voice directory is empty or unreachable")
	}

	if len(args) == 1 {
		voices = catalog.Search(voices, args[0])
	}

	subset, fellBack := catalog.Filter(voices, voiceLocale, voicePersonality)
	if fellBack {
		fmt.Fprintln(os.Stderr, subtle(fmt.Sprintf(
			"no %s voice has the %q personality, showing all %s voices",
			voiceLocale, voicePersonality, voiceLocale)))
	}
	if len(subset) == 0 {
		return fmt.Errorf("no voices match")
	}

	for _, v := range subset {
		fmt.Printf("%s  %s%s\n",
			voiceNameColStyle.Render(v.ShortName),
			localeName(v.Locale),
			personalitySuffix(v))
	}
	return nil
}

// localeName renders a locale code with its human readable language name.
func localeName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return fmt.Sprintf("%s (%s)", display.English.Tags().Name(tag), locale)
}

func personalitySuffix(v catalog.Voice) string {
	if len(v.Personalities()) == 0 {
		return ""
	}
	out := ""
	for i, p := range v.Personalities() {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return subtle("  " + out)
}

func init() {
	voicesCmd.Flags().StringVar(&voiceLocale, "locale", "", "locale prefix, e.g. en or en-GB")
	voicesCmd.Flags().StringVar(&voicePersonality, "personality", "", "voice personality tag, e.g. Cheerful")
}
