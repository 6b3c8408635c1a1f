package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/artiphoria-hub/text2audio/tts"
	"github.com/artiphoria-hub/text2audio/tts/engines/coqui"
	"github.com/artiphoria-hub/text2audio/tts/engines/edge"
	"github.com/artiphoria-hub/text2audio/tts/engines/gtts"
	"github.com/artiphoria-hub/text2audio/tts/engines/piper"
)

var (
	availableStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"})
	unavailableStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#ED567A", Dark: "#ED567A"})

	enginesCmd = &cobra.Command{
		Use:   "engines",
		Short: "Show synthesis engines and their capabilities",
		Args:  cobra.NoArgs,
		RunE:  listEngines,
	}
)

func listEngines(*cobra.Command, []string) error {
	logger := log.Default()
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	// Query every adapter directly so unavailable ones still show up,
	// marked as such.
	engines := []tts.Engine{
		edge.New(cfg.Edge, nil, logger),
		gtts.New(cfg.GTTS, logger),
		coqui.New(cfg.Coqui, nil, logger),
		piper.New(cfg.Piper, nil, logger),
	}

	for _, e := range engines {
		info := e.Info()
		mark := availableStyle.Render("●")
		if !info.Available {
			mark = unavailableStyle.Render("○")
		}
		fmt.Printf("%s %-7s %s%s\n", mark, info.ID, info.Name, capabilitySuffix(info.Capabilities))
	}
	return nil
}

func capabilitySuffix(c tts.Capabilities) string {
	var tags []string
	if c.Streaming {
		tags = append(tags, "streaming")
	}
	if c.VoiceCloning {
		tags = append(tags, "cloning")
	}
	if c.MultiSpeaker {
		tags = append(tags, "multi-speaker")
	}
	if c.Multilingual {
		tags = append(tags, "multilingual")
	}
	if len(tags) == 0 {
		return ""
	}
	return subtle("  " + strings.Join(tags, ", "))
}
