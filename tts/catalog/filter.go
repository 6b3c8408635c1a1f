package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filter narrows a catalog to entries whose Locale starts with localePrefix
// (case-sensitive), preserving catalog order. A non-empty personality tag
// narrows further; if that leaves nothing, the locale-only subset is returned
// and fellBack is true so the caller can surface the fallback instead of
// silently hiding it.
func Filter(voices []Voice, localePrefix, personality string) (subset []Voice, fellBack bool) {
	byLocale := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(v.Locale, localePrefix) {
			byLocale = append(byLocale, v)
		}
	}
	if personality == "" {
		return byLocale, false
	}

	byPersonality := make([]Voice, 0, len(byLocale))
	for _, v := range byLocale {
		if v.HasPersonality(personality) {
			byPersonality = append(byPersonality, v)
		}
	}
	if len(byPersonality) == 0 && len(byLocale) > 0 {
		return byLocale, true
	}
	return byPersonality, false
}

// friendlyNames adapts a voice slice to fuzzy.Source.
type friendlyNames []Voice

func (f friendlyNames) String(i int) string { return f[i].FriendlyName }
func (f friendlyNames) Len() int            { return len(f) }

// Search fuzzy-matches voices by friendly name, best matches first. An empty
// query returns the input unchanged.
func Search(voices []Voice, query string) []Voice {
	if query == "" {
		return voices
	}
	matches := fuzzy.FindFrom(query, friendlyNames(voices))
	out := make([]Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

// FindShortName returns the voice with the given short name.
func FindShortName(voices []Voice, shortName string) (Voice, bool) {
	for _, v := range voices {
		if v.ShortName == shortName {
			return v, true
		}
	}
	return Voice{}, false
}
