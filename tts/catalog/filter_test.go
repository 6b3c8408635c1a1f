package catalog

import "testing"

func testVoices() []Voice {
	return []Voice{
		{ShortName: "en-US-JennyNeural", FriendlyName: "Jenny", Locale: "en-US", Gender: "Female",
			VoiceTag: VoiceTag{VoicePersonalities: []string{"Friendly", "Considerate"}}},
		{ShortName: "en-GB-RyanNeural", FriendlyName: "Ryan", Locale: "en-GB", Gender: "Male",
			VoiceTag: VoiceTag{VoicePersonalities: []string{"Approachable"}}},
		{ShortName: "ar-EG-SalmaNeural", FriendlyName: "Salma", Locale: "ar-EG", Gender: "Female",
			VoiceTag: VoiceTag{VoicePersonalities: []string{"Friendly"}}},
		{ShortName: "fr-FR-DeniseNeural", FriendlyName: "Denise", Locale: "fr-FR", Gender: "Female"},
		{ShortName: "en-AU-NatashaNeural", FriendlyName: "Natasha", Locale: "en-AU", Gender: "Female",
			VoiceTag: VoiceTag{VoicePersonalities: []string{"Warm"}}},
	}
}

func TestFilterByLocalePrefix(t *testing.T) {
	subset, fellBack := Filter(testVoices(), "en", "")
	if fellBack {
		t.Error("locale-only filter must not report a fallback")
	}

	want := []string{"en-US-JennyNeural", "en-GB-RyanNeural", "en-AU-NatashaNeural"}
	if len(subset) != len(want) {
		t.Fatalf("expected %d voices, got %d", len(want), len(subset))
	}
	for i, sn := range want {
		if subset[i].ShortName != sn {
			t.Errorf("position %d: expected %s, got %s (order must match the catalog)",
				i, sn, subset[i].ShortName)
		}
	}
}

func TestFilterIsCaseSensitive(t *testing.T) {
	subset, _ := Filter(testVoices(), "EN", "")
	if len(subset) != 0 {
		t.Errorf("prefix match must be case-sensitive, got %d voices", len(subset))
	}
}

func TestFilterByPersonality(t *testing.T) {
	subset, fellBack := Filter(testVoices(), "en", "Friendly")
	if fellBack {
		t.Error("unexpected fallback")
	}
	if len(subset) != 1 || subset[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("expected only Jenny, got %v", subset)
	}
}

func TestFilterPersonalityFallback(t *testing.T) {
	subset, fellBack := Filter(testVoices(), "en", "Sinister")
	if !fellBack {
		t.Error("expected fallback to be reported")
	}
	if len(subset) != 3 {
		t.Errorf("expected the full locale subset on fallback, got %d voices", len(subset))
	}
}

func TestFilterEmptyLocaleSubset(t *testing.T) {
	subset, fellBack := Filter(testVoices(), "ja", "Friendly")
	if fellBack {
		t.Error("an empty locale subset is not a personality fallback")
	}
	if len(subset) != 0 {
		t.Errorf("expected no voices, got %d", len(subset))
	}
}

func TestSearchByFriendlyName(t *testing.T) {
	voices := Search(testVoices(), "jeny")
	if len(voices) == 0 || voices[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("fuzzy search failed: %v", voices)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	voices := testVoices()
	if got := Search(voices, ""); len(got) != len(voices) {
		t.Errorf("empty query must return everything, got %d", len(got))
	}
}

func TestFindShortName(t *testing.T) {
	v, ok := FindShortName(testVoices(), "ar-EG-SalmaNeural")
	if !ok || v.FriendlyName != "Salma" {
		t.Errorf("FindShortName failed: %v %v", v, ok)
	}
	if _, ok := FindShortName(testVoices(), "missing"); ok {
		t.Error("expected miss for unknown short name")
	}
}
