package tts

// DefaultChunkLimit keeps each downstream call safely under the 5000-character
// limit enforced by the translation service.
const DefaultChunkLimit = 4500

// Chunk splits text into contiguous pieces of at most limit characters by raw
// character position. The limit counts runes, not bytes, so multi-byte text is
// never cut mid-character. No word or sentence boundary awareness: a chunk may
// end mid-word. Text at or under the limit comes back as a single piece.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/limit+1)
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
