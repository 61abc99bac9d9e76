package retrieval

import "strings"

// ExtractPhrases returns every contiguous bigram of the normalized text
// followed by every contiguous trigram. Single-character words are skipped.
func ExtractPhrases(normalized string) []string {
	fields := strings.Fields(normalized)
	words := fields[:0]
	for _, field := range fields {
		if runeLen(field) > 1 {
			words = append(words, field)
		}
	}
	if len(words) < 2 {
		return nil
	}

	phrases := make([]string, 0, 2*len(words)-3)
	for i := 0; i+1 < len(words); i++ {
		phrases = append(phrases, words[i]+" "+words[i+1])
	}
	for i := 0; i+2 < len(words); i++ {
		phrases = append(phrases, words[i]+" "+words[i+1]+" "+words[i+2])
	}
	return phrases
}
