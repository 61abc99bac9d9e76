package retrieval

import "strings"

type synonymGroup struct {
	key   string
	words []string
}

// Tokenizer splits text into normalized, stop-word filtered tokens and
// widens them with synonym words.
type Tokenizer struct {
	stopWords map[string]struct{}
	synonyms  []synonymGroup
}

func NewTokenizer(lex Lexicon) *Tokenizer {
	stopWords := make(map[string]struct{}, len(lex.StopWords))
	for _, word := range lex.StopWords {
		if normalized := Normalize(word); normalized != "" {
			stopWords[normalized] = struct{}{}
		}
	}

	synonyms := make([]synonymGroup, 0, len(lex.Synonyms))
	for _, entry := range lex.Synonyms {
		key := Normalize(entry.Key)
		if key == "" {
			continue
		}
		group := synonymGroup{key: key}
		for _, phrase := range entry.Synonyms {
			for _, word := range strings.Fields(phrase) {
				if normalized := Normalize(word); runeLen(normalized) > 1 {
					group.words = append(group.words, normalized)
				}
			}
		}
		synonyms = append(synonyms, group)
	}

	return &Tokenizer{
		stopWords: stopWords,
		synonyms:  synonyms,
	}
}

// Tokenize returns the filtered tokens of text in their original order,
// followed by synonym words in the order they were discovered. Expansion
// runs once over the original tokens only.
func (t *Tokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	if len(words) == 0 {
		return nil
	}

	expanded := make([]string, len(words), len(words)*2)
	copy(expanded, words)
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		seen[word] = struct{}{}
	}

	for _, word := range words {
		for _, group := range t.synonyms {
			if !relatedToKey(word, group.key) {
				continue
			}
			for _, synonym := range group.words {
				if _, ok := seen[synonym]; ok {
					continue
				}
				seen[synonym] = struct{}{}
				expanded = append(expanded, synonym)
			}
		}
	}
	return expanded
}

// Words returns the normalized tokens of text that are longer than one
// character and not stop-words, without synonym expansion.
func (t *Tokenizer) Words(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := fields[:0]
	for _, field := range fields {
		if runeLen(field) <= 1 {
			continue
		}
		if _, stop := t.stopWords[field]; stop {
			continue
		}
		out = append(out, field)
	}
	return out
}

func (t *Tokenizer) IsStopWord(token string) bool {
	_, ok := t.stopWords[token]
	return ok
}

func relatedToKey(word, key string) bool {
	return word == key || strings.Contains(word, key) || strings.Contains(key, word)
}
