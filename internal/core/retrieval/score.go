package retrieval

import (
	"math"
	"strings"
)

const (
	// KeywordPenalty multiplies a score once per penalty keyword present in
	// the candidate text but absent from the question.
	KeywordPenalty = 0.5
	// PhraseWeight scales the share of question phrases found in the candidate.
	PhraseWeight       = 2.0
	ExactMatchWeight   = 1.0
	PartialMatchWeight = 0.5
	// partialMatchMinLength is the rune length a word must exceed before it
	// may match as a substring of another word.
	partialMatchMinLength = 2
)

type preparedQuery struct {
	normalized string
	words      []string
	phrases    []string
}

type preparedText struct {
	normalized string
	words      []string
	wordSet    map[string]struct{}
}

// Scorer rates how well a candidate text answers a question. Scores are
// asymmetric: the question drives tokens, phrases and penalties.
type Scorer struct {
	tokenizer       *Tokenizer
	penaltyKeywords []string
}

func NewScorer(tokenizer *Tokenizer, lex Lexicon) *Scorer {
	keywords := make([]string, 0, len(lex.PenaltyKeywords))
	for _, keyword := range lex.PenaltyKeywords {
		if normalized := Normalize(keyword); normalized != "" {
			keywords = append(keywords, normalized)
		}
	}
	return &Scorer{
		tokenizer:       tokenizer,
		penaltyKeywords: keywords,
	}
}

// Score returns a non-negative relevance score of candidate for question.
func (s *Scorer) Score(question, candidate string) float64 {
	return s.score(s.prepareQuery(question), s.prepareText(candidate))
}

func (s *Scorer) prepareQuery(question string) preparedQuery {
	normalized := Normalize(question)
	return preparedQuery{
		normalized: normalized,
		words:      s.tokenizer.Tokenize(question),
		phrases:    ExtractPhrases(normalized),
	}
}

func (s *Scorer) prepareText(text string) preparedText {
	words := s.tokenizer.Tokenize(text)
	wordSet := make(map[string]struct{}, len(words))
	for _, word := range words {
		wordSet[word] = struct{}{}
	}
	return preparedText{
		normalized: Normalize(text),
		words:      words,
		wordSet:    wordSet,
	}
}

func (s *Scorer) score(q preparedQuery, t preparedText) float64 {
	if len(q.words) == 0 {
		return 0
	}
	base := math.Max(phraseScore(q.phrases, t.normalized), wordScore(q.words, t))
	return base * s.penalty(q.normalized, t.normalized)
}

func (s *Scorer) penalty(question, text string) float64 {
	penalty := 1.0
	for _, keyword := range s.penaltyKeywords {
		if strings.Contains(text, keyword) && !strings.Contains(question, keyword) {
			penalty *= KeywordPenalty
		}
	}
	return penalty
}

func phraseScore(phrases []string, text string) float64 {
	if len(phrases) == 0 {
		return 0
	}
	matches := 0
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			matches++
		}
	}
	return float64(matches) / float64(len(phrases)) * PhraseWeight
}

func wordScore(questionWords []string, t preparedText) float64 {
	exact, partial := 0, 0
	for _, word := range questionWords {
		if _, ok := t.wordSet[word]; ok {
			exact++
			continue
		}
		if hasPartialMatch(word, t.words) {
			partial++
		}
	}
	return (float64(exact)*ExactMatchWeight + float64(partial)*PartialMatchWeight) / float64(len(questionWords))
}

func hasPartialMatch(word string, candidates []string) bool {
	wordLong := runeLen(word) > partialMatchMinLength
	for _, candidate := range candidates {
		if wordLong && strings.Contains(candidate, word) {
			return true
		}
		if runeLen(candidate) > partialMatchMinLength && strings.Contains(word, candidate) {
			return true
		}
	}
	return false
}
