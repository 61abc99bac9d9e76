package lexicon

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/health-assistant/internal/core/retrieval"
)

type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Load reads a YAML lexicon from key. An empty key yields the built-in
// lexicon, and sections the file omits keep their built-in values.
func Load(ctx context.Context, opener Opener, key string) (retrieval.Lexicon, error) {
	if key == "" {
		return retrieval.DefaultLexicon(), nil
	}
	rc, err := opener.Open(ctx, key)
	if err != nil {
		return retrieval.Lexicon{}, fmt.Errorf("open lexicon: %w", err)
	}
	defer rc.Close()
	return Decode(rc)
}

func Decode(r io.Reader) (retrieval.Lexicon, error) {
	var lex retrieval.Lexicon
	if err := yaml.NewDecoder(r).Decode(&lex); err != nil {
		if errors.Is(err, io.EOF) {
			return retrieval.Lexicon{}, errors.New("decode lexicon: document is empty")
		}
		return retrieval.Lexicon{}, fmt.Errorf("decode lexicon: %w", err)
	}

	defaults := retrieval.DefaultLexicon()
	if lex.Synonyms == nil {
		lex.Synonyms = defaults.Synonyms
	}
	if lex.StopWords == nil {
		lex.StopWords = defaults.StopWords
	}
	if lex.PenaltyKeywords == nil {
		lex.PenaltyKeywords = defaults.PenaltyKeywords
	}
	if lex.Categories == nil {
		lex.Categories = defaults.Categories
	}
	for _, entry := range lex.Synonyms {
		if entry.Key == "" {
			return retrieval.Lexicon{}, errors.New("decode lexicon: synonym entry without key")
		}
	}
	return lex, nil
}

// Encode writes lex as YAML, the format Load accepts.
func Encode(w io.Writer, lex retrieval.Lexicon) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lex); err != nil {
		return fmt.Errorf("encode lexicon: %w", err)
	}
	return enc.Close()
}
