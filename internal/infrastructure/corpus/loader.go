package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

// Opener is the file source the corpus is read from.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Load reads the corpus stored under key. Every failure is reported as
// domain.ErrCorpusUnavailable; callers fall back to an empty corpus.
func Load(ctx context.Context, opener Opener, key string) ([]domain.MedicalDocument, error) {
	if key == "" {
		return nil, domain.WrapError(domain.ErrCorpusUnavailable, "load corpus", errors.New("corpus path is empty"))
	}
	rc, err := opener.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorpusUnavailable, "load corpus", err)
	}
	defer rc.Close()

	docs, err := Decode(rc)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorpusUnavailable, "load corpus", err)
	}
	return docs, nil
}

// Decode parses a JSON array of documents. An empty array is an error.
func Decode(r io.Reader) ([]domain.MedicalDocument, error) {
	var docs []domain.MedicalDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("corpus is empty")
	}
	return docs, nil
}
