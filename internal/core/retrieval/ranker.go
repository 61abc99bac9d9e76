package retrieval

import (
	"sort"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

const (
	// QuestionWeight and AnswerWeight combine the two per-field scores of a
	// document. Stored questions are expected to resemble user questions far
	// more than stored answers do.
	QuestionWeight = 2.0
	AnswerWeight   = 0.3
	// MinCombinedScore is a hard cutoff: only documents scoring strictly
	// above it are ever returned.
	MinCombinedScore   = 0.1
	DefaultSearchLimit = 5
)

type ScoredCandidate struct {
	Document domain.MedicalDocument
	Score    float64
}

type indexedDocument struct {
	doc      domain.MedicalDocument
	question preparedText
	answer   preparedText
}

// Ranker owns the read-only corpus and ranks its documents against
// questions. Document fields are normalized and tokenized once at
// construction; queries never mutate shared state and may run concurrently.
type Ranker struct {
	scorer *Scorer
	docs   []indexedDocument
}

func NewRanker(scorer *Scorer, corpus []domain.MedicalDocument) *Ranker {
	docs := make([]indexedDocument, 0, len(corpus))
	for _, doc := range corpus {
		docs = append(docs, indexedDocument{
			doc:      doc,
			question: scorer.prepareText(doc.QuestionVI),
			answer:   scorer.prepareText(doc.AnswerVI),
		})
	}
	return &Ranker{
		scorer: scorer,
		docs:   docs,
	}
}

func (r *Ranker) Len() int {
	return len(r.docs)
}

// Documents returns a copy of the corpus in its original order.
func (r *Ranker) Documents() []domain.MedicalDocument {
	out := make([]domain.MedicalDocument, 0, len(r.docs))
	for _, indexed := range r.docs {
		out = append(out, indexed.doc)
	}
	return out
}

// Rank scores every document against question and returns all of them,
// best first. Equal scores keep corpus order.
func (r *Ranker) Rank(question string) []ScoredCandidate {
	if len(r.docs) == 0 {
		return nil
	}

	query := r.scorer.prepareQuery(question)
	scored := make([]ScoredCandidate, 0, len(r.docs))
	for _, indexed := range r.docs {
		combined := r.scorer.score(query, indexed.question)*QuestionWeight +
			r.scorer.score(query, indexed.answer)*AnswerWeight
		scored = append(scored, ScoredCandidate{Document: indexed.doc, Score: combined})
	}

	sortCandidates(scored)
	return scored
}

// Search returns up to limit documents relevant to question, best first.
func (r *Ranker) Search(question string, limit int) []domain.MedicalDocument {
	top := Select(r.Rank(question), limit)
	out := make([]domain.MedicalDocument, 0, len(top))
	for _, candidate := range top {
		out = append(out, candidate.Document)
	}
	return out
}

// Select keeps the ranked candidates above MinCombinedScore and trims them
// to limit. A non-positive limit falls back to DefaultSearchLimit.
func Select(ranked []ScoredCandidate, limit int) []ScoredCandidate {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	out := make([]ScoredCandidate, 0, min(limit, len(ranked)))
	for _, candidate := range ranked {
		if len(out) == limit {
			break
		}
		if candidate.Score > MinCombinedScore {
			out = append(out, candidate)
		}
	}
	return out
}

func sortCandidates(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
