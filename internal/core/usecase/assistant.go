package usecase

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/core/retrieval"
)

const (
	DefaultSuggestionLimit = 6

	NoMatchAnswer = "Xin lỗi, tôi không tìm thấy thông tin phù hợp với câu hỏi của bạn. \n\n" +
		"Gợi ý:\n" +
		"- Hãy thử diễn đạt câu hỏi khác đi\n" +
		"- Sử dụng các từ khóa y tế thông dụng\n" +
		"- Đặt câu hỏi cụ thể hơn\n\n" +
		"Ví dụ: \"Triệu chứng của bệnh tiểu đường?\", \"Cách điều trị cao huyết áp?\"\n\n" +
		"Nếu cần tư vấn cụ thể, vui lòng tham khảo ý kiến bác sĩ chuyên khoa."

	AnswerDisclaimer = "\n\n---\n**Lưu ý:** Thông tin trên chỉ mang tính tham khảo. " +
		"Hãy tham khảo ý kiến bác sĩ để được chẩn đoán và điều trị chính xác."

	diagnosticCandidates = 5
)

// Shuffler permutes n elements in place through swap.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randomShuffler struct{}

func (randomShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type AssistantOptions struct {
	SearchLimit     int
	SuggestionLimit int
	Shuffler        Shuffler
}

// AssistantUseCase composes answers, suggestions and statistics over the
// ranked corpus.
type AssistantUseCase struct {
	ranker     *retrieval.Ranker
	categories []retrieval.Category
	opts       AssistantOptions
}

func NewAssistantUseCase(
	ranker *retrieval.Ranker,
	categories []retrieval.Category,
	opts AssistantOptions,
) *AssistantUseCase {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = retrieval.DefaultSearchLimit
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = DefaultSuggestionLimit
	}
	if opts.Shuffler == nil {
		opts.Shuffler = randomShuffler{}
	}

	return &AssistantUseCase{
		ranker:     ranker,
		categories: categories,
		opts:       opts,
	}
}

func (uc *AssistantUseCase) CorpusSize() int {
	return uc.ranker.Len()
}

// GenerateAnswer answers with the single best document. Confidence is
// binary: high when a document clears the score threshold, low otherwise.
func (uc *AssistantUseCase) GenerateAnswer(ctx context.Context, question string) domain.QueryResult {
	ranked := uc.ranker.Rank(question)
	best := retrieval.Select(ranked, 1)
	if len(best) == 0 {
		slog.DebugContext(ctx, "assistant_no_match",
			"corpus_size", uc.ranker.Len(),
			"top_candidates", summarizeCandidates(ranked, diagnosticCandidates),
		)
		return domain.QueryResult{
			Answer:       NoMatchAnswer,
			RelevantDocs: []domain.RelevantDoc{},
			Confidence:   domain.ConfidenceLow,
		}
	}

	doc := best[0].Document
	slog.DebugContext(ctx, "assistant_match",
		"doc_id", doc.DocID,
		"score", best[0].Score,
		"top_candidates", summarizeCandidates(ranked, diagnosticCandidates),
	)
	return domain.QueryResult{
		Answer:       doc.AnswerVI + AnswerDisclaimer,
		RelevantDocs: []domain.RelevantDoc{domain.NewRelevantDoc(doc)},
		Confidence:   domain.ConfidenceHigh,
	}
}

func (uc *AssistantUseCase) SearchRelevantDocs(_ context.Context, question string, limit int) []domain.MedicalDocument {
	if limit <= 0 {
		limit = uc.opts.SearchLimit
	}
	return uc.ranker.Search(question, limit)
}

// SuggestedQuestions samples up to limit stored questions, optionally
// restricted to documents mentioning topic. Every call draws a new sample.
func (uc *AssistantUseCase) SuggestedQuestions(_ context.Context, topic string, limit int) []string {
	if limit <= 0 {
		limit = uc.opts.SuggestionLimit
	}

	docs := uc.ranker.Documents()
	if topic = strings.TrimSpace(topic); topic != "" {
		needle := foldCase(topic)
		filtered := docs[:0]
		for _, doc := range docs {
			if strings.Contains(foldCase(doc.QuestionVI), needle) || strings.Contains(foldCase(doc.AnswerVI), needle) {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}

	uc.opts.Shuffler.Shuffle(len(docs), func(i, j int) {
		docs[i], docs[j] = docs[j], docs[i]
	})

	out := make([]string, 0, min(limit, len(docs)))
	for _, doc := range docs[:min(limit, len(docs))] {
		out = append(out, doc.QuestionVI)
	}
	return out
}

// Statistics counts documents, their distinct sources in first-seen order
// and, per category, the documents mentioning any category keyword.
func (uc *AssistantUseCase) Statistics(_ context.Context) domain.Statistics {
	docs := uc.ranker.Documents()
	stats := domain.Statistics{
		TotalDocs:  len(docs),
		Sources:    []string{},
		Categories: make(map[string]int, len(uc.categories)),
	}

	seen := make(map[string]struct{})
	for _, doc := range docs {
		if _, ok := seen[doc.Source]; ok {
			continue
		}
		seen[doc.Source] = struct{}{}
		stats.Sources = append(stats.Sources, doc.Source)
	}

	for _, category := range uc.categories {
		keywords := make([]string, 0, len(category.Keywords))
		for _, keyword := range category.Keywords {
			keywords = append(keywords, foldCase(keyword))
		}
		count := 0
		for _, doc := range docs {
			question, answer := foldCase(doc.QuestionVI), foldCase(doc.AnswerVI)
			for _, keyword := range keywords {
				if strings.Contains(question, keyword) || strings.Contains(answer, keyword) {
					count++
					break
				}
			}
		}
		stats.Categories[category.Name] = count
	}
	return stats
}

type candidateSummary struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

func summarizeCandidates(ranked []retrieval.ScoredCandidate, limit int) []candidateSummary {
	out := make([]candidateSummary, 0, min(limit, len(ranked)))
	for _, candidate := range ranked[:min(limit, len(ranked))] {
		out = append(out, candidateSummary{DocID: candidate.Document.DocID, Score: candidate.Score})
	}
	return out
}

// foldCase lowercases text in composed form so precomposed and decomposed
// input compare equal. Diacritics are kept.
func foldCase(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}
