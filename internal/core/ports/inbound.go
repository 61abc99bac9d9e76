package ports

import (
	"context"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

// Assistant is the inbound contract of the retrieval engine. Calls never
// fail: an unmatched question yields a low-confidence answer.
type Assistant interface {
	GenerateAnswer(ctx context.Context, question string) domain.QueryResult
	SearchRelevantDocs(ctx context.Context, question string, limit int) []domain.MedicalDocument
	SuggestedQuestions(ctx context.Context, topic string, limit int) []string
	Statistics(ctx context.Context) domain.Statistics
	CorpusSize() int
}

// ConversationService answers questions on behalf of users and manages
// their stored exchanges.
type ConversationService interface {
	Ask(ctx context.Context, userID, question string) (*domain.AskResult, error)
	History(ctx context.Context, userID string, page, limit int) (*domain.HistoryPage, error)
	DeleteExchange(ctx context.Context, userID string, id int64) error
}
