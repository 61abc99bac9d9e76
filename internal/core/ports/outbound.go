package ports

import (
	"context"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

// ExchangeRepository persists and reads answered questions per user.
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *domain.Exchange) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteByID(ctx context.Context, id int64, userID string) error
}

// ExchangeRecorder stores an exchange, either directly or through a queue.
type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, exchange *domain.Exchange) error
}

// ExchangeQueue publishes/consumes exchange events.
type ExchangeQueue interface {
	ExchangeRecorder
	SubscribeExchanges(ctx context.Context, handler func(context.Context, domain.Exchange) error) error
}
