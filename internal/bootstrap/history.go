package bootstrap

import (
	"context"

	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/core/ports"
	"github.com/kirillkom/health-assistant/internal/infrastructure/resilience"
)

// resilientRepository runs every history call through the executor so a
// failing database trips the breaker instead of stalling requests.
type resilientRepository struct {
	next     ports.ExchangeRepository
	executor *resilience.Executor
}

func newResilientRepository(next ports.ExchangeRepository, executor *resilience.Executor) *resilientRepository {
	return &resilientRepository{next: next, executor: executor}
}

func (r *resilientRepository) Create(ctx context.Context, exchange *domain.Exchange) error {
	return r.execute(ctx, "db.create", func(callCtx context.Context) error {
		return r.next.Create(callCtx, exchange)
	})
}

// execute reports an open breaker as a temporary failure.
func (r *resilientRepository) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	err := r.executor.Execute(ctx, operation, fn, resilience.ClassifyStorageError)
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func (r *resilientRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	var out []domain.Exchange
	err := r.execute(ctx, "db.list", func(callCtx context.Context) error {
		exchanges, err := r.next.ListByUser(callCtx, userID, limit, offset)
		if err != nil {
			return err
		}
		out = exchanges
		return nil
	})
	return out, err
}

func (r *resilientRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.execute(ctx, "db.count", func(callCtx context.Context) error {
		n, err := r.next.CountByUser(callCtx, userID)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	return total, err
}

func (r *resilientRepository) DeleteByID(ctx context.Context, id int64, userID string) error {
	return r.execute(ctx, "db.delete", func(callCtx context.Context) error {
		return r.next.DeleteByID(callCtx, id, userID)
	})
}

type recorderFunc func(ctx context.Context, exchange *domain.Exchange) error

func (f recorderFunc) RecordExchange(ctx context.Context, exchange *domain.Exchange) error {
	return f(ctx, exchange)
}

type instrumentedRecorder struct {
	next     ports.ExchangeRecorder
	observer ExchangeObserver
	service  string
}

func (r *instrumentedRecorder) RecordExchange(ctx context.Context, exchange *domain.Exchange) error {
	err := r.next.RecordExchange(ctx, exchange)
	r.observer.RecordExchange(r.service, err)
	return err
}
