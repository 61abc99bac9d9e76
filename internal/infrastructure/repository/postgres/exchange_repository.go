package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

type ExchangeRepository struct {
	db *sql.DB
}

func NewExchangeRepository(db *sql.DB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

func (r *ExchangeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS ai_conversations (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	relevant_docs JSONB NOT NULL DEFAULT '[]'::jsonb,
	confidence TEXT NOT NULL DEFAULT 'low',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ai_conversations_user_id ON ai_conversations(user_id);
CREATE INDEX IF NOT EXISTS idx_ai_conversations_created_at ON ai_conversations(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ExchangeRepository) Create(ctx context.Context, exchange *domain.Exchange) error {
	docs := exchange.RelevantDocs
	if docs == nil {
		docs = []domain.RelevantDoc{}
	}
	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal relevant docs: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
INSERT INTO ai_conversations (user_id, question, answer, relevant_docs, confidence, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`,
		exchange.UserID, exchange.Question, exchange.Answer, docsJSON, string(exchange.Confidence), exchange.CreatedAt,
	).Scan(&exchange.ID)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// RecordExchange stores the exchange synchronously.
func (r *ExchangeRepository) RecordExchange(ctx context.Context, exchange *domain.Exchange) error {
	return r.Create(ctx, exchange)
}

func (r *ExchangeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, question, answer, relevant_docs, confidence, created_at
FROM ai_conversations
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Exchange, 0, limit)
	for rows.Next() {
		var exchange domain.Exchange
		var docsRaw []byte
		var confidence string
		if err := rows.Scan(
			&exchange.ID, &exchange.UserID, &exchange.Question, &exchange.Answer,
			&docsRaw, &confidence, &exchange.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		if err := json.Unmarshal(docsRaw, &exchange.RelevantDocs); err != nil {
			return nil, fmt.Errorf("unmarshal relevant docs: %w", err)
		}
		exchange.Confidence = domain.Confidence(confidence)
		out = append(out, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return out, nil
}

func (r *ExchangeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_conversations WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return total, nil
}

func (r *ExchangeRepository) DeleteByID(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ai_conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete exchange: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete exchange rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrExchangeNotFound, "delete exchange", fmt.Errorf("id=%d", id))
	}
	return nil
}
