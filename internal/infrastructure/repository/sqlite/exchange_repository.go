package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

// OpenDB opens (creating if needed) the history database at path.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

type ExchangeRepository struct {
	db *sql.DB
}

func NewExchangeRepository(db *sql.DB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

func (r *ExchangeRepository) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS ai_conversations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	relevant_docs TEXT NOT NULL DEFAULT '[]',
	confidence TEXT NOT NULL DEFAULT 'low',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ai_conversations_user_id ON ai_conversations(user_id);
CREATE INDEX IF NOT EXISTS idx_ai_conversations_created_at ON ai_conversations(created_at DESC);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
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

	res, err := r.db.ExecContext(ctx, `
INSERT INTO ai_conversations (user_id, question, answer, relevant_docs, confidence, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		exchange.UserID, exchange.Question, exchange.Answer, string(docsJSON),
		string(exchange.Confidence), exchange.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert exchange id: %w", err)
	}
	exchange.ID = id
	return nil
}

func (r *ExchangeRepository) RecordExchange(ctx context.Context, exchange *domain.Exchange) error {
	return r.Create(ctx, exchange)
}

func (r *ExchangeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, question, answer, relevant_docs, confidence, created_at
FROM ai_conversations
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Exchange, 0, limit)
	for rows.Next() {
		var exchange domain.Exchange
		var docsRaw, confidence string
		var createdAt int64
		if err := rows.Scan(
			&exchange.ID, &exchange.UserID, &exchange.Question, &exchange.Answer,
			&docsRaw, &confidence, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		if err := json.Unmarshal([]byte(docsRaw), &exchange.RelevantDocs); err != nil {
			return nil, fmt.Errorf("unmarshal relevant docs: %w", err)
		}
		exchange.Confidence = domain.Confidence(confidence)
		exchange.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return out, nil
}

func (r *ExchangeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_conversations WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return total, nil
}

func (r *ExchangeRepository) DeleteByID(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ai_conversations WHERE id = ? AND user_id = ?`, id, userID)
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
