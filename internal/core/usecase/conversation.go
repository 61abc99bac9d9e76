package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/core/ports"
)

const DefaultHistoryLimit = 20

type ConversationUseCase struct {
	assistant ports.Assistant
	recorder  ports.ExchangeRecorder
	history   ports.ExchangeRepository
	pageSize  int
	now       func() time.Time
}

// NewConversationUseCase wires the assistant to exchange storage. A nil
// recorder skips persisting answers; a nil history repository disables the
// history operations.
func NewConversationUseCase(
	assistant ports.Assistant,
	recorder ports.ExchangeRecorder,
	history ports.ExchangeRepository,
	pageSize int,
) *ConversationUseCase {
	if pageSize <= 0 {
		pageSize = DefaultHistoryLimit
	}
	return &ConversationUseCase{
		assistant: assistant,
		recorder:  recorder,
		history:   history,
		pageSize:  pageSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ask answers question and, for identified users, records the exchange.
// A failed recording is logged and the answer is still returned.
func (uc *ConversationUseCase) Ask(ctx context.Context, userID, question string) (*domain.AskResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is required"))
	}

	result := uc.assistant.GenerateAnswer(ctx, question)
	askedAt := uc.now()

	userID = strings.TrimSpace(userID)
	if userID != "" && uc.recorder != nil {
		exchange := &domain.Exchange{
			UserID:       userID,
			Question:     question,
			Answer:       result.Answer,
			RelevantDocs: result.RelevantDocs,
			Confidence:   result.Confidence,
			CreatedAt:    askedAt,
		}
		if err := uc.recorder.RecordExchange(ctx, exchange); err != nil {
			slog.ErrorContext(ctx, "exchange_record_failed",
				"user_id", userID,
				"error", err.Error(),
			)
		}
	}

	return &domain.AskResult{
		Question:     question,
		Answer:       result.Answer,
		RelevantDocs: result.RelevantDocs,
		Confidence:   result.Confidence,
		Timestamp:    askedAt,
	}, nil
}

// History returns one page of the user's exchanges, newest first.
func (uc *ConversationUseCase) History(ctx context.Context, userID string, page, limit int) (*domain.HistoryPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "history", errors.New("user id is required"))
	}
	if uc.history == nil {
		return nil, domain.WrapError(domain.ErrHistoryDisabled, "history", errors.New("no history backend configured"))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = uc.pageSize
	}

	exchanges, err := uc.history.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := uc.history.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}

	return &domain.HistoryPage{
		Exchanges: exchanges,
		Page:      page,
		Limit:     limit,
		Total:     total,
		Pages:     (total + limit - 1) / limit,
	}, nil
}

func (uc *ConversationUseCase) DeleteExchange(ctx context.Context, userID string, id int64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.WrapError(domain.ErrUnauthorized, "delete exchange", errors.New("user id is required"))
	}
	if id <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "delete exchange", errors.New("exchange id must be positive"))
	}
	if uc.history == nil {
		return domain.WrapError(domain.ErrHistoryDisabled, "delete exchange", errors.New("no history backend configured"))
	}
	return uc.history.DeleteByID(ctx, id, userID)
}
