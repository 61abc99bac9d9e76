package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

type assistantFake struct {
	result    domain.QueryResult
	questions []string
}

func (f *assistantFake) GenerateAnswer(_ context.Context, question string) domain.QueryResult {
	f.questions = append(f.questions, question)
	return f.result
}
func (f *assistantFake) SearchRelevantDocs(context.Context, string, int) []domain.MedicalDocument {
	return nil
}
func (f *assistantFake) SuggestedQuestions(context.Context, string, int) []string { return nil }
func (f *assistantFake) Statistics(context.Context) domain.Statistics           { return domain.Statistics{} }
func (f *assistantFake) CorpusSize() int                                         { return 0 }

type recorderFake struct {
	recorded []domain.Exchange
	err      error
}

func (f *recorderFake) RecordExchange(_ context.Context, exchange *domain.Exchange) error {
	f.recorded = append(f.recorded, *exchange)
	return f.err
}

type historyFake struct {
	exchanges []domain.Exchange
	total     int
	listErr   error
	deleteErr error

	userID string
	limit  int
	offset int
	delID  int64
}

func (f *historyFake) Create(context.Context, *domain.Exchange) error { return nil }
func (f *historyFake) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	f.userID, f.limit, f.offset = userID, limit, offset
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.exchanges, nil
}
func (f *historyFake) CountByUser(context.Context, string) (int, error) { return f.total, nil }
func (f *historyFake) DeleteByID(_ context.Context, id int64, userID string) error {
	f.delID, f.userID = id, userID
	return f.deleteErr
}

func highResult() domain.QueryResult {
	return domain.QueryResult{
		Answer:       "answer",
		RelevantDocs: []domain.RelevantDoc{{DocID: "doc-1"}},
		Confidence:   domain.ConfidenceHigh,
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	assistant := &assistantFake{}
	uc := NewConversationUseCase(assistant, nil, nil, 0)

	_, err := uc.Ask(context.Background(), "u1", "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(assistant.questions) != 0 {
		t.Fatalf("expected assistant not to be called")
	}
}

func TestAskRecordsExchangeForUser(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewConversationUseCase(&assistantFake{result: highResult()}, recorder, nil, 0)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	result, err := uc.Ask(context.Background(), "u1", "tim mạch?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if result.Question != "tim mạch?" || result.Answer != "answer" || !result.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(recorder.recorded) != 1 {
		t.Fatalf("expected one recorded exchange, got %d", len(recorder.recorded))
	}
	got := recorder.recorded[0]
	if got.UserID != "u1" || got.Question != "tim mạch?" || got.Confidence != domain.ConfidenceHigh {
		t.Fatalf("unexpected exchange %+v", got)
	}
	if len(got.RelevantDocs) != 1 || !got.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected exchange docs/time %+v", got)
	}
}

func TestAskAnonymousIsNotRecorded(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewConversationUseCase(&assistantFake{result: highResult()}, recorder, nil, 0)

	if _, err := uc.Ask(context.Background(), "", "tim mạch?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(recorder.recorded) != 0 {
		t.Fatalf("expected no recorded exchange, got %d", len(recorder.recorded))
	}
}

func TestAskRecordFailureStillAnswers(t *testing.T) {
	recorder := &recorderFake{err: errors.New("db down")}
	uc := NewConversationUseCase(&assistantFake{result: highResult()}, recorder, nil, 0)

	result, err := uc.Ask(context.Background(), "u1", "tim mạch?")
	if err != nil {
		t.Fatalf("expected answer despite record failure, got %v", err)
	}
	if result.Answer != "answer" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
}

func TestHistoryRequiresUserAndBackend(t *testing.T) {
	uc := NewConversationUseCase(&assistantFake{}, nil, &historyFake{}, 0)
	if _, err := uc.History(context.Background(), "", 1, 10); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	disabled := NewConversationUseCase(&assistantFake{}, nil, nil, 0)
	if _, err := disabled.History(context.Background(), "u1", 1, 10); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Fatalf("expected history disabled, got %v", err)
	}
}

func TestHistoryDefaultsAndPagination(t *testing.T) {
	history := &historyFake{total: 21}
	uc := NewConversationUseCase(&assistantFake{}, nil, history, 0)

	page, err := uc.History(context.Background(), "u1", 0, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if page.Page != 1 || page.Limit != DefaultHistoryLimit || history.offset != 0 {
		t.Fatalf("expected page=1 limit=%d offset=0, got %+v offset=%d", DefaultHistoryLimit, page, history.offset)
	}
	if page.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", page.Pages)
	}
	if page.Exchanges == nil {
		t.Fatalf("expected non-nil exchanges")
	}

	page, err = uc.History(context.Background(), "u1", 3, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if history.limit != 10 || history.offset != 20 || history.userID != "u1" {
		t.Fatalf("expected limit=10 offset=20, got limit=%d offset=%d", history.limit, history.offset)
	}
	if page.Pages != 3 || page.Total != 21 {
		t.Fatalf("expected 3 pages of 21, got %+v", page)
	}
}

func TestHistoryConfiguredPageSizeAndEmpty(t *testing.T) {
	history := &historyFake{}
	uc := NewConversationUseCase(&assistantFake{}, nil, history, 50)

	page, err := uc.History(context.Background(), "u1", 1, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if page.Limit != 50 || page.Pages != 0 || page.Total != 0 {
		t.Fatalf("unexpected empty page %+v", page)
	}
}

func TestHistoryPropagatesRepositoryError(t *testing.T) {
	uc := NewConversationUseCase(&assistantFake{}, nil, &historyFake{listErr: errors.New("boom")}, 0)
	if _, err := uc.History(context.Background(), "u1", 1, 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDeleteExchange(t *testing.T) {
	history := &historyFake{}
	uc := NewConversationUseCase(&assistantFake{}, nil, history, 0)

	if err := uc.DeleteExchange(context.Background(), "u1", 7); err != nil {
		t.Fatalf("DeleteExchange() error = %v", err)
	}
	if history.delID != 7 || history.userID != "u1" {
		t.Fatalf("expected delete of 7 for u1, got %d/%s", history.delID, history.userID)
	}

	if err := uc.DeleteExchange(context.Background(), "", 7); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := uc.DeleteExchange(context.Background(), "u1", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	history.deleteErr = domain.WrapError(domain.ErrExchangeNotFound, "delete exchange", errors.New("no rows"))
	if err := uc.DeleteExchange(context.Background(), "u1", 8); !errors.Is(err, domain.ErrExchangeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
