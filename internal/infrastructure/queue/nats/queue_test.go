package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

func TestExchangeEventRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	publishedAt := createdAt.Add(time.Second)
	exchange := domain.Exchange{
		UserID:       "u1",
		Question:     "tim mạch?",
		Answer:       "answer",
		RelevantDocs: []domain.RelevantDoc{{DocID: "d1"}},
		Confidence:   domain.ConfidenceHigh,
		CreatedAt:    createdAt,
	}

	payload, err := encodeExchangeEvent(exchange, publishedAt)
	if err != nil {
		t.Fatalf("encode error = %v", err)
	}
	event, err := decodeExchangeEvent(payload)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if _, err := uuid.Parse(event.EventID); err != nil {
		t.Fatalf("expected uuid event id, got %q", event.EventID)
	}
	if !event.PublishedAt.Equal(publishedAt) {
		t.Fatalf("expected published_at %s, got %s", publishedAt, event.PublishedAt)
	}
	got := event.Exchange
	if got.UserID != "u1" || got.Question != "tim mạch?" || got.Confidence != domain.ConfidenceHigh {
		t.Fatalf("unexpected exchange %+v", got)
	}
	if len(got.RelevantDocs) != 1 || !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected exchange docs/time %+v", got)
	}
}

func TestDecodeExchangeEventRejectsInvalidPayloads(t *testing.T) {
	for _, payload := range []string{"", "doc-1", `{"exchange":{"question":"q"}}`} {
		if _, err := decodeExchangeEvent([]byte(payload)); err == nil {
			t.Fatalf("expected error for %q", payload)
		}
	}
}

func TestClassifyPublishError(t *testing.T) {
	if class := classifyPublishError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("expected canceled to be neither retryable nor recorded, got %+v", class)
	}
	for _, transient := range transientPublishErrors {
		wrapped := fmt.Errorf("publish exchange for user u-1: %w", transient)
		if class := classifyPublishError(wrapped); !class.Retryable || !class.RecordFailure {
			t.Fatalf("expected %v to be retryable, got %+v", transient, class)
		}
	}
	if class := classifyPublishError(gobreaker.ErrOpenState); !class.Retryable {
		t.Fatalf("expected open circuit to be retryable")
	}
	if class := classifyPublishError(errors.New("bad subject")); class.Retryable || !class.RecordFailure {
		t.Fatalf("expected unknown error to be recorded but not retried, got %+v", class)
	}
}

func TestRecordErrorMarksRecoverableFailuresTemporary(t *testing.T) {
	if recordError(nil) != nil {
		t.Fatalf("expected nil for nil")
	}
	err := recordError(fmt.Errorf("publish exchange for user u-1: %w", nats.ErrTimeout))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !errors.Is(err, nats.ErrTimeout) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if !domain.IsKind(recordError(gobreaker.ErrOpenState), domain.ErrTemporary) {
		t.Fatalf("expected open circuit to be temporary")
	}
	already := domain.WrapError(domain.ErrTemporary, "record exchange", errors.New("x"))
	if got := recordError(already); got != already {
		t.Fatalf("expected temporary error unchanged, got %v", got)
	}
	plain := errors.New("bad subject")
	if got := recordError(plain); got != plain {
		t.Fatalf("expected permanent error unchanged, got %v", got)
	}
}
