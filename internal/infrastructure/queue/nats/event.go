package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

type exchangeEvent struct {
	EventID     string          `json:"event_id"`
	PublishedAt time.Time       `json:"published_at"`
	Exchange    domain.Exchange `json:"exchange"`
}

func encodeExchangeEvent(exchange domain.Exchange, publishedAt time.Time) ([]byte, error) {
	payload, err := json.Marshal(exchangeEvent{
		EventID:     uuid.NewString(),
		PublishedAt: publishedAt,
		Exchange:    exchange,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal exchange event: %w", err)
	}
	return payload, nil
}

func decodeExchangeEvent(data []byte) (exchangeEvent, error) {
	var event exchangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return exchangeEvent{}, fmt.Errorf("unmarshal exchange event: %w", err)
	}
	if event.Exchange.UserID == "" {
		return exchangeEvent{}, errors.New("exchange event without user id")
	}
	return event, nil
}
