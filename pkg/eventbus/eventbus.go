// Package eventbus publishes CRM record events on redis pub/sub so other
// back-office tooling (notifiers, exports) can react without polling.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type QuoteEvent struct {
	QuoteID     uint   `json:"quote_id"`
	QuoteNumber string `json:"quote_number"`
	ClientID    uint   `json:"client_id"`
	Status      string `json:"status"`
	TotalCents  int64  `json:"total_cents"`
}

type TimeEntryEvent struct {
	TimeEntryID uint   `json:"time_entry_id"`
	ProjectID   uint   `json:"project_id"`
	UserID      uint   `json:"user_id"`
	Hours       string `json:"hours"`
	Billable    bool   `json:"billable"`
}

const (
	ChannelQuote     = "crm:events:quote"
	ChannelTimeEntry = "crm:events:time_entry"
)

type Bus struct {
	client redis.UniversalClient
}

func NewBus(client redis.UniversalClient) *Bus {
	return &Bus{client: client}
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}
