package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"expenses/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

// ExpenseEvent is the message body published after each ledger change.
// Expense is only set for created events.
type ExpenseEvent struct {
	Type      EventType     `json:"type"`
	ID        int64         `json:"id"`
	Expense   *core.Expense `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewExpenseCreatedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventCreated,
		ID:        e.ID,
		Expense:   &e,
		Timestamp: time.Now().UTC(),
	}
}

func NewExpenseDeletedEvent(id int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events a consumer cannot act on.
func (m *ExpenseEvent) Validate() error {
	if m.ID <= 0 {
		return errors.New("event id must be positive")
	}
	switch m.Type {
	case EventCreated:
		if m.Expense == nil {
			return errors.New("created event without expense")
		}
		if m.Expense.ID != m.ID {
			return fmt.Errorf("created event id %d does not match expense id %d", m.ID, m.Expense.ID)
		}
	case EventDeleted:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	return nil
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and validates a message body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
