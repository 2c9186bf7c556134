package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventExpenseAdded   EventType = "expense.added"
	EventExpenseEdited  EventType = "expense.edited"
	EventExpenseDeleted EventType = "expense.deleted"
	EventLedgerImported EventType = "ledger.imported"
	EventLedgerCleared  EventType = "ledger.cleared"
	EventBudgetChanged  EventType = "budget.changed"
	EventThemeChanged   EventType = "theme.changed"
)

// LedgerEvent announces a committed ledger command. It carries identifiers
// only; consumers read the full state from the store.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Count     int       `json:"count,omitempty"`
	Value     string    `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType) *LedgerEvent {
	return &LedgerEvent{Type: t, Timestamp: time.Now().UTC()}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes a message and requires a type
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("ledger event without type")
	}
	return &msg, nil
}
