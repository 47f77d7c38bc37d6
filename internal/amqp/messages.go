package amqp

import (
	"encoding/json"
	"time"
)

// MonthEvent signals that a user's ledger changed for one month. The worker
// re-reads the month from the database, so the event stays small.
type MonthEvent struct {
	Entity    string    `json:"entity"` // "expense" or "income"
	Action    string    `json:"action"` // "created", "updated", "deleted"
	UserID    string    `json:"userId"`
	Month     string    `json:"month"` // YYYY-MM
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthEvent creates an event stamped with the current time.
func NewMonthEvent(entity, action, userID, month string) *MonthEvent {
	return &MonthEvent{
		Entity:    entity,
		Action:    action,
		UserID:    userID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *MonthEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// MonthEventFromJSON parses an event from JSON bytes.
func MonthEventFromJSON(data []byte) (*MonthEvent, error) {
	var e MonthEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
