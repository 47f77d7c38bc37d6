package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestReconnectDelay(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := ReconnectDelay(tt.attempt); got != tt.expected {
				t.Errorf("ReconnectDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.expected {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNewMonthEvent(t *testing.T) {
	event := NewMonthEvent("expense", "created", "user-1", "2025-06")

	if event.Entity != "expense" || event.Action != "created" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestMonthEvent_JSONRoundTrip(t *testing.T) {
	event := &MonthEvent{
		Entity:    "income",
		Action:    "updated",
		UserID:    "user-7",
		Month:     "2025-06",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := MonthEventFromJSON(data)
	if err != nil {
		t.Fatalf("MonthEventFromJSON() error = %v", err)
	}
	if parsed.Entity != event.Entity || parsed.Month != event.Month || parsed.UserID != event.UserID {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestMonthEvent_InvalidJSON(t *testing.T) {
	if _, err := MonthEventFromJSON([]byte(`{"entity": 42`)); err == nil {
		t.Error("MonthEventFromJSON() should fail with invalid JSON")
	}
}
