// Package memory provides an in-memory SummaryWriter for tests.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

type Export struct {
	UserID  string
	Summary core.MonthSummary
}

type Writer struct {
	mu      sync.Mutex
	exports []Export
	err     error
}

var _ ports.SummaryWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// Fail makes every subsequent AppendSummary return err.
func (w *Writer) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

func (w *Writer) AppendSummary(_ context.Context, userID string, s core.MonthSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.exports = append(w.exports, Export{UserID: userID, Summary: s})
	return nil
}

func (w *Writer) Exports() []Export {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Export, len(w.exports))
	copy(out, w.exports)
	return out
}
