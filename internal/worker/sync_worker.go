// Package worker rebuilds month summaries from the database and exports
// them to the configured summary sink.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SyncWorker consumes month-change events and re-exports the affected
// month. Events carry only user and month; the worker reads the current
// state from storage so stale or reordered deliveries converge on the
// same result.
type SyncWorker struct {
	repo   *storage.Repository
	writer sheets.SummaryWriter
}

func NewSyncWorker(repo *storage.Repository, writer sheets.SummaryWriter) *SyncWorker {
	return &SyncWorker{repo: repo, writer: writer}
}

// HandleMonthEvent rebuilds the summary for the event's month and appends
// it to the summary sink.
func (w *SyncWorker) HandleMonthEvent(ctx context.Context, event *amqp.MonthEvent) error {
	slog.InfoContext(ctx, "Processing month event",
		"entity", event.Entity,
		"action", event.Action,
		"month", event.Month)

	month, err := core.ParseMonthKey(event.Month)
	if err != nil {
		return fmt.Errorf("parse event month: %w", err)
	}

	summary, err := w.BuildSummary(ctx, event.UserID, month)
	if err != nil {
		return err
	}

	if err := w.writer.AppendSummary(ctx, event.UserID, summary); err != nil {
		return fmt.Errorf("append summary: %w", err)
	}

	slog.InfoContext(ctx, "Month summary exported",
		"month", event.Month,
		"total_spent", summary.TotalSpent.StringFixed(2),
		"count", summary.Count)
	return nil
}

// BuildSummary loads a user's month from storage and folds it into a
// MonthSummary.
func (w *SyncWorker) BuildSummary(ctx context.Context, userID string, month core.MonthKey) (core.MonthSummary, error) {
	expenses, err := w.repo.ListExpenses(ctx, userID, &month)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list expenses: %w", err)
	}

	income, err := w.repo.MonthIncomeAmount(ctx, userID, month)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("read income: %w", err)
	}

	return core.Summarize(month, expenses, income), nil
}

// Run consumes month events until ctx is done, redialing the broker with
// exponential backoff when the connection drops.
func Run(ctx context.Context, url, exchange, queue string, worker *SyncWorker) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, err := amqp.NewClient(url, exchange, queue)
		if err != nil {
			delay := amqp.ReconnectDelay(attempt)
			slog.ErrorContext(ctx, "Failed to connect to broker",
				"error", err,
				"retry_in", delay)
			attempt++
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		err = client.ConsumeMonthEvents(ctx, func(event *amqp.MonthEvent) error {
			return worker.HandleMonthEvent(ctx, event)
		})
		client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !amqp.IsConnectionError(err) {
			return err
		}
		slog.WarnContext(ctx, "Broker connection lost, reconnecting", "error", err)
	}
}
