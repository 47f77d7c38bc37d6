package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.Repository, *memory.Writer) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	writer := memory.New()
	return NewSyncWorker(repo, writer), repo, writer
}

func seedMonth(t *testing.T, repo *storage.Repository) string {
	t.Helper()
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "worker@test.local", "hash")
	require.NoError(t, err)

	_, _, err = repo.AddIncome(ctx, user.ID, decimal.RequireFromString("2000"), core.MonthKey("2025-06"), "salary")
	require.NoError(t, err)

	for _, e := range []struct {
		amount string
		cat    core.MainCategory
		day    int
	}{
		{"300", core.CategoryFood, 3},
		{"150", core.CategoryTravel, 10},
		{"50", core.CategoryFood, 21},
	} {
		_, err := repo.CreateExpense(ctx, core.Expense{
			UserID:       user.ID,
			Amount:       decimal.RequireFromString(e.amount),
			MainCategory: e.cat,
			Date:         core.NewDate(2025, 6, e.day),
			Source:       core.SourceManual,
		})
		require.NoError(t, err)
	}
	return user.ID
}

func TestHandleMonthEventExportsSummary(t *testing.T) {
	worker, repo, writer := newTestWorker(t)
	userID := seedMonth(t, repo)

	event := amqp.NewMonthEvent("expense", "created", userID, "2025-06")
	require.NoError(t, worker.HandleMonthEvent(context.Background(), event))

	exports := writer.Exports()
	require.Len(t, exports, 1)

	got := exports[0]
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, core.MonthKey("2025-06"), got.Summary.Month)
	assert.True(t, got.Summary.TotalSpent.Equal(decimal.RequireFromString("500")))
	assert.True(t, got.Summary.Income.Equal(decimal.RequireFromString("2000")))
	assert.True(t, got.Summary.Balance.Equal(decimal.RequireFromString("1500")))
	assert.Equal(t, 3, got.Summary.Count)
	assert.True(t, got.Summary.CategoryTotals[core.CategoryFood].Equal(decimal.RequireFromString("350")))
}

func TestHandleMonthEventEmptyMonth(t *testing.T) {
	worker, repo, writer := newTestWorker(t)
	userID := seedMonth(t, repo)

	event := amqp.NewMonthEvent("income", "updated", userID, "2025-07")
	require.NoError(t, worker.HandleMonthEvent(context.Background(), event))

	exports := writer.Exports()
	require.Len(t, exports, 1)
	assert.True(t, exports[0].Summary.TotalSpent.IsZero())
	assert.True(t, exports[0].Summary.Income.IsZero())
	assert.Equal(t, 0, exports[0].Summary.Count)
}

func TestHandleMonthEventBadMonth(t *testing.T) {
	worker, _, writer := newTestWorker(t)

	event := amqp.NewMonthEvent("expense", "created", "user", "june-2025")
	err := worker.HandleMonthEvent(context.Background(), event)
	require.Error(t, err)
	assert.Empty(t, writer.Exports())
}

func TestHandleMonthEventWriterFailure(t *testing.T) {
	worker, repo, writer := newTestWorker(t)
	userID := seedMonth(t, repo)

	sinkErr := errors.New("sheet unavailable")
	writer.Fail(sinkErr)

	event := amqp.NewMonthEvent("expense", "created", userID, "2025-06")
	err := worker.HandleMonthEvent(context.Background(), event)
	assert.ErrorIs(t, err, sinkErr)
}
