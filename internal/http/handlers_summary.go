package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type biggestCategory struct {
	Category core.MainCategory `json:"category"`
	Total    string            `json:"total"`
}

// handleMonthSummary returns the full derived view for one month: the
// aggregate summary plus the daily series and averages the dashboard
// renders.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Month parameter is required")
		return
	}
	month, err := core.ParseMonthKey(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := UserID(r.Context())

	expenses, err := s.repo.ListExpenses(r.Context(), userID, &month)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	income, err := s.repo.MonthIncomeAmount(r.Context(), userID, month)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := core.Summarize(month, expenses, income)

	var biggest *biggestCategory
	if cat, total, ok := core.BiggestCategory(expenses); ok {
		biggest = &biggestCategory{Category: cat, Total: total.String()}
	}

	daily := core.DailySeries(expenses, month.Year(), month.Month())
	dailyTotals := make([]string, len(daily))
	for i, d := range daily {
		dailyTotals[i] = d.String()
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"summary":           summary,
		"averageDailySpend": core.AverageDailySpend(summary.TotalSpent, month, time.Now()),
		"spendingPercent":   core.SpendingPercent(summary.TotalSpent, income),
		"biggestCategory":   biggest,
		"dailyTotals":       dailyTotals,
	})
}
