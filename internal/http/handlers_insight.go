package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/insight"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
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

	key := insightKey(userID, string(month))
	insights, cached := s.insights.Get(key)
	if !cached {
		insights, err = s.insight.Analyze(r.Context(), insight.BuildPrompt(summary))
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "Failed to generate AI insights",
				"error":   err.Error(),
			})
			return
		}
		s.insights.Set(key, insights)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"insights": insights,
		"data": map[string]any{
			"income":         summary.Income,
			"totalSpent":     summary.TotalSpent,
			"balance":        summary.Balance,
			"categoryTotals": summary.CategoryTotals,
			"topExpenses":    summary.TopExpenses,
		},
	})
}
