package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/insight"
	"fintrack/internal/storage"
)

type expenseRequest struct {
	Amount       json.Number `json:"amount"`
	MainCategory string      `json:"mainCategory"`
	SubCategory  string      `json:"subCategory"`
	Date         string      `json:"date"`
	Note         string      `json:"note"`
	Source       string      `json:"source"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := core.ParseMainCategory(req.MainCategory)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	source, err := core.ParseSource(req.Source)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := s.repo.CreateExpense(r.Context(), core.Expense{
		UserID:       UserID(r.Context()),
		Amount:       amount,
		MainCategory: category,
		SubCategory:  req.SubCategory,
		Date:         date,
		Note:         req.Note,
		Source:       source,
	})
	if err != nil {
		respondBudgetError(w, err)
		return
	}

	s.publishMonthEvent(r.Context(), "expense", "created", expense.UserID, string(expense.Date.MonthKey()))

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense added successfully",
		"expense": expense,
	})
}

// respondBudgetError maps budget-guard failures to 400 with the user-facing
// wording; everything else is a 500.
func respondBudgetError(w http.ResponseWriter, err error) {
	var exceeded *core.BudgetExceededError
	switch {
	case errors.Is(err, core.ErrNoIncomeSet):
		respondError(w, http.StatusBadRequest, "Please set your monthly income first!")
	case errors.As(err, &exceeded):
		respondError(w, http.StatusBadRequest,
			"Expense exceeds your budget! You have ₹"+insight.FormatINR(exceeded.Remaining)+" remaining.")
	case isValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidSource) ||
		errors.Is(err, core.ErrInvalidMonthKey) ||
		errors.Is(err, core.ErrInvalidDate)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.repo.ListExpenses(r.Context(), UserID(r.Context()), month)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"expenses":       expenses,
		"totalSpent":     core.TotalSpent(expenses),
		"categoryTotals": core.CategoryTotals(expenses),
		"count":          len(expenses),
	})
}

type expenseUpdateRequest struct {
	Amount       *json.Number `json:"amount"`
	MainCategory *string      `json:"mainCategory"`
	SubCategory  *string      `json:"subCategory"`
	Date         *string      `json:"date"`
	Note         *string      `json:"note"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd storage.ExpenseUpdate
	if req.Amount != nil {
		amount, err := core.ParseAmount(req.Amount.String())
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Amount = &amount
	}
	if req.MainCategory != nil {
		category, err := core.ParseMainCategory(*req.MainCategory)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.MainCategory = &category
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Date = &date
	}
	upd.SubCategory = req.SubCategory
	upd.Note = req.Note

	expense, err := s.repo.UpdateExpense(r.Context(), UserID(r.Context()), r.PathValue("id"), upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Expense not found")
			return
		}
		respondBudgetError(w, err)
		return
	}

	s.publishMonthEvent(r.Context(), "expense", "updated", expense.UserID, string(expense.Date.MonthKey()))

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Expense updated successfully",
		"expense": expense,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.repo.DeleteExpense(r.Context(), UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Expense not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishMonthEvent(r.Context(), "expense", "deleted", expense.UserID, string(expense.Date.MonthKey()))

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Expense deleted successfully",
		"expense": expense,
	})
}
