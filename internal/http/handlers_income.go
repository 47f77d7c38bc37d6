package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/insight"
	"fintrack/internal/storage"
)

type incomeRequest struct {
	Amount json.Number `json:"amount"`
	Month  string      `json:"month"`
	Note   string      `json:"note"`
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonthKey(req.Month)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	income, added, err := s.repo.AddIncome(r.Context(), UserID(r.Context()), amount, month, req.Note)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Income saved successfully"
	if added {
		message = "Income added! New total: ₹" + insight.FormatINR(income.Amount)
	}

	s.publishMonthEvent(r.Context(), "income", "created", income.UserID, string(income.Month))

	respondJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"income":  income,
	})
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if month != nil {
		income, err := s.repo.GetIncome(r.Context(), UserID(r.Context()), *month)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondJSON(w, http.StatusOK, map[string]any{
					"income": nil,
					"amount": decimal.Zero,
				})
				return
			}
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"income": income,
			"amount": income.Amount,
		})
		return
	}

	incomes, err := s.repo.ListIncomes(r.Context(), UserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"incomes": incomes,
		"count":   len(incomes),
	})
}

type incomeUpdateRequest struct {
	Amount *json.Number `json:"amount"`
	Note   *string      `json:"note"`
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		parsed, err := core.ParseAmount(req.Amount.String())
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		amount = &parsed
	}

	income, err := s.repo.UpdateIncome(r.Context(), UserID(r.Context()), r.PathValue("id"), amount, req.Note)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Income record not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishMonthEvent(r.Context(), "income", "updated", income.UserID, string(income.Month))

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Income updated to ₹" + insight.FormatINR(income.Amount),
		"income":  income,
	})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.repo.DeleteIncome(r.Context(), UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Income record not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishMonthEvent(r.Context(), "income", "deleted", income.UserID, string(income.Month))

	respondJSON(w, http.StatusOK, map[string]any{
		"message":       "Income deleted successfully",
		"deletedIncome": income,
	})
}
