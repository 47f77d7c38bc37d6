package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// monthQuery parses the optional ?month=YYYY-MM parameter. A missing
// parameter returns (nil, nil).
func monthQuery(r *http.Request) (*core.MonthKey, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return nil, nil
	}
	month, err := core.ParseMonthKey(raw)
	if err != nil {
		return nil, err
	}
	return &month, nil
}
