package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/strikenet/strikenet/internal/validate"
)

type errorResponse struct {
	Error   string                `json:"error"`
	Details []validate.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

func writeValidationError(w http.ResponseWriter, msg string, details []validate.FieldError) {
	writeJSON(w, errorResponse{Error: msg, Details: details}, http.StatusBadRequest)
}
