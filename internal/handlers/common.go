package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	domainerrors "pillpal-backend/internal/errors"
	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/repository"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// respondJSON sends a JSON response, flagging fallback data
func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	if repository.UsedFallback(r.Context()) {
		w.Header().Set(middleware.DataSourceHeader, "fallback")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// respondServiceError maps a service error onto its HTTP status
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var derr *domainerrors.Error
	if errors.As(err, &derr) && derr.Code != domainerrors.CodeInternal {
		respondError(w, ErrorResponse{Error: derr.Message, Code: string(derr.Code), Details: derr.Details}, derr.HTTPStatus())
		return
	}

	log.Error().Err(err).Str("user_id", middleware.GetUserID(r.Context())).Msg("Failed to " + action)
	respondError(w, ErrorResponse{Error: "Failed to " + action, Code: string(domainerrors.CodeInternal)}, http.StatusInternalServerError)
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domainerrors.Validation("Invalid request body")
	}
	return nil
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domainerrors.ValidationWithDetails("validation failed", map[string]string{name: "must be a non-negative integer"})
	}
	return n, nil
}
