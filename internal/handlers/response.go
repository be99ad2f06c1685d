package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cashwise/backend/internal/middleware"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/services"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Type    string            `json:"type,omitempty"`    // Error kind or code
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, errType string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Type: errType, Details: details})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// writeServiceError maps a core error onto its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var serr *services.Error
	if !errors.As(err, &serr) {
		serr = services.StorageError("unexpected", err)
	}

	status := http.StatusInternalServerError
	switch serr.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindUnauthorized:
		status = http.StatusForbidden
		switch serr.Code {
		case "INVALID_CREDENTIALS":
			status = http.StatusUnauthorized
		case "TOO_MANY_ATTEMPTS":
			status = http.StatusTooManyRequests
		}
	}
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
	}

	errType := serr.Code
	if errType == "" {
		errType = string(serr.Kind)
	}
	SendErrorResponse(w, serr.Message, status, errType, serr.Details)
}

// actorFrom returns the authenticated caller or answers 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, string(services.KindUnauthorized), nil)
	}
	return actor, ok
}
