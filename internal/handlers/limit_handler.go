package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type LimitManager interface {
	Get(ctx context.Context, actor models.Actor, userID string) (*models.ExpenseLimit, error)
	Update(ctx context.Context, actor models.Actor, limit models.ExpenseLimit) (*models.ExpenseLimit, error)
}

type LimitHandler struct {
	limits LimitManager
}

func NewLimitHandler(limits LimitManager) *LimitHandler {
	return &LimitHandler{limits: limits}
}

// GetLimit returns a user's expense limit
// @Summary Get expense limit
// @Tags Limits
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Account id"
// @Success 200 {object} models.ExpenseLimit
// @Failure 404 {object} ErrorResponse
// @Router /limits/{userId} [get]
func (h *LimitHandler) GetLimit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	limit, err := h.limits.Get(r.Context(), actor, chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, limit)
}

// UpdateLimit replaces a user's expense limit
// @Summary Update expense limit
// @Tags Limits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Account id"
// @Param request body models.ExpenseLimit true "Limit configuration"
// @Success 200 {object} models.ExpenseLimit
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /limits/{userId} [put]
func (h *LimitHandler) UpdateLimit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var limit models.ExpenseLimit
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := json.NewDecoder(r.Body).Decode(&limit); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	limit.UserID = chi.URLParam(r, "userId")

	saved, err := h.limits.Update(r.Context(), actor, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
