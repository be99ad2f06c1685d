package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cashwise/backend/internal/middleware"
	"github.com/cashwise/backend/internal/services"
)

type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles user authentication
// @Summary User login
// @Description Authenticate with phone and password and receive a JWT
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the bearer token
// @Summary User logout
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, string(services.KindUnauthorized), nil)
		return
	}
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
