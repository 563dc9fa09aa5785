package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/service"
)

// AuthHandler serves the public registration and sign-in endpoints.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// HandleSignup registers an account.
//
// HTTP: POST /signup
// REQUEST BODY: {"email": "a@b.com", "password": "secret"}
// RESPONSE: 201 {"user": {...}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Signup(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.UserEnvelope{User: *user})
}

// HandleSignin exchanges credentials for a bearer token.
//
// HTTP: POST /signin
// RESPONSE: 200 {"token": "<jwt>"}
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.authService.Signin(r.Context(), creds.Email, creds.Password)
	if err != nil {
		h.logger.Debug("sign-in rejected", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}
