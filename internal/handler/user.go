package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/auth"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/service"
)

// UserHandler serves the signed-in user's profile. Every route sits behind
// auth.RequireAuth.
type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService, userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{authService: authService, userService: userService, logger: logger}
}

// HandleMe returns the current user. The client also calls it to check a
// stored token.
//
// HTTP: GET /users/me
// RESPONSE: 200 {"user": {...}}
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserEnvelope{User: *user})
}

// HandleUpdateProfile sets name and about.
//
// HTTP: PATCH /users/me
// REQUEST BODY: {"name": "...", "about": "..."}
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authorization required"))
		return
	}

	var body model.ProfileUpdate
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, body.Name, body.About)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserEnvelope{User: *user})
}

// HandleUpdateAvatar sets the avatar link.
//
// HTTP: PATCH /users/me/avatar
// REQUEST BODY: {"avatar": "https://..."}
func (h *UserHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authorization required"))
		return
	}

	var body model.AvatarUpdate
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.UpdateAvatar(r.Context(), userID, body.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserEnvelope{User: *user})
}
