package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/auth"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/service"
)

// CardHandler serves the card feed.
type CardHandler struct {
	cardService *service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{cardService: cardService, logger: logger}
}

// HandleList returns every card, newest first.
//
// HTTP: GET /cards
// RESPONSE: 200 [{"_id": "...", "likes": [...]}, ...]
func (h *CardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// HandleCreate adds a card owned by the caller.
//
// HTTP: POST /cards
// REQUEST BODY: {"name": "...", "link": "https://..."}
// RESPONSE: 201 {"card": {...}}
func (h *CardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authorization required"))
		return
	}

	var body model.NewCard
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	card, err := h.cardService.Create(r.Context(), userID, body.Name, body.Link)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CardEnvelope{Card: *card})
}

// HandleDelete removes one of the caller's cards.
//
// HTTP: DELETE /cards/{id}
// RESPONSE: 200 {"message": "card deleted"}
func (h *CardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authorization required"))
		return
	}

	if err := h.cardService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.Message{Message: "card deleted"})
}

// HandleLike adds the caller's like.
//
// HTTP: PUT /cards/{id}/likes
// RESPONSE: 200 {"card": {...}}
func (h *CardHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.cardService.Like)
}

// HandleUnlike removes the caller's like.
//
// HTTP: DELETE /cards/{id}/likes
func (h *CardHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.cardService.Unlike)
}

// changeLike runs a like or unlike for the caller and writes the card.
func (h *CardHandler) changeLike(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, userID, cardID string) (*model.Card, error),
) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authorization required"))
		return
	}

	card, err := change(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CardEnvelope{Card: *card})
}
