package client

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sakif/mesto/internal/model"
)

// API is the authenticated part of the places API: the card feed and the
// current user's profile.
//
// The bearer token comes from the TokenSource on every request, so a sign-in
// or sign-out is picked up by the next call without rebuilding the client.
type API struct {
	rest
}

// NewAPI creates an API client. tokens is usually session.Store.TokenSource.
func NewAPI(baseURL string, tokens oauth2.TokenSource, httpClient *http.Client, logger *slog.Logger) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{rest: newRest(baseURL, withTokenSource(httpClient, tokens), logger)}
}

// GetUser fetches the signed-in user. GET /users/me
func (a *API) GetUser(ctx context.Context) (*model.User, error) {
	var env model.UserEnvelope
	if err := a.do(ctx, http.MethodGet, "/users/me", nil, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// GetCards fetches the whole feed in server order. GET /cards
func (a *API) GetCards(ctx context.Context) ([]model.Card, error) {
	var list model.CardList
	if err := a.do(ctx, http.MethodGet, "/cards", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = model.CardList{}
	}
	return list, nil
}

// ChangeLikeStatus flips the caller's like. isLiked is the current state:
// true sends DELETE /cards/{id}/likes, false sends PUT.
func (a *API) ChangeLikeStatus(ctx context.Context, cardID string, isLiked bool) (*model.Card, error) {
	method := http.MethodPut
	if isLiked {
		method = http.MethodDelete
	}

	var env model.CardEnvelope
	if err := a.do(ctx, method, "/cards/"+pathEscape(cardID)+"/likes", nil, &env); err != nil {
		return nil, err
	}
	return &env.Card, nil
}

// DeleteCard removes a card. DELETE /cards/{id}. The confirmation body is
// ignored.
func (a *API) DeleteCard(ctx context.Context, cardID string) error {
	return a.do(ctx, http.MethodDelete, "/cards/"+pathEscape(cardID), nil, nil)
}

// AddCard creates a card. POST /cards
func (a *API) AddCard(ctx context.Context, name, link string) (*model.Card, error) {
	var env model.CardEnvelope
	if err := a.do(ctx, http.MethodPost, "/cards", model.NewCard{Name: name, Link: link}, &env); err != nil {
		return nil, err
	}
	return &env.Card, nil
}

// SetUserInfo updates name and about. PATCH /users/me
func (a *API) SetUserInfo(ctx context.Context, name, about string) (*model.User, error) {
	var env model.UserEnvelope
	if err := a.do(ctx, http.MethodPatch, "/users/me", model.ProfileUpdate{Name: name, About: about}, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// SetUserAvatar updates the avatar link. PATCH /users/me/avatar
func (a *API) SetUserAvatar(ctx context.Context, avatar string) (*model.User, error) {
	var env model.UserEnvelope
	if err := a.do(ctx, http.MethodPatch, "/users/me/avatar", model.AvatarUpdate{Avatar: avatar}, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}
