package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sakif/mesto/internal/model"
)

// ErrEmptyToken is returned by Authorize when a successful sign-in carries no
// token.
var ErrEmptyToken = errors.New("client: sign-in response has no token")

// Auth is the unauthenticated part of the API.
type Auth struct {
	rest
}

// NewAuth creates an Auth client for baseURL. A nil httpClient means
// http.DefaultClient.
func NewAuth(baseURL string, httpClient *http.Client, logger *slog.Logger) *Auth {
	return &Auth{rest: newRest(baseURL, httpClient, logger)}
}

// Register creates an account. POST /signup
func (a *Auth) Register(ctx context.Context, email, password string) (*model.User, error) {
	var env model.UserEnvelope
	err := a.do(ctx, http.MethodPost, "/signup", model.Credentials{Email: email, Password: password}, &env)
	if err != nil {
		a.logger.Error("register failed", slog.String("email", email), slog.String("error", err.Error()))
		return nil, err
	}
	return &env.User, nil
}

// Authorize exchanges credentials for a token. POST /signin
//
// Storing the token is up to the caller.
func (a *Auth) Authorize(ctx context.Context, email, password string) (string, error) {
	var body model.TokenResponse
	err := a.do(ctx, http.MethodPost, "/signin", model.Credentials{Email: email, Password: password}, &body)
	if err == nil && body.Token == "" {
		err = ErrEmptyToken
	}
	if err != nil {
		a.logger.Error("authorize failed", slog.String("email", email), slog.String("error", err.Error()))
		return "", err
	}
	return body.Token, nil
}

// CheckToken returns the user the token belongs to. GET /users/me
func (a *Auth) CheckToken(ctx context.Context, token string) (*model.User, error) {
	authorised := a.rest
	authorised.http = withTokenSource(a.http, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	var env model.UserEnvelope
	if err := authorised.do(ctx, http.MethodGet, "/users/me", nil, &env); err != nil {
		a.logger.Error("token check failed", slog.String("error", err.Error()))
		return nil, err
	}
	if env.User.ID == "" && env.User.Email == "" {
		err := fmt.Errorf("client: GET /users/me: empty user")
		a.logger.Error("token check failed", slog.String("error", err.Error()))
		return nil, err
	}
	return &env.User, nil
}

// withTokenSource returns a copy of base whose requests carry
// "Authorization: Bearer <token>" from src, read on every request.
func withTokenSource(base *http.Client, src oauth2.TokenSource) *http.Client {
	c := *base
	c.Transport = &oauth2.Transport{Source: src, Base: base.Transport}
	return &c
}
