// Package session keeps the bearer token between runs.
//
// The token lives in a repository.KeyValueStore under the fixed key "jwt".
// Nothing else about the session is persisted: who is signed in is worked
// out again from the token on every start.
package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/sakif/mesto/internal/repository"
)

// TokenKey is the storage key of the bearer token.
const TokenKey = "jwt"

// ErrNoToken means no token is stored. Resource calls fail with it before any
// request is sent.
var ErrNoToken = errors.New("session: no token stored")

// Store reads and writes the token.
type Store struct {
	kv repository.KeyValueStore
}

// NewStore creates a Store over kv.
func NewStore(kv repository.KeyValueStore) *Store {
	return &Store{kv: kv}
}

// Token returns the stored token, or ErrNoToken.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.kv.GetItem(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("session: reading token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// SetToken replaces the stored token. An empty token is rejected.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session: refusing to store an empty token")
	}
	if err := s.kv.SetItem(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("session: storing token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing when nothing is stored succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, TokenKey); err != nil {
		return fmt.Errorf("session: clearing token: %w", err)
	}
	return nil
}

// TokenSource returns an oauth2.TokenSource that reads the store each time a
// token is needed. ctx bounds those reads.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeSource{ctx: ctx, store: s}
}

type storeSource struct {
	ctx   context.Context
	store *Store
}

// Token implements oauth2.TokenSource. The stored JWT carries its own expiry,
// so the returned token has none and oauth2 never tries to refresh it.
func (s *storeSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
