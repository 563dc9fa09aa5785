// Package repository declares the storage ports used by the rest of the code.
//
// Two very different consumers live here:
//   - the local API persists users and cards (UserRepository, CardRepository)
//   - the client persists its bearer token (KeyValueStore), the way a browser
//     front-end would use localStorage
//
// The sqlite package implements all three.
package repository

import (
	"context"

	"github.com/sakif/mesto/internal/model"
)

// UserRepository stores accounts of the local API.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, about string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error)
}

// CardRepository stores the shared card feed.
//
// List returns cards newest first. AddLike and RemoveLike are idempotent and
// return the card as it is after the change.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id string) (*model.Card, error)
	List(ctx context.Context) ([]model.Card, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, cardID, userID string) (*model.Card, error)
	RemoveLike(ctx context.Context, cardID, userID string) (*model.Card, error)
}

// KeyValueStore is durable string storage keyed by name.
//
// GetItem returns ("", false, nil) for a missing key. RemoveItem on a missing
// key is not an error.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
