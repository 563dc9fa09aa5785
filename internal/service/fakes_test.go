package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================
//
// In-memory implementations of the repository interfaces. Hand-written fakes
// keep the tests readable: you can see exactly what each one does.

var (
	_ repository.UserRepository = (*fakeUserRepo)(nil)
	_ repository.CardRepository = (*fakeCardRepo)(nil)
)

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
	// set to simulate a database failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id, name, about string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.Name, u.About = name, about
	return f.GetByID(ctx, id)
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.Avatar = avatar
	return f.GetByID(ctx, id)
}

type fakeCardRepo struct {
	cards  []*model.Card // newest first
	nextID int
	err    error
}

func (f *fakeCardRepo) Create(_ context.Context, card *model.Card) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	card.ID = fmt.Sprintf("card-%d", f.nextID)
	card.Likes = []string{}
	stored := card.Clone()
	f.cards = append([]*model.Card{&stored}, f.cards...)
	return nil
}

func (f *fakeCardRepo) find(id string) (int, bool) {
	for i, c := range f.cards {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (f *fakeCardRepo) GetByID(_ context.Context, id string) (*model.Card, error) {
	i, ok := f.find(id)
	if !ok {
		return nil, apperror.NotFound("card", id)
	}
	c := f.cards[i].Clone()
	return &c, nil
}

func (f *fakeCardRepo) List(_ context.Context) ([]model.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Card, 0, len(f.cards))
	for _, c := range f.cards {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (f *fakeCardRepo) Delete(_ context.Context, id string) error {
	i, ok := f.find(id)
	if !ok {
		return apperror.NotFound("card", id)
	}
	f.cards = slices.Delete(f.cards, i, i+1)
	return nil
}

func (f *fakeCardRepo) AddLike(ctx context.Context, cardID, userID string) (*model.Card, error) {
	i, ok := f.find(cardID)
	if !ok {
		return nil, apperror.NotFound("card", cardID)
	}
	if !f.cards[i].LikedBy(userID) {
		f.cards[i].Likes = append(f.cards[i].Likes, userID)
	}
	return f.GetByID(ctx, cardID)
}

func (f *fakeCardRepo) RemoveLike(ctx context.Context, cardID, userID string) (*model.Card, error) {
	i, ok := f.find(cardID)
	if !ok {
		return nil, apperror.NotFound("card", cardID)
	}
	f.cards[i].Likes = slices.DeleteFunc(f.cards[i].Likes, func(id string) bool { return id == userID })
	return f.GetByID(ctx, cardID)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
