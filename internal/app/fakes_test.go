package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/session"
)

// =========================================================================
// FAKES
// =========================================================================

var errBoom = errors.New("boom")

var (
	_ Authenticator = (*fakeAuth)(nil)
	_ Resources     = (*fakeAPI)(nil)
	_ TokenStore    = (*fakeTokens)(nil)
)

// fakeAuth accepts one set of credentials and one token.
type fakeAuth struct {
	mu          sync.Mutex
	email       string
	password    string
	token       string
	user        model.User
	registerErr error
	checkErr    error

	// checkStarted/checkRelease block CheckToken when set. Closing
	// checkRelease lets every later call through.
	checkStarted chan struct{}
	checkRelease chan struct{}

	// authStarted/authRelease do the same for Authorize.
	authStarted chan struct{}
	authRelease chan struct{}

	registered []string
}

func (f *fakeAuth) Register(_ context.Context, email, _ string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, email)
	return &model.User{ID: "new", Email: email}, nil
}

func (f *fakeAuth) Authorize(_ context.Context, email, password string) (string, error) {
	if f.authStarted != nil {
		signal(f.authStarted)
		<-f.authRelease
	}
	if email != f.email || password != f.password {
		return "", &apperror.APIError{Status: 401, Message: "wrong email or password"}
	}
	return f.token, nil
}

func (f *fakeAuth) CheckToken(_ context.Context, token string) (*model.User, error) {
	if f.checkStarted != nil {
		signal(f.checkStarted)
		<-f.checkRelease
	}
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if token != f.token {
		return nil, &apperror.APIError{Status: 401, Message: "authorization required"}
	}
	u := f.user
	return &u, nil
}

// fakeAPI is a tiny in-memory places API for one user.
type fakeAPI struct {
	mu     sync.Mutex
	user   model.User
	cards  []model.Card
	nextID int
	calls  []string

	getUserErr  error
	getCardsErr error
	mutateErr   error

	// started/release block mutating calls when set, until release is closed.
	started chan struct{}
	release chan struct{}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeAPI) wait() {
	if f.started != nil {
		signal(f.started)
		<-f.release
	}
}

// signal does a non-blocking send; blocking channels are created with a
// buffer of one.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (f *fakeAPI) GetUser(context.Context) (*model.User, error) {
	f.record("GetUser")
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) GetCards(context.Context) ([]model.Card, error) {
	f.record("GetCards")
	if f.getCardsErr != nil {
		return nil, f.getCardsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Card, len(f.cards))
	for i, c := range f.cards {
		out[i] = c.Clone()
	}
	return out, nil
}

func (f *fakeAPI) ChangeLikeStatus(_ context.Context, cardID string, isLiked bool) (*model.Card, error) {
	f.record(fmt.Sprintf("ChangeLikeStatus %s %t", cardID, isLiked))
	f.wait()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cards {
		if f.cards[i].ID != cardID {
			continue
		}
		if isLiked {
			f.cards[i].Likes = slices.DeleteFunc(f.cards[i].Likes, func(id string) bool { return id == f.user.ID })
		} else if !f.cards[i].LikedBy(f.user.ID) {
			f.cards[i].Likes = append(f.cards[i].Likes, f.user.ID)
		}
		c := f.cards[i].Clone()
		return &c, nil
	}
	return nil, &apperror.APIError{Status: 404, Message: "card not found"}
}

func (f *fakeAPI) DeleteCard(_ context.Context, cardID string) error {
	f.record("DeleteCard " + cardID)
	f.wait()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards = slices.DeleteFunc(f.cards, func(c model.Card) bool { return c.ID == cardID })
	return nil
}

func (f *fakeAPI) AddCard(_ context.Context, name, link string) (*model.Card, error) {
	f.record("AddCard " + name)
	f.wait()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	card := model.Card{ID: fmt.Sprintf("srv-%d", f.nextID), Name: name, Link: link, Owner: f.user.ID, Likes: []string{}}
	f.cards = append([]model.Card{card}, f.cards...)
	return &card, nil
}

func (f *fakeAPI) SetUserInfo(_ context.Context, name, about string) (*model.User, error) {
	f.record("SetUserInfo")
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user.Name, f.user.About = name, about
	u := f.user
	return &u, nil
}

func (f *fakeAPI) SetUserAvatar(_ context.Context, avatar string) (*model.User, error) {
	f.record("SetUserAvatar")
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user.Avatar = avatar
	u := f.user
	return &u, nil
}

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	mu       sync.Mutex
	token    string
	clearErr error
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", session.ErrNoToken
	}
	return f.token, nil
}

func (f *fakeTokens) SetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return f.clearErr
}

func (f *fakeTokens) stored() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// harness bundles a controller with its fakes.
type harness struct {
	c      *Controller
	auth   *fakeAuth
	api    *fakeAPI
	tokens *fakeTokens
}

func newHarness() *harness {
	me := model.User{ID: "me", Name: "Jacques", About: "Explorer", Email: "a@b.com"}
	h := &harness{
		auth: &fakeAuth{email: "a@b.com", password: "pw", token: "tok-1", user: me},
		api: &fakeAPI{
			user: me,
			cards: []model.Card{
				{ID: "c1", Name: "Lake", Owner: "me", Likes: []string{}},
				{ID: "c2", Name: "Hill", Owner: "other", Likes: []string{"other"}},
				{ID: "c3", Name: "Sea", Owner: "other", Likes: []string{"me"}},
			},
		},
		tokens: &fakeTokens{},
	}
	h.c = NewController(h.auth, h.api, h.tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h
}

func cardIDs(cards []model.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
