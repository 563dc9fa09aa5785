// Package app holds the view state of the places client and one method per
// user action.
//
// The Controller owns the session, the current user, the feed, the open popup
// and the route. Views never mutate any of it: they call an action and render
// the snapshots they receive from Subscribe.
//
// SESSION MACHINE:
//
//	Unauthenticated ──Start (token)──▶ CheckingSession ──ok──▶ Authenticated
//	       ▲                                  │ fail                 │
//	       ├──────────────────────────────────┘                      │
//	       └────────────── LoggingOut ◀──────── Logout ──────────────┘
//
// Login moves from any state straight to Authenticated.
//
// Network calls are made without holding the lock. Each session change bumps
// an epoch and forgets pending likes; a result that settles under an older
// epoch is dropped with ErrSessionChanged instead of leaking into the new
// session. That includes a sign-in whose Authorize call outlives a Logout.
package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/session"
)

var (
	// ErrNotAuthenticated is returned by resource actions outside the
	// Authenticated state. No request is sent.
	ErrNotAuthenticated = errors.New("app: not signed in")

	// ErrLikeInFlight is returned by ToggleLike while an earlier like request
	// for the same card has not settled.
	ErrLikeInFlight = errors.New("app: like request already in flight")

	// ErrSessionChanged means the session was replaced (logout or a new
	// login) while a request was in flight. Its result was discarded.
	ErrSessionChanged = errors.New("app: session changed while request was in flight")

	// ErrFeedNotLoaded is returned by ToggleLike before the current user is
	// known, since the like state of a card cannot be told.
	ErrFeedNotLoaded = errors.New("app: feed not loaded")
)

// Authenticator is the unauthenticated API. *client.Auth implements it.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	Authorize(ctx context.Context, email, password string) (string, error)
	CheckToken(ctx context.Context, token string) (*model.User, error)
}

// Resources is the authenticated API. *client.API implements it.
type Resources interface {
	GetUser(ctx context.Context) (*model.User, error)
	GetCards(ctx context.Context) ([]model.Card, error)
	ChangeLikeStatus(ctx context.Context, cardID string, isLiked bool) (*model.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
	AddCard(ctx context.Context, name, link string) (*model.Card, error)
	SetUserInfo(ctx context.Context, name, about string) (*model.User, error)
	SetUserAvatar(ctx context.Context, avatar string) (*model.User, error)
}

// TokenStore persists the bearer token. *session.Store implements it.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Controller is safe for concurrent use.
type Controller struct {
	auth   Authenticator
	api    Resources
	tokens TokenStore
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	epoch     uint64
	version   uint64
	listeners map[int]func(State)
	nextID    int

	// tokenMu orders token writes of Login and Logout.
	tokenMu sync.Mutex

	// notifyMu serialises delivery; delivered is the last Version handed out.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewController creates a Controller in the Unauthenticated state on the
// sign-in route. Call Start to pick up a stored session.
func NewController(auth Authenticator, api Resources, tokens TokenStore, logger *slog.Logger) *Controller {
	return &Controller{
		auth:      auth,
		api:       api,
		tokens:    tokens,
		logger:    logger,
		state:     initialState(),
		listeners: make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, without the state lock held,
// and one delivery at a time. A snapshot older than one already delivered is
// skipped. fn may call Snapshot but must not call actions. The returned func
// unsubscribes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// update applies fn under the lock and notifies listeners.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.publishLocked()
}

// updateIf applies fn only if the session epoch is still epoch.
func (c *Controller) updateIf(epoch uint64, fn func(s *State)) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrSessionChanged
	}
	fn(&c.state)
	c.publishLocked()
	return nil
}

// publishLocked stamps a new version, releases the lock and hands the
// snapshot to every listener unless a newer one got there first.
func (c *Controller) publishLocked() {
	c.version++
	c.state.Version = c.version
	snap := c.state.clone()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Version <= c.delivered {
		return
	}
	c.delivered = snap.Version
	for _, fn := range listeners {
		fn(snap)
	}
}

// bumpLocked starts a new session epoch. Likes in flight belong to the old
// one, so their pending marks go too.
func (c *Controller) bumpLocked(s *State) uint64 {
	c.epoch++
	s.PendingLikes = map[string]bool{}
	return c.epoch
}

// currentEpoch reads the epoch under the lock.
func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// =========================================================================
// SESSION
// =========================================================================

// Start restores a stored session. With no token it settles in
// Unauthenticated on the sign-in route. A token that fails the check is left
// in storage; only Logout removes it.
func (c *Controller) Start(ctx context.Context) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.update(func(s *State) {
			s.Session = Unauthenticated
			s.Route = RouteSignIn
		})
		if errors.Is(err, session.ErrNoToken) {
			return nil
		}
		c.logger.Error("reading stored token", slog.String("error", err.Error()))
		return err
	}

	var epoch uint64
	c.update(func(s *State) {
		epoch = c.bumpLocked(s)
		s.Session = CheckingSession
	})

	user, err := c.auth.CheckToken(ctx, token)
	if err == nil && user == nil {
		err = errors.New("app: token check returned no user")
	}
	if err != nil {
		c.logger.Warn("stored session rejected", slog.String("error", err.Error()))
		if stale := c.updateIf(epoch, func(s *State) {
			s.Session = Unauthenticated
			s.Route = RouteSignIn
		}); stale != nil {
			return stale
		}
		return err
	}

	if err := c.updateIf(epoch, func(s *State) {
		s.Session = Authenticated
		s.Email = user.Email
		s.Route = RouteFeed
	}); err != nil {
		return err
	}

	return c.loadFeed(ctx, epoch)
}

// Login signs in, stores the token and loads the feed. On failure the info
// tooltip opens with Success false and the session is unchanged. A Logout or
// another session change while Authorize is in flight wins: nothing is stored
// and ErrSessionChanged is returned.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	started := c.currentEpoch()

	token, err := c.auth.Authorize(ctx, email, password)
	if err != nil {
		c.logger.Error("login failed", slog.String("email", email), slog.String("error", err.Error()))
		if stale := c.updateIf(started, func(s *State) { s.Popup = PopupInfoTooltip{Success: false} }); stale != nil {
			return stale
		}
		return err
	}

	epoch, err := c.commitLogin(ctx, started, email, token)
	if err != nil {
		return err
	}
	return c.loadFeed(ctx, epoch)
}

// commitLogin stores token and switches to the new session, unless the
// session changed since started. A Logout that bumps the epoch during
// SetToken waits on tokenMu and clears the token afterwards.
func (c *Controller) commitLogin(ctx context.Context, started uint64, email, token string) (uint64, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.currentEpoch() != started {
		c.logger.Info("discarding sign-in after session change", slog.String("email", email))
		return 0, ErrSessionChanged
	}
	if err := c.tokens.SetToken(ctx, token); err != nil {
		c.logger.Error("storing token", slog.String("email", email), slog.String("error", err.Error()))
		c.update(func(s *State) { s.Popup = PopupInfoTooltip{Success: false} })
		return 0, err
	}

	var epoch uint64
	err := c.updateIf(started, func(s *State) {
		*s = initialState()
		epoch = c.bumpLocked(s)
		s.Session = Authenticated
		s.Email = email
		s.Route = RouteFeed
	})
	return epoch, err
}

// Logout forgets the session from whatever state the controller is in. The
// token is removed from storage and every piece of view state is reset. No
// request is sent.
//
// A storage error is returned, but the in-memory session is cleared anyway.
//
// A Login that starts after Logout and finishes first keeps its session.
func (c *Controller) Logout(ctx context.Context) error {
	var epoch uint64
	c.update(func(s *State) {
		epoch = c.bumpLocked(s)
		s.Session = LoggingOut
	})

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.currentEpoch() != epoch {
		return nil
	}

	err := c.tokens.Clear(ctx)
	if err != nil {
		c.logger.Error("clearing stored token", slog.String("error", err.Error()))
	}

	_ = c.updateIf(epoch, func(s *State) { *s = initialState() })
	return err
}

// Register creates an account and opens the info tooltip with the outcome.
// Success also moves to the sign-in route. The session is never touched.
func (c *Controller) Register(ctx context.Context, email, password string) error {
	if _, err := c.auth.Register(ctx, email, password); err != nil {
		c.logger.Error("registration failed", slog.String("email", email), slog.String("error", err.Error()))
		c.update(func(s *State) { s.Popup = PopupInfoTooltip{Success: false} })
		return err
	}

	c.update(func(s *State) {
		s.Popup = PopupInfoTooltip{Success: true}
		s.Route = RouteSignIn
	})
	return nil
}

// Navigate switches route. The feed needs a session; without one the sign-in
// route is shown instead.
func (c *Controller) Navigate(route Route) {
	c.update(func(s *State) {
		if route == RouteFeed && s.Session != Authenticated {
			route = RouteSignIn
		}
		s.Route = route
	})
}

// Reload fetches the user and the feed again.
func (c *Controller) Reload(ctx context.Context) error {
	epoch, _, err := c.session()
	if err != nil {
		return err
	}
	return c.loadFeed(ctx, epoch)
}

// loadFeed fetches the user and the cards concurrently. Either failure
// cancels the other and leaves both untouched.
func (c *Controller) loadFeed(ctx context.Context, epoch uint64) error {
	var (
		user  *model.User
		cards []model.Card
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.api.GetUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = c.api.GetCards(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("loading feed", slog.String("error", err.Error()))
		return err
	}

	return c.updateIf(epoch, func(s *State) {
		s.User = user
		if user != nil && user.Email != "" {
			s.Email = user.Email
		}
		s.Cards = cards
		if s.Cards == nil {
			s.Cards = []model.Card{}
		}
	})
}

// session returns the epoch and user id of an authenticated session, or
// ErrNotAuthenticated.
func (c *Controller) session() (uint64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Session != Authenticated {
		return 0, "", ErrNotAuthenticated
	}
	return c.epoch, c.state.UserID(), nil
}

// =========================================================================
// POPUPS
// =========================================================================

func (c *Controller) setPopup(p Popup) {
	c.update(func(s *State) { s.Popup = p })
}

// OpenEditProfile opens the profile form.
func (c *Controller) OpenEditProfile() { c.setPopup(PopupEditProfile{}) }

// OpenEditAvatar opens the avatar form.
func (c *Controller) OpenEditAvatar() { c.setPopup(PopupEditAvatar{}) }

// OpenAddPlace opens the new card form.
func (c *Controller) OpenAddPlace() { c.setPopup(PopupAddPlace{}) }

// OpenConfirmDelete asks for confirmation before deleting card.
func (c *Controller) OpenConfirmDelete(card model.Card) {
	c.setPopup(PopupConfirmDelete{Card: card.Clone()})
}

// OpenImagePreview shows card's image.
func (c *Controller) OpenImagePreview(card model.Card) {
	c.setPopup(PopupImagePreview{Card: card.Clone()})
}

// ClosePopups closes whatever is open and drops the selected card.
func (c *Controller) ClosePopups() { c.setPopup(PopupNone{}) }

// =========================================================================
// RESOURCES
// =========================================================================

// ToggleLike likes card, or unlikes it when the current user already does.
// The server's copy of the card replaces the local one.
func (c *Controller) ToggleLike(ctx context.Context, card model.Card) error {
	c.mu.Lock()
	if c.state.Session != Authenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if c.state.User == nil {
		c.mu.Unlock()
		return ErrFeedNotLoaded
	}
	if c.state.PendingLikes[card.ID] {
		c.mu.Unlock()
		return ErrLikeInFlight
	}
	epoch, userID := c.epoch, c.state.UserID()
	c.state.PendingLikes[card.ID] = true
	c.publishLocked()

	updated, err := c.api.ChangeLikeStatus(ctx, card.ID, card.LikedBy(userID))

	stale := c.updateIf(epoch, func(s *State) {
		delete(s.PendingLikes, card.ID)
		if err == nil && updated != nil {
			replaceCard(s.Cards, card.ID, *updated)
		}
	})
	if err != nil {
		c.logger.Error("changing like", slog.String("card", card.ID), slog.String("error", err.Error()))
		return err
	}
	return stale
}

// DeleteCard deletes card and removes it from the feed. Popups close.
func (c *Controller) DeleteCard(ctx context.Context, card model.Card) error {
	epoch, _, err := c.session()
	if err != nil {
		return err
	}

	if err := c.api.DeleteCard(ctx, card.ID); err != nil {
		c.logger.Error("deleting card", slog.String("card", card.ID), slog.String("error", err.Error()))
		return err
	}

	return c.updateIf(epoch, func(s *State) {
		s.Cards = slices.DeleteFunc(s.Cards, func(x model.Card) bool { return x.ID == card.ID })
		s.Popup = PopupNone{}
	})
}

// AddCard creates a card and puts it at the top of the feed. Popups close.
func (c *Controller) AddCard(ctx context.Context, name, link string) error {
	epoch, _, err := c.session()
	if err != nil {
		return err
	}

	card, err := c.api.AddCard(ctx, name, link)
	if err != nil {
		c.logger.Error("adding card", slog.String("name", name), slog.String("error", err.Error()))
		return err
	}

	return c.updateIf(epoch, func(s *State) {
		s.Cards = append([]model.Card{*card}, s.Cards...)
		s.Popup = PopupNone{}
	})
}

// UpdateProfile sets name and about. Popups close.
func (c *Controller) UpdateProfile(ctx context.Context, name, about string) error {
	return c.replaceUser(ctx, "updating profile", func(ctx context.Context) (*model.User, error) {
		return c.api.SetUserInfo(ctx, name, about)
	})
}

// UpdateAvatar sets the avatar link. Popups close.
func (c *Controller) UpdateAvatar(ctx context.Context, link string) error {
	return c.replaceUser(ctx, "updating avatar", func(ctx context.Context) (*model.User, error) {
		return c.api.SetUserAvatar(ctx, link)
	})
}

func (c *Controller) replaceUser(ctx context.Context, what string, call func(context.Context) (*model.User, error)) error {
	epoch, _, err := c.session()
	if err != nil {
		return err
	}

	user, err := call(ctx)
	if err != nil {
		c.logger.Error(what, slog.String("error", err.Error()))
		return err
	}

	return c.updateIf(epoch, func(s *State) {
		s.User = user
		s.Popup = PopupNone{}
	})
}

// replaceCard swaps the card with id for updated, in place.
func replaceCard(cards []model.Card, id string, updated model.Card) {
	for i := range cards {
		if cards[i].ID == id {
			cards[i] = updated
		}
	}
}
