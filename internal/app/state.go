package app

import (
	"maps"
	"slices"

	"github.com/sakif/mesto/internal/model"
)

// SessionState is where the controller is in the sign-in lifecycle.
type SessionState int

const (
	Unauthenticated SessionState = iota
	CheckingSession
	Authenticated
	LoggingOut
)

func (s SessionState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case CheckingSession:
		return "checking-session"
	case Authenticated:
		return "authenticated"
	case LoggingOut:
		return "logging-out"
	default:
		return "unknown"
	}
}

// Route is the screen a view should show.
type Route string

const (
	RouteSignIn Route = "/signin"
	RouteSignUp Route = "/signup"
	RouteFeed   Route = "/"
)

// Popup is the one modal that is currently open. The concrete types below are
// the only implementations, so two popups can never be open at once.
type Popup interface {
	popup()
}

type (
	// PopupNone means no modal is open.
	PopupNone struct{}
	// PopupEditProfile is the name/about form.
	PopupEditProfile struct{}
	// PopupEditAvatar is the avatar link form.
	PopupEditAvatar struct{}
	// PopupAddPlace is the new card form.
	PopupAddPlace struct{}
	// PopupConfirmDelete asks before deleting Card.
	PopupConfirmDelete struct{ Card model.Card }
	// PopupImagePreview shows Card's image full size.
	PopupImagePreview struct{ Card model.Card }
	// PopupInfoTooltip reports the outcome of a sign-up or sign-in.
	PopupInfoTooltip struct{ Success bool }
)

func (PopupNone) popup()          {}
func (PopupEditProfile) popup()   {}
func (PopupEditAvatar) popup()    {}
func (PopupAddPlace) popup()      {}
func (PopupConfirmDelete) popup() {}
func (PopupImagePreview) popup()  {}
func (PopupInfoTooltip) popup()   {}

// State is everything a view needs to render. Views get copies from Snapshot
// or Subscribe and never share memory with the controller.
type State struct {
	Session SessionState
	Email   string
	Route   Route

	// User is nil until the feed has loaded.
	User  *model.User
	Cards []model.Card
	Popup Popup

	// PendingLikes holds the ids of cards with a like request in flight.
	// Views should disable the like control for them.
	PendingLikes map[string]bool

	// Version increases with every published change. A listener never
	// receives a lower Version after a higher one.
	Version uint64
}

func initialState() State {
	return State{
		Session:      Unauthenticated,
		Route:        RouteSignIn,
		Cards:        []model.Card{},
		Popup:        PopupNone{},
		PendingLikes: map[string]bool{},
	}
}

// clone returns a deep copy of s.
func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Cards = make([]model.Card, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c.Clone()
	}
	switch p := s.Popup.(type) {
	case PopupConfirmDelete:
		out.Popup = PopupConfirmDelete{Card: p.Card.Clone()}
	case PopupImagePreview:
		out.Popup = PopupImagePreview{Card: p.Card.Clone()}
	}
	out.PendingLikes = maps.Clone(s.PendingLikes)
	if out.PendingLikes == nil {
		out.PendingLikes = map[string]bool{}
	}
	return out
}

// CardByID returns the card with id from the feed.
func (s State) CardByID(id string) (model.Card, bool) {
	i := slices.IndexFunc(s.Cards, func(c model.Card) bool { return c.ID == id })
	if i < 0 {
		return model.Card{}, false
	}
	return s.Cards[i], true
}

// UserID is the current user's id, or "" before the feed has loaded.
func (s State) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
