// Package model defines the data structures used throughout the application.
//
// The same types travel in both directions: the local API encodes them into
// responses and the client decodes them back. JSON field names follow the wire
// format of the places API ("_id", "about", "avatar", ...).
package model

import (
	"encoding/json"
	"time"
)

// User is a registered account as exposed by the API.
//
// PasswordHash never leaves the server: the `json:"-"` tag keeps it out of
// every response, and the client never fills it in.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	About        string    `json:"about"`
	Avatar       string    `json:"avatar"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// Default profile values given to freshly registered users.
const (
	DefaultUserName   = "Jacques Cousteau"
	DefaultUserAbout  = "Explorer"
	DefaultUserAvatar = "https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png"
)

// UserEnvelope is the {"user": {...}} body returned by the user endpoints.
//
// Some servers answer with the bare user object instead; UnmarshalJSON accepts
// both so callers never have to care.
type UserEnvelope struct {
	User User `json:"user"`
}

func (e *UserEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.User != nil {
		e.User = *wrapped.User
		return nil
	}
	return json.Unmarshal(data, &e.User)
}

// TokenResponse is the body of a successful sign-in.
type TokenResponse struct {
	Token string `json:"token"`
}

// Credentials is the request body for sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the request body of PATCH /users/me.
type ProfileUpdate struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

// AvatarUpdate is the request body of PATCH /users/me/avatar.
type AvatarUpdate struct {
	Avatar string `json:"avatar"`
}

// Message is the body of responses that carry nothing but a confirmation,
// e.g. DELETE /cards/{id}.
type Message struct {
	Message string `json:"message"`
}
