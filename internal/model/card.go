package model

import (
	"encoding/json"
	"slices"
	"time"
)

// Card is one place in the shared feed.
//
// Owner is the id of the user who created the card; Likes holds the ids of
// every user who liked it. Likes behaves as a set: the API never stores the
// same id twice.
type Card struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	Owner     string    `json:"owner"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether userID is in the card's like set.
// It is a linear scan over Likes.
func (c Card) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy of c that shares no memory with it.
func (c Card) Clone() Card {
	c.Likes = slices.Clone(c.Likes)
	return c
}

// NewCard is the request body of POST /cards.
type NewCard struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// CardEnvelope is the {"card": {...}} body returned by card mutations.
// Like UserEnvelope it also accepts a bare card.
type CardEnvelope struct {
	Card Card `json:"card"`
}

func (e *CardEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Card *Card `json:"card"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Card != nil {
		e.Card = *wrapped.Card
		return nil
	}
	return json.Unmarshal(data, &e.Card)
}

// CardList is the body of GET /cards: a bare JSON array, or {"cards": [...]}.
type CardList []Card

func (l *CardList) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err == nil {
		*l = cards
		return nil
	}
	var wrapped struct {
		Cards []Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Cards
	return nil
}
