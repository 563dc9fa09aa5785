package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

var _ repository.CardRepository = (*CardDB)(nil)

// CardDB stores the card feed and its likes. Get one from DB.Cards.
//
// Likes live in their own table keyed by (card_id, user_id). Every read
// re-assembles card.Likes from it, ordered by when each like was given.
type CardDB struct {
	conn *sql.DB
}

// Create inserts a card. ID and CreatedAt are generated here; Likes starts
// empty.
func (c *CardDB) Create(ctx context.Context, card *model.Card) error {
	card.ID = xid.New().String()
	card.CreatedAt = time.Now().UTC()
	card.Likes = []string{}

	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO cards (id, name, link, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		card.ID,
		card.Name,
		card.Link,
		card.Owner,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting card %q: %w", card.Name, err)
	}
	return nil
}

// GetByID retrieves one card with its likes.
func (c *CardDB) GetByID(ctx context.Context, id string) (*model.Card, error) {
	var card model.Card
	err := c.conn.QueryRowContext(ctx,
		`SELECT id, name, link, owner_id, created_at FROM cards WHERE id = ?`, id,
	).Scan(&card.ID, &card.Name, &card.Link, &card.Owner, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("card", id)
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", id, err)
	}

	likes, err := c.likesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	card.Likes = likes
	return &card, nil
}

// List returns every card, newest first. Two queries in total: one for the
// cards, one for all likes.
func (c *CardDB) List(ctx context.Context) ([]model.Card, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT id, name, link, owner_id, created_at
		 FROM cards
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0)
	index := make(map[string]int)
	for rows.Next() {
		var card model.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.Link, &card.Owner, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		card.Likes = []string{}
		index[card.ID] = len(cards)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}

	likeRows, err := c.conn.QueryContext(ctx,
		`SELECT card_id, user_id FROM card_likes ORDER BY liked_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing likes: %w", err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var cardID, userID string
		if err := likeRows.Scan(&cardID, &userID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like row: %w", err)
		}
		if i, ok := index[cardID]; ok {
			cards[i].Likes = append(cards[i].Likes, userID)
		}
	}
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likes: %w", err)
	}

	return cards, nil
}

// Delete removes a card; its likes go with it (ON DELETE CASCADE).
func (c *CardDB) Delete(ctx context.Context, id string) error {
	result, err := c.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting card %s: %w", id, err)
	}
	return requireOneRow(result, "card", id)
}

// AddLike puts userID into the card's like set. Liking twice is a no-op.
func (c *CardDB) AddLike(ctx context.Context, cardID, userID string) (*model.Card, error) {
	if _, err := c.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	_, err := c.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO card_likes (card_id, user_id, liked_at) VALUES (?, ?, ?)`,
		cardID, userID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: liking card %s: %w", cardID, err)
	}
	return c.GetByID(ctx, cardID)
}

// RemoveLike takes userID out of the card's like set. Unliking a card that was
// never liked is a no-op.
func (c *CardDB) RemoveLike(ctx context.Context, cardID, userID string) (*model.Card, error) {
	if _, err := c.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	_, err := c.conn.ExecContext(ctx,
		`DELETE FROM card_likes WHERE card_id = ? AND user_id = ?`, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: unliking card %s: %w", cardID, err)
	}
	return c.GetByID(ctx, cardID)
}

func (c *CardDB) likesOf(ctx context.Context, cardID string) ([]string, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT user_id FROM card_likes WHERE card_id = ? ORDER BY liked_at, rowid`, cardID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading likes of %s: %w", cardID, err)
	}
	defer rows.Close()

	likes := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like: %w", err)
		}
		likes = append(likes, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likes of %s: %w", cardID, err)
	}
	return likes, nil
}
