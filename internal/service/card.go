package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

// CardService handles the shared card feed.
type CardService struct {
	cards  repository.CardRepository
	logger *slog.Logger
}

// NewCardService creates a CardService.
func NewCardService(cards repository.CardRepository, logger *slog.Logger) *CardService {
	return &CardService{cards: cards, logger: logger}
}

// List returns the whole feed, newest first. There is no pagination.
func (s *CardService) List(ctx context.Context) ([]model.Card, error) {
	cards, err := s.cards.List(ctx)
	if err != nil {
		s.logger.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	return cards, nil
}

// Create validates and stores a card owned by ownerID.
func (s *CardService) Create(ctx context.Context, ownerID, name, link string) (*model.Card, error) {
	name, err := validateText("name", name)
	if err != nil {
		return nil, err
	}
	link, err = validateLink("link", link)
	if err != nil {
		return nil, err
	}

	card := &model.Card{Name: name, Link: link, Owner: ownerID}
	if err := s.cards.Create(ctx, card); err != nil {
		s.logger.Error("failed to create card",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating card: %w", err)
	}

	s.logger.Info("card created",
		slog.String("id", card.ID),
		slog.String("owner", ownerID),
	)
	return card, nil
}

// Delete removes a card. Only its owner may do so; anyone else gets
// apperror.ErrForbidden.
func (s *CardService) Delete(ctx context.Context, userID, cardID string) error {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return apperror.ValidationFailed("id", "card ID is required")
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.Owner != userID {
		return apperror.Forbidden("only the owner can delete a card")
	}

	if err := s.cards.Delete(ctx, cardID); err != nil {
		return err
	}

	s.logger.Info("card deleted", slog.String("id", cardID))
	return nil
}

// Like adds userID to the card's likes and returns the updated card.
func (s *CardService) Like(ctx context.Context, userID, cardID string) (*model.Card, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, apperror.ValidationFailed("id", "card ID is required")
	}
	return s.cards.AddLike(ctx, cardID, userID)
}

// Unlike removes userID from the card's likes and returns the updated card.
func (s *CardService) Unlike(ctx context.Context, userID, cardID string) (*model.Card, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, apperror.ValidationFailed("id", "card ID is required")
	}
	return s.cards.RemoveLike(ctx, cardID, userID)
}
