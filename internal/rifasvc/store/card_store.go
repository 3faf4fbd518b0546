package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

type CardStore struct{}

func NewCardStore() *CardStore {
	return &CardStore{}
}

// InsertCards writes the commitment rows of a freshly issued batch.
// Runs on the issuance transaction's executor.
func (s *CardStore) InsertCards(ctx context.Context, db DB, cards []*models.ScratchCard) error {
	for _, c := range cards {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		err := db.QueryRow(ctx, `
			INSERT INTO scratch_cards (id, game_id, card_index, participation_id, tier_id, seed, commitment_hash, revealed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
			RETURNING created_at
		`, c.ID, c.GameID, c.CardIndex, c.ParticipationID, c.TierID, c.Seed, c.CommitmentHash).Scan(&c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert card %d: %w", c.CardIndex, err)
		}
	}
	return nil
}

// GetCardByID loads a card including its commitment fields. Callers
// must not expose seed, hash or tier before the card is revealed.
func (s *CardStore) GetCardByID(ctx context.Context, db DB, cardID string) (*models.ScratchCard, error) {
	query := `
		SELECT id, game_id, card_index, participation_id, tier_id, seed, commitment_hash, revealed, revealed_at, created_at
		FROM scratch_cards
		WHERE id = $1
	`

	c := &models.ScratchCard{}
	err := db.QueryRow(ctx, query, cardID).Scan(
		&c.ID,
		&c.GameID,
		&c.CardIndex,
		&c.ParticipationID,
		&c.TierID,
		&c.Seed,
		&c.CommitmentHash,
		&c.Revealed,
		&c.RevealedAt,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return c, nil
}

// MarkRevealed flips revealed false -> true and stamps the reveal
// time in one conditional update. False means the card was already
// revealed (or does not exist): the one-shot guarantee.
func (s *CardStore) MarkRevealed(ctx context.Context, db DB, cardID string) (*time.Time, bool, error) {
	var revealedAt time.Time
	err := db.QueryRow(ctx, `
		UPDATE scratch_cards
		SET revealed = TRUE, revealed_at = now()
		WHERE id = $1 AND revealed = FALSE
		RETURNING revealed_at
	`, cardID).Scan(&revealedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to mark card revealed: %w", err)
	}
	return &revealedAt, true, nil
}
