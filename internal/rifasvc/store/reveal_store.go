package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

// RevealStore bundles the reads and the one-shot reveal update used
// by the reveal flow.
type RevealStore struct {
	db             *pgxpool.Pool
	cards          *CardStore
	participations *ParticipationStore
}

func NewRevealStore(db *pgxpool.Pool) *RevealStore {
	return &RevealStore{
		db:             db,
		cards:          NewCardStore(),
		participations: NewParticipationStore(),
	}
}

func (s *RevealStore) GetCardByID(ctx context.Context, cardID string) (*models.ScratchCard, error) {
	return s.cards.GetCardByID(ctx, s.db, cardID)
}

func (s *RevealStore) GetParticipation(ctx context.Context, id string) (*models.Participation, error) {
	return s.participations.GetByID(ctx, s.db, id)
}

func (s *RevealStore) GetTierByID(ctx context.Context, tierID int64) (*models.PrizeTier, error) {
	t := &models.PrizeTier{}
	err := s.db.QueryRow(ctx, `
		SELECT id, game_id, order_no, name, kind, share, unit_value
		FROM prize_tiers
		WHERE id = $1
	`, tierID).Scan(&t.ID, &t.GameID, &t.OrderNo, &t.Name, &t.Kind, &t.Share, &t.UnitValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prize tier: %w", err)
	}
	return t, nil
}

func (s *RevealStore) MarkRevealed(ctx context.Context, cardID string) (*time.Time, bool, error) {
	return s.cards.MarkRevealed(ctx, s.db, cardID)
}
