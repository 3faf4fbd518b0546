package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

type SlotStore struct{}

func NewSlotStore() *SlotStore {
	return &SlotStore{}
}

// InsertClaim writes the slot claim row. There is no pre-check query:
// the unique_game_position constraint is the sole uniqueness anchor,
// so two racing claims for the same normalized position yield exactly
// one success and one SlotTaken.
func (s *SlotStore) InsertClaim(ctx context.Context, db DB, claim *models.SlotClaim) error {
	query := `
		INSERT INTO slot_claims (game_id, position_key, participation_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := db.QueryRow(ctx, query, claim.GameID, claim.PositionKey, claim.ParticipationID).Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "unique_game_position" {
			return apperr.Newf(apperr.CodeSlotTaken, "position %s is already taken in game %d", claim.PositionKey, claim.GameID)
		}
		return fmt.Errorf("failed to insert slot claim: %w", err)
	}

	return nil
}

// ListClaims returns the claimed position keys of a game, held by
// non-canceled participations, in claim order.
func (s *SlotStore) ListClaims(ctx context.Context, db DB, gameID int64) ([]*models.SlotClaim, error) {
	query := `
		SELECT sc.id, sc.game_id, sc.position_key, sc.participation_id, sc.created_at
		FROM slot_claims sc
		JOIN participations p ON p.id = sc.participation_id
		WHERE sc.game_id = $1 AND p.status <> 'canceled'
		ORDER BY sc.created_at ASC
	`

	rows, err := db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.SlotClaim
	for rows.Next() {
		c := &models.SlotClaim{}
		err := rows.Scan(&c.ID, &c.GameID, &c.PositionKey, &c.ParticipationID, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}

	return claims, rows.Err()
}
