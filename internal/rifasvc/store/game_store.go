package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

// CreateGame inserts the game, its prize tiers and, for scratch
// games, the stock counter row, in one transaction.
func (s *GameStore) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO games (name, kind, organizer_id, unit_price, capacity, grid_rows, grid_cols, per_buyer_limit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		game.Name, game.Kind, game.OrganizerID, game.UnitPrice,
		game.Capacity, game.GridRows, game.GridCols, game.PerBuyerLimit,
		models.GameStatusDraft,
	).Scan(&game.ID, &game.Status, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	for _, t := range game.Tiers {
		t.GameID = game.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO prize_tiers (game_id, order_no, name, kind, share, unit_value)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, t.GameID, t.OrderNo, t.Name, t.Kind, t.Share, t.UnitValue).Scan(&t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create prize tier %q: %w", t.Name, err)
		}
	}

	if game.Kind == models.GameKindScratch {
		_, err = tx.Exec(ctx, `
			INSERT INTO scratch_stocks (game_id, total_stock, remaining, next_index)
			VALUES ($1, $2, $2, 0)
		`, game.ID, game.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create stock row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit game creation: %w", err)
	}

	return game, nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT id, name, kind, organizer_id, unit_price, capacity, grid_rows, grid_cols, per_buyer_limit, status, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	game := &models.Game{}
	err := s.db.QueryRow(ctx, query, gameID).Scan(
		&game.ID,
		&game.Name,
		&game.Kind,
		&game.OrganizerID,
		&game.UnitPrice,
		&game.Capacity,
		&game.GridRows,
		&game.GridCols,
		&game.PerBuyerLimit,
		&game.Status,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Game not found
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	tiers, err := s.getTiers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	game.Tiers = tiers

	return game, nil
}

func (s *GameStore) getTiers(ctx context.Context, gameID int64) ([]*models.PrizeTier, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, game_id, order_no, name, kind, share, unit_value
		FROM prize_tiers
		WHERE game_id = $1
		ORDER BY order_no ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.PrizeTier
	for rows.Next() {
		t := &models.PrizeTier{}
		err := rows.Scan(&t.ID, &t.GameID, &t.OrderNo, &t.Name, &t.Kind, &t.Share, &t.UnitValue)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}

	return tiers, rows.Err()
}

// TransitionStatus moves a game from one lifecycle state to another.
// The from-state guard makes the transition a single conditional
// write; zero rows means the game was not in the expected state.
func (s *GameStore) TransitionStatus(ctx context.Context, gameID int64, from, to string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE games
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, gameID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition game status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
