package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
)

// StockStore is the per-game atomic counter over scratch_stocks.
// Every mutation is a single conditional update: a read followed by a
// write would admit overselling under concurrent reservations.
type StockStore struct{}

func NewStockStore() *StockStore {
	return &StockStore{}
}

// Reserve decrements remaining by n and advances next_index in one
// conditional update, returning the first index of the reserved
// range. Concurrent calls for the same game therefore always receive
// disjoint ranges. Zero rows means insufficient stock.
func (s *StockStore) Reserve(ctx context.Context, db DB, gameID int64, n int) (int, error) {
	query := `
		UPDATE scratch_stocks
		SET remaining = remaining - $2,
		    next_index = next_index + $2,
		    updated_at = now()
		WHERE game_id = $1 AND remaining >= $2
		RETURNING next_index - $2 + 1
	`

	var startIndex int
	err := db.QueryRow(ctx, query, gameID, n).Scan(&startIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.Newf(apperr.CodeCapacity, "not enough scratch cards left in game %d", gameID)
		}
		return 0, fmt.Errorf("failed to reserve stock: %w", err)
	}

	return startIndex, nil
}

// Release restores n units after an out-of-band cancellation. Indices
// are never reused, so next_index stays where it is; remaining is
// capped at total_stock.
func (s *StockStore) Release(ctx context.Context, db DB, gameID int64, n int) error {
	var remaining int
	err := db.QueryRow(ctx, `
		UPDATE scratch_stocks
		SET remaining = remaining + $2, updated_at = now()
		WHERE game_id = $1 AND remaining + $2 <= total_stock
		RETURNING remaining
	`, gameID, n).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to release stock: %w", err)
	}

	// zero rows is ambiguous: no ledger for the game, or the release
	// does not fit under total_stock
	var exists bool
	if err := db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM scratch_stocks WHERE game_id = $1)
	`, gameID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if !exists {
		return apperr.Newf(apperr.CodeNotFound, "game %d has no stock ledger", gameID)
	}
	return fmt.Errorf("release of %d units would exceed total stock of game %d", n, gameID)
}
