package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/prize"
)

// PurchaseStore composes the per-unit allocation writes into single
// transactions: the stock reservation, the participation row and the
// slot claim or commitment rows commit or roll back together.
type PurchaseStore struct {
	db             *pgxpool.Pool
	stocks         *StockStore
	slots          *SlotStore
	cards          *CardStore
	participations *ParticipationStore
}

func NewPurchaseStore(db *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{
		db:             db,
		stocks:         NewStockStore(),
		slots:          NewSlotStore(),
		cards:          NewCardStore(),
		participations: NewParticipationStore(),
	}
}

// ClaimSlot inserts the participation and the claim for one
// normalized position atomically. A SlotTaken from the uniqueness
// constraint rolls the participation back with it: failed claims
// leave no side effects.
func (s *PurchaseStore) ClaimSlot(ctx context.Context, game *models.Game, positionKey string, draft *models.Participation) (*models.Participation, *models.SlotClaim, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.participations.Insert(ctx, tx, draft); err != nil {
		return nil, nil, err
	}

	claim := &models.SlotClaim{
		GameID:          game.ID,
		PositionKey:     positionKey,
		ParticipationID: draft.ID,
	}
	if err := s.slots.InsertClaim(ctx, tx, claim); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return draft, claim, nil
}

// IssueCards reserves count units, assigns the next count indices and
// writes the commitments, all in one transaction. The conditional
// stock update both decrements remaining and hands out a disjoint
// index range, so concurrent issuances for the same game cannot
// overlap or oversell.
func (s *PurchaseStore) IssueCards(ctx context.Context, game *models.Game, draft *models.Participation, count int, plan *prize.Plan) (*models.Participation, []*models.ScratchCard, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin issuance transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	startIndex, err := s.stocks.Reserve(ctx, tx, game.ID, count)
	if err != nil {
		return nil, nil, err
	}

	if err := s.participations.Insert(ctx, tx, draft); err != nil {
		return nil, nil, err
	}

	cards := make([]*models.ScratchCard, 0, count)
	for i := 0; i < count; i++ {
		index := startIndex + i
		outcome := plan.OutcomeAt(index)

		seed, err := prize.NewSeed()
		if err != nil {
			return nil, nil, err
		}

		card := &models.ScratchCard{
			GameID:          game.ID,
			CardIndex:       index,
			ParticipationID: draft.ID,
			Seed:            seed,
			CommitmentHash:  prize.CommitmentHash(seed, prize.SerializeOutcome(outcome), index),
		}
		if outcome != nil {
			card.TierID = &outcome.ID
		}
		cards = append(cards, card)
	}

	if err := s.cards.InsertCards(ctx, tx, cards); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit issuance: %w", err)
	}

	return draft, cards, nil
}

// CountBuyerUnits runs the advisory per-buyer count outside any
// transaction.
func (s *PurchaseStore) CountBuyerUnits(ctx context.Context, gameID, accountID int64) (int, error) {
	return s.participations.CountBuyerUnits(ctx, s.db, gameID, accountID)
}

// ListClaims lists the claimed positions of a game.
func (s *PurchaseStore) ListClaims(ctx context.Context, gameID int64) ([]*models.SlotClaim, error) {
	return s.slots.ListClaims(ctx, s.db, gameID)
}
