package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/metrics"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/prize"
)

type revealStore interface {
	GetCardByID(ctx context.Context, cardID string) (*models.ScratchCard, error)
	GetParticipation(ctx context.Context, id string) (*models.Participation, error)
	GetTierByID(ctx context.Context, tierID int64) (*models.PrizeTier, error)
	MarkRevealed(ctx context.Context, cardID string) (*time.Time, bool, error)
}

// RevealOutcome is the disclosed prize, or nil fields for "no prize".
type RevealOutcome struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// RevealResult disclosed after (or on repeat of) a reveal. Seed,
// outcome and index let anyone recompute the commitment hash.
type RevealResult struct {
	CardID         string         `json:"card_id"`
	Index          int            `json:"index"`
	Outcome        *RevealOutcome `json:"outcome"` // nil = no prize
	Seed           string         `json:"seed"`
	CommitmentHash string         `json:"commitment_hash"`
	RevealedAt     time.Time      `json:"revealed_at"`
}

type RevealService struct {
	store    revealStore
	notifier Notifier
}

func NewRevealService(store revealStore, notifier Notifier) *RevealService {
	return &RevealService{store: store, notifier: notifier}
}

// Reveal flips a card's revealed flag exactly once and discloses its
// committed outcome. A repeat call returns the identical stored
// outcome together with AlreadyRevealed; the original reveal
// timestamp is never touched again.
func (s *RevealService) Reveal(ctx context.Context, cardID string, requester int64) (*RevealResult, error) {
	card, err := s.store.GetCardByID(ctx, cardID)
	if err != nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, err
	}
	if card == nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, apperr.Newf(apperr.CodeNotFound, "card %s not found", cardID)
	}

	owner, err := s.store.GetParticipation(ctx, card.ParticipationID)
	if err != nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, err
	}
	if owner == nil || owner.Buyer.AccountID() != requester {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, apperr.Newf(apperr.CodeNotOwner, "card %s is not owned by account %d", cardID, requester)
	}

	if card.Revealed {
		return s.repeatReveal(ctx, card)
	}

	revealedAt, ok, err := s.store.MarkRevealed(ctx, cardID)
	if err != nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, err
	}
	if !ok {
		// lost a race with a concurrent reveal of the same card;
		// the stored outcome is unchanged either way
		card, err = s.store.GetCardByID(ctx, cardID)
		if err != nil {
			metrics.Reveals.WithLabelValues("failure").Inc()
			return nil, err
		}
		return s.repeatReveal(ctx, card)
	}

	result, err := s.buildResult(ctx, card, *revealedAt)
	if err != nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.Reveals.WithLabelValues("success").Inc()

	if s.notifier != nil {
		s.notifier.CardRevealed(card.GameID, card.ID, outcomeLabel(result.Outcome))
	}

	return result, nil
}

// repeatReveal serves the read-only AlreadyRevealed path: same
// outcome, same timestamp, no mutation.
func (s *RevealService) repeatReveal(ctx context.Context, card *models.ScratchCard) (*RevealResult, error) {
	revealedAt := time.Time{}
	if card.RevealedAt != nil {
		revealedAt = *card.RevealedAt
	}
	result, err := s.buildResult(ctx, card, revealedAt)
	if err != nil {
		metrics.Reveals.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.Reveals.WithLabelValues("repeat").Inc()
	return result, apperr.Newf(apperr.CodeAlreadyRevealed, "card %s was already revealed", card.ID)
}

func (s *RevealService) buildResult(ctx context.Context, card *models.ScratchCard, revealedAt time.Time) (*RevealResult, error) {
	result := &RevealResult{
		CardID:         card.ID,
		Index:          card.CardIndex,
		Seed:           card.Seed,
		CommitmentHash: card.CommitmentHash,
		RevealedAt:     revealedAt,
	}

	if card.TierID != nil {
		tier, err := s.store.GetTierByID(ctx, *card.TierID)
		if err != nil {
			return nil, err
		}
		if tier == nil {
			return nil, apperr.Newf(apperr.CodeInternal, "card %s references missing tier %d", card.ID, *card.TierID)
		}
		if !prize.VerifyCommitment(card.Seed, tier, card.CardIndex, card.CommitmentHash) {
			return nil, apperr.Newf(apperr.CodeInternal, "commitment mismatch on card %s", card.ID)
		}
		result.Outcome = &RevealOutcome{Name: tier.Name, Kind: tier.Kind, Value: tier.UnitValue}
		return result, nil
	}

	if !prize.VerifyCommitment(card.Seed, nil, card.CardIndex, card.CommitmentHash) {
		return nil, apperr.Newf(apperr.CodeInternal, "commitment mismatch on card %s", card.ID)
	}
	return result, nil
}

func outcomeLabel(o *RevealOutcome) string {
	if o == nil {
		return "none"
	}
	return o.Name
}
