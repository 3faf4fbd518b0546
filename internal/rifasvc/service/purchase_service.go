package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/metrics"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/prize"
)

// maxScratchPerRequest caps a single bulk issuance.
const maxScratchPerRequest = 100

type gameReader interface {
	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
}

type allocationStore interface {
	ClaimSlot(ctx context.Context, game *models.Game, positionKey string, draft *models.Participation) (*models.Participation, *models.SlotClaim, error)
	IssueCards(ctx context.Context, game *models.Game, draft *models.Participation, count int, plan *prize.Plan) (*models.Participation, []*models.ScratchCard, error)
	CountBuyerUnits(ctx context.Context, gameID, accountID int64) (int, error)
	ListClaims(ctx context.Context, gameID int64) ([]*models.SlotClaim, error)
}

// Notifier is the external notification collaborator. Publishing is
// best-effort: a failure is logged and never rolls back a purchase.
type Notifier interface {
	PurchaseCompleted(gameID int64, participationIDs []string, units int)
	CardRevealed(gameID int64, cardID string, outcome string)
}

// ReceiptArchiver persists best-effort purchase receipts outside the
// transactional store.
type ReceiptArchiver interface {
	ArchivePurchase(ctx context.Context, p *models.Participation, units int)
}

// PurchaseRequest is the conceptual purchase payload: exactly one of
// Positions or ScratchCount must be set, matching the game kind.
type PurchaseRequest struct {
	GameID        int64             `json:"game_id"`
	Buyer         models.Buyer      `json:"buyer"`
	PaymentMethod string            `json:"payment_method"`
	Positions     []models.Position `json:"positions,omitempty"`
	ScratchCount  int               `json:"scratch_count,omitempty"`
}

// SlotResult reports one position of a batch individually: capacity
// and contention failures are expected and must not sink the whole
// request.
type SlotResult struct {
	PositionKey     string `json:"position"`
	ParticipationID string `json:"participation_id,omitempty"`
	Error           string `json:"error,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

// IssuedCard pairs a card's public id with its sequential index. The
// id is what the reveal endpoint takes, so issuance must hand it out.
type IssuedCard struct {
	CardID string `json:"card_id"`
	Index  int    `json:"index"`
}

// PurchaseResult echoes claimed positions or issued cards. Scratch
// outcomes and seeds are never part of any response.
type PurchaseResult struct {
	GameID           int64        `json:"game_id"`
	ParticipationIDs []string     `json:"participation_ids"`
	Slots            []SlotResult `json:"slots,omitempty"`
	Cards            []IssuedCard `json:"cards,omitempty"`
	CardIndices      []int        `json:"card_indices,omitempty"`
}

type PurchaseService struct {
	games    gameReader
	store    allocationStore
	notifier Notifier
	archiver ReceiptArchiver
}

func NewPurchaseService(games gameReader, store allocationStore, notifier Notifier, archiver ReceiptArchiver) *PurchaseService {
	return &PurchaseService{
		games:    games,
		store:    store,
		notifier: notifier,
		archiver: archiver,
	}
}

// Purchase allocates units of a game to a buyer. Slot batches commit
// per unit and report partial success; a scratch issuance is
// all-or-nothing for the whole request. Validation failures happen
// before any state is touched.
func (s *PurchaseService) Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResult, error) {
	start := time.Now()
	status := "failure"
	kind := "unknown"
	defer func() {
		metrics.RecordPurchaseDuration(kind, status, time.Since(start).Seconds())
	}()

	game, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	kind = game.Kind

	units := req.ScratchCount
	if game.Kind != models.GameKindScratch {
		units = len(req.Positions)
	}
	if err := s.checkBuyerLimit(ctx, game, req.Buyer, units); err != nil {
		return nil, err
	}

	var result *PurchaseResult
	if game.Kind == models.GameKindScratch {
		result, err = s.issueScratch(ctx, game, req)
	} else {
		result, err = s.claimSlots(ctx, game, req)
	}
	if err != nil {
		if result != nil && len(result.ParticipationIDs) > 0 {
			// a mid-batch storage failure must not hide what did
			// commit: the caller gets the claimed units with the error
			status = "partial"
			metrics.UnitsAllocated.WithLabelValues(game.Kind).Add(float64(len(result.ParticipationIDs)))
			return result, err
		}
		return nil, err
	}

	status = "success"
	if len(result.Slots) > 0 && len(result.ParticipationIDs) < len(result.Slots) {
		status = "partial"
	}

	allocated := len(result.CardIndices)
	if game.Kind != models.GameKindScratch {
		allocated = len(result.ParticipationIDs)
	}
	metrics.UnitsAllocated.WithLabelValues(game.Kind).Add(float64(allocated))

	if s.notifier != nil {
		s.notifier.PurchaseCompleted(game.ID, result.ParticipationIDs, allocated)
	}

	return result, nil
}

// ListClaims returns the canonical keys of all claimed positions.
func (s *PurchaseService) ListClaims(ctx context.Context, gameID int64) ([]*models.SlotClaim, error) {
	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "game %d not found", gameID)
	}
	return s.store.ListClaims(ctx, gameID)
}

func (s *PurchaseService) validate(ctx context.Context, req *PurchaseRequest) (*models.Game, error) {
	if err := req.Buyer.Validate(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeValidation, "invalid buyer")
	}
	if req.PaymentMethod == "" {
		return nil, apperr.New(apperr.CodeValidation, "payment method is required")
	}
	if (len(req.Positions) > 0) == (req.ScratchCount > 0) {
		return nil, apperr.New(apperr.CodeValidation, "request exactly one of positions or scratch count")
	}

	game, err := s.games.GetGameByID(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "game %d not found", req.GameID)
	}
	if !game.IsActive() {
		return nil, apperr.Newf(apperr.CodeGameNotActive, "game %d is %s", game.ID, game.Status)
	}

	if game.Kind == models.GameKindScratch {
		if len(req.Positions) > 0 {
			return nil, apperr.New(apperr.CodeValidation, "scratch games take a card count, not positions")
		}
		if req.ScratchCount > maxScratchPerRequest {
			return nil, apperr.Newf(apperr.CodeValidation, "at most %d cards per request", maxScratchPerRequest)
		}
	} else if req.ScratchCount > 0 {
		return nil, apperr.New(apperr.CodeValidation, "slot games take positions, not a card count")
	}

	return game, nil
}

// checkBuyerLimit enforces the per-buyer cap before claiming. This is
// advisory business policy: racing purchases can exceed it without
// corrupting shared state.
func (s *PurchaseService) checkBuyerLimit(ctx context.Context, game *models.Game, buyer models.Buyer, requested int) error {
	if game.PerBuyerLimit <= 0 {
		return nil
	}
	held, err := s.store.CountBuyerUnits(ctx, game.ID, buyer.AccountID())
	if err != nil {
		return err
	}
	if held+requested > game.PerBuyerLimit {
		return apperr.Newf(apperr.CodeCapacity,
			"buyer holds %d of %d allowed units in game %d", held, game.PerBuyerLimit, game.ID)
	}
	return nil
}

// claimSlots normalizes every requested position up front, then
// claims each one in its own transaction. Contention on single
// positions surfaces per unit in the result instead of failing the
// batch.
func (s *PurchaseService) claimSlots(ctx context.Context, game *models.Game, req *PurchaseRequest) (*PurchaseResult, error) {
	keys := make([]string, 0, len(req.Positions))
	seen := make(map[string]bool, len(req.Positions))
	for _, pos := range req.Positions {
		key, err := models.NormalizePosition(game, pos)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeValidation, "invalid position")
		}
		if seen[key] {
			return nil, apperr.Newf(apperr.CodeValidation, "position %s requested twice", key)
		}
		seen[key] = true
		keys = append(keys, key)
	}

	result := &PurchaseResult{GameID: game.ID}
	for _, key := range keys {
		draft := &models.Participation{
			GameID:        game.ID,
			Buyer:         req.Buyer,
			PaymentMethod: req.PaymentMethod,
			PaymentState:  models.PaymentStateDeclared,
			PricePaid:     game.UnitPrice,
			Status:        models.ParticipationPending,
		}

		p, _, err := s.store.ClaimSlot(ctx, game, key, draft)
		if err != nil {
			var ae *apperr.AppError
			if errors.As(err, &ae) && ae.Code == apperr.CodeSlotTaken {
				metrics.SlotContention.Inc()
				result.Slots = append(result.Slots, SlotResult{
					PositionKey: key,
					Error:       ae.Message,
					ErrorCode:   ae.Code,
				})
				continue
			}
			// storage failure is fatal to the rest of the batch;
			// already committed claims stay committed and go back
			// to the caller alongside the error
			return result, err
		}

		result.Slots = append(result.Slots, SlotResult{PositionKey: key, ParticipationID: p.ID})
		result.ParticipationIDs = append(result.ParticipationIDs, p.ID)
		s.archive(ctx, p, 1)
	}

	return result, nil
}

func (s *PurchaseService) issueScratch(ctx context.Context, game *models.Game, req *PurchaseRequest) (*PurchaseResult, error) {
	plan := prize.PlanPrizePool(game.Tiers, game.TotalUnits())

	draft := &models.Participation{
		GameID:        game.ID,
		Buyer:         req.Buyer,
		PaymentMethod: req.PaymentMethod,
		PaymentState:  models.PaymentStateDeclared,
		PricePaid:     game.UnitPrice.Mul(decimalFromInt(req.ScratchCount)),
		Status:        models.ParticipationPending,
	}

	p, cards, err := s.store.IssueCards(ctx, game, draft, req.ScratchCount, plan)
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{
		GameID:           game.ID,
		ParticipationIDs: []string{p.ID},
	}
	for _, c := range cards {
		result.Cards = append(result.Cards, IssuedCard{CardID: c.ID, Index: c.CardIndex})
		result.CardIndices = append(result.CardIndices, c.CardIndex)
	}
	s.archive(ctx, p, len(cards))

	return result, nil
}

func (s *PurchaseService) archive(ctx context.Context, p *models.Participation, units int) {
	if s.archiver == nil {
		return
	}
	s.archiver.ArchivePurchase(ctx, p, units)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
