package service

import (
	"context"
	"fmt"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/store"
)

// maxGridRows bounds lettered rows to a single letter A..Z.
const maxGridRows = 26

type GameService struct {
	gameStore *store.GameStore
}

func NewGameService(gameStore *store.GameStore) *GameService {
	return &GameService{gameStore: gameStore}
}

// CreateGame validates the configuration and persists the game in
// draft state. Prize shares are checked here, at configuration time,
// never at issuance time.
func (s *GameService) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	if err := validateGameConfig(game); err != nil {
		return nil, err
	}
	return s.gameStore.CreateGame(ctx, game)
}

func (s *GameService) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	return s.gameStore.GetGameByID(ctx, gameID)
}

// Activate opens allocation: draft -> active.
func (s *GameService) Activate(ctx context.Context, gameID int64) error {
	return s.transition(ctx, gameID, models.GameStatusDraft, models.GameStatusActive)
}

// Close stops new allocation: active -> closed.
func (s *GameService) Close(ctx context.Context, gameID int64) error {
	return s.transition(ctx, gameID, models.GameStatusActive, models.GameStatusClosed)
}

func (s *GameService) transition(ctx context.Context, gameID int64, from, to string) error {
	ok, err := s.gameStore.TransitionStatus(ctx, gameID, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.CodeGameNotActive, "game %d is not in state %s", gameID, from)
	}
	return nil
}

func validateGameConfig(game *models.Game) error {
	if game.Name == "" {
		return apperr.New(apperr.CodeValidation, "game name is required")
	}
	if game.UnitPrice.IsNegative() {
		return apperr.New(apperr.CodeValidation, "unit price must not be negative")
	}

	switch game.Kind {
	case models.GameKindNumbered:
		if game.Capacity < 1 {
			return apperr.New(apperr.CodeValidation, "numbered game needs a capacity of at least 1")
		}
	case models.GameKindGrid:
		if game.GridRows < 1 || game.GridRows > maxGridRows {
			return apperr.Newf(apperr.CodeValidation, "grid rows must be in 1..%d", maxGridRows)
		}
		if game.GridCols < 1 {
			return apperr.New(apperr.CodeValidation, "grid game needs at least 1 column")
		}
	case models.GameKindScratch:
		if game.Capacity < 1 {
			return apperr.New(apperr.CodeValidation, "scratch game needs a stock of at least 1")
		}
		if err := validateTiers(game.Tiers); err != nil {
			return err
		}
	default:
		return apperr.Newf(apperr.CodeValidation, "unknown game kind %q", game.Kind)
	}

	if game.Kind != models.GameKindScratch && len(game.Tiers) > 0 {
		return apperr.New(apperr.CodeConfiguration, "prize tiers are only valid on scratch-card games")
	}

	return nil
}

func validateTiers(tiers []*models.PrizeTier) error {
	sum := 0.0
	for i, t := range tiers {
		if t.Name == "" {
			return apperr.Newf(apperr.CodeConfiguration, "tier %d has no name", i+1)
		}
		if t.Kind != models.PrizeKindCash && t.Kind != models.PrizeKindPhysical {
			return apperr.Newf(apperr.CodeConfiguration, "tier %q has unknown kind %q", t.Name, t.Kind)
		}
		if t.Share < 0 || t.Share > 1 {
			return apperr.Newf(apperr.CodeConfiguration, "tier %q share %v is outside [0,1]", t.Name, t.Share)
		}
		if t.UnitValue.IsNegative() {
			return apperr.Newf(apperr.CodeConfiguration, "tier %q has a negative value", t.Name)
		}
		t.OrderNo = i + 1
		sum += t.Share
	}
	// Shares may undersubscribe the stock; the remainder simply wins
	// nothing. They must not oversubscribe it by configuration.
	// Per-tier rounding overrun is still tolerated by the planner.
	if sum > 1 {
		return apperr.New(apperr.CodeConfiguration, fmt.Sprintf("tier shares sum to %v, exceeding 1", sum))
	}
	return nil
}
