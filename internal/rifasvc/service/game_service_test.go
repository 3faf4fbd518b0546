package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

func validScratch() *models.Game {
	return &models.Game{
		Name:      "Raspadinha Junina",
		Kind:      models.GameKindScratch,
		UnitPrice: decimal.NewFromInt(5),
		Capacity:  100,
		Tiers: []*models.PrizeTier{
			{Name: "Top", Kind: models.PrizeKindCash, Share: 0.01, UnitValue: decimal.NewFromInt(50)},
			{Name: "Second", Kind: models.PrizeKindCash, Share: 0.05, UnitValue: decimal.NewFromInt(5)},
		},
	}
}

func TestValidateGameConfig(t *testing.T) {
	if err := validateGameConfig(validScratch()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	t.Run("tier order is assigned from declaration order", func(t *testing.T) {
		g := validScratch()
		if err := validateGameConfig(g); err != nil {
			t.Fatal(err)
		}
		if g.Tiers[0].OrderNo != 1 || g.Tiers[1].OrderNo != 2 {
			t.Errorf("expected order 1,2 got %d,%d", g.Tiers[0].OrderNo, g.Tiers[1].OrderNo)
		}
	})

	t.Run("share outside [0,1]", func(t *testing.T) {
		g := validScratch()
		g.Tiers[0].Share = 1.5
		if err := validateGameConfig(g); !apperr.Is(err, apperr.CodeConfiguration) {
			t.Errorf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("shares summing past 1", func(t *testing.T) {
		g := validScratch()
		g.Tiers[0].Share = 0.7
		g.Tiers[1].Share = 0.6
		if err := validateGameConfig(g); !apperr.Is(err, apperr.CodeConfiguration) {
			t.Errorf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("undersubscribed shares are fine", func(t *testing.T) {
		g := validScratch()
		g.Tiers[0].Share = 0.01
		g.Tiers[1].Share = 0.02
		if err := validateGameConfig(g); err != nil {
			t.Errorf("undersubscription must be allowed, got %v", err)
		}
	})

	t.Run("tiers on a numbered game", func(t *testing.T) {
		g := validScratch()
		g.Kind = models.GameKindNumbered
		if err := validateGameConfig(g); !apperr.Is(err, apperr.CodeConfiguration) {
			t.Errorf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("grid bounds", func(t *testing.T) {
		g := &models.Game{Name: "Grade", Kind: models.GameKindGrid, GridRows: 27, GridCols: 10, UnitPrice: decimal.NewFromInt(1)}
		if err := validateGameConfig(g); !apperr.Is(err, apperr.CodeValidation) {
			t.Errorf("expected ValidationError for 27 rows, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		g := &models.Game{Name: "x", Kind: "lottery", UnitPrice: decimal.NewFromInt(1)}
		if err := validateGameConfig(g); !apperr.Is(err, apperr.CodeValidation) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}
