package models

import "github.com/shopspring/decimal"

// Prize tier kinds.
const (
	PrizeKindCash     = "cash"
	PrizeKindPhysical = "physical"
)

// PrizeTier is one weighted prize category of a scratch game.
// Tier order matters: the pool planner consumes card indices strictly
// in declared order, so OrderNo is part of the game configuration.
type PrizeTier struct {
	ID        int64           `json:"id"`
	GameID    int64           `json:"game_id"`
	OrderNo   int             `json:"order_no"` // 1-based declaration order
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`  // cash | physical
	Share     float64         `json:"share"` // fraction of total stock in [0,1]
	UnitValue decimal.Decimal `json:"unit_value"`
}
