package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game kinds. Numbered and grid games sell discrete positions,
// scratch games sell sequentially numbered cards from a finite stock.
const (
	GameKindNumbered = "numbered-slot"
	GameKindGrid     = "grid-slot"
	GameKindScratch  = "scratch-card"
)

// Game lifecycle states. Allocation is only allowed while active.
const (
	GameStatusDraft  = "draft"
	GameStatusActive = "active"
	GameStatusClosed = "closed"
	GameStatusDrawn  = "drawn"
)

type Game struct {
	ID            int64           `json:"id"`              // Primary key
	Name          string          `json:"name"`            // Display name, e.g. "Rifa da Quadra"
	Kind          string          `json:"kind"`            // numbered-slot | grid-slot | scratch-card
	OrganizerID   int64           `json:"organizer_id"`    // FK to the owning organization account
	UnitPrice     decimal.Decimal `json:"unit_price"`      // Price per slot/card
	Capacity      int             `json:"capacity"`        // Numbered: highest position. Scratch: total stock.
	GridRows      int             `json:"grid_rows"`       // Grid games: number of lettered rows (A..)
	GridCols      int             `json:"grid_cols"`       // Grid games: number of columns (1..)
	PerBuyerLimit int             `json:"per_buyer_limit"` // 0 = unlimited; advisory policy, not an invariant
	Status        string          `json:"status"`
	Tiers         []*PrizeTier    `json:"tiers,omitempty"` // Scratch only, in declared order
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalUnits is the number of sellable units the game declares.
func (g *Game) TotalUnits() int {
	if g.Kind == GameKindGrid {
		return g.GridRows * g.GridCols
	}
	return g.Capacity
}

func (g *Game) IsActive() bool {
	return g.Status == GameStatusActive
}
