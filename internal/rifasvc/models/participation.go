package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation states. Cancellation is an explicit transition owned
// by an external collaborator; rows are never hard-deleted.
const (
	ParticipationPending   = "pending"
	ParticipationConfirmed = "confirmed"
	ParticipationCanceled  = "canceled"
)

// Payment is recorded as declared by the payment collaborator; this
// service never moves money.
const (
	PaymentStateDeclared = "declared"
	PaymentStatePaid     = "paid"
)

type Participation struct {
	ID            string          `json:"id"` // uuid
	GameID        int64           `json:"game_id"`
	Buyer         Buyer           `json:"buyer"`
	PaymentMethod string          `json:"payment_method"` // e.g. 'pix', 'cash', 'card'
	PaymentState  string          `json:"payment_state"`
	PricePaid     decimal.Decimal `json:"price_paid"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SlotClaim binds a participation to one normalized position of a
// numbered or grid game. (game_id, position_key) is unique for the
// life of the game.
type SlotClaim struct {
	ID              int64     `json:"id"`
	GameID          int64     `json:"game_id"`
	PositionKey     string    `json:"position_key"` // canonical key, e.g. "N17" or "C7"
	ParticipationID string    `json:"participation_id"`
	CreatedAt       time.Time `json:"created_at"`
}
