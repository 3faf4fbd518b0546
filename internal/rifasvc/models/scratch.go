package models

import "time"

// ScratchCard is one issued card. The commitment fields (Seed,
// CommitmentHash, TierID) are written at issuance and must never be
// exposed by any read path before reveal.
type ScratchCard struct {
	ID              string     `json:"id"` // uuid
	GameID          int64      `json:"game_id"`
	CardIndex       int        `json:"card_index"` // sequential per game, starts at 1, never reused
	ParticipationID string     `json:"participation_id"`
	TierID          *int64     `json:"tier_id,omitempty"` // nil = no prize
	Seed            string     `json:"-"`                 // hex, secret until reveal
	CommitmentHash  string     `json:"-"`                 // hex sha256, fixed at issuance
	Revealed        bool       `json:"revealed"`
	RevealedAt      *time.Time `json:"revealed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
