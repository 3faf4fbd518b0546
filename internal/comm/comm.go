package comm

import (
	"encoding/json"
	"time"
)

// Topic carrying game events from rifasvc to the notify relay.
const EventsTopic = "rifa.events"

// EventMessage is the envelope published on NATS and relayed to
// websocket clients.
type EventMessage struct {
	Type   string          `json:"type"` // "purchase-completed", "card-revealed"
	GameID int64           `json:"game_id"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sent_at"`
}

// PurchaseEvent announces committed allocations. It carries counts
// and ids only: no positions of other buyers, no card outcomes.
type PurchaseEvent struct {
	GameID           int64    `json:"game_id"`
	ParticipationIDs []string `json:"participation_ids"`
	Units            int      `json:"units"`
}

// RevealEvent announces a disclosed card. The outcome here is already
// public: the reveal itself made it so.
type RevealEvent struct {
	GameID  int64  `json:"game_id"`
	CardID  string `json:"card_id"`
	Outcome string `json:"outcome"` // tier name or "none"
}

// WSMessage is the envelope for client -> relay messages.
type WSMessage struct {
	Type string          `json:"type"` // e.g. "watch-game", "unwatch-game"
	Data json.RawMessage `json:"data"`
}

// WatchRequest subscribes a socket to one game's event stream.
type WatchRequest struct {
	GameID int64 `json:"game_id"`
}
