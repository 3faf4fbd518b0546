package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/rifanet/rifa-services/internal/comm"
)

// Broker publishes game events for the notify relay. Publishing is
// fire-and-forget: a NATS failure is logged and never propagated,
// so a committed purchase or reveal can never be rolled back by its
// notification.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) PurchaseCompleted(gameID int64, participationIDs []string, units int) {
	b.publish("purchase-completed", gameID, comm.PurchaseEvent{
		GameID:           gameID,
		ParticipationIDs: participationIDs,
		Units:            units,
	})
}

func (b *Broker) CardRevealed(gameID int64, cardID string, outcome string) {
	b.publish("card-revealed", gameID, comm.RevealEvent{
		GameID:  gameID,
		CardID:  cardID,
		Outcome: outcome,
	})
}

func (b *Broker) publish(eventType string, gameID int64, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("[%s] unable to marshal event: %s", eventType, err)
		return
	}

	msg := &comm.EventMessage{
		Type:   eventType,
		GameID: gameID,
		Data:   data,
		SentAt: time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(comm.EventsTopic, payload); err != nil {
		log.Errorf("failed to publish %s event for game %d: %s", eventType, gameID, err)
	}
}
