package archive

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

// ReceiptArchive keeps best-effort purchase receipts in Mongo for the
// organizer's back office. It sits outside the transactional store:
// an archive failure is logged, never surfaced to the purchase path.
type ReceiptArchive struct {
	receipts *mongo.Collection
}

func NewReceiptArchive(db *mongo.Database) *ReceiptArchive {
	return &ReceiptArchive{receipts: db.Collection("purchase_receipts")}
}

type receiptDoc struct {
	ParticipationID string    `bson:"participation_id"`
	GameID          int64     `bson:"game_id"`
	BuyerAccountID  int64     `bson:"buyer_account_id"`
	BuyerName       string    `bson:"buyer_name,omitempty"`
	PaymentMethod   string    `bson:"payment_method"`
	PricePaid       string    `bson:"price_paid"`
	Units           int       `bson:"units"`
	ArchivedAt      time.Time `bson:"archived_at"`
}

func (a *ReceiptArchive) ArchivePurchase(ctx context.Context, p *models.Participation, units int) {
	doc := receiptDoc{
		ParticipationID: p.ID,
		GameID:          p.GameID,
		BuyerAccountID:  p.Buyer.AccountID(),
		PaymentMethod:   p.PaymentMethod,
		PricePaid:       p.PricePaid.StringFixed(2),
		Units:           units,
		ArchivedAt:      time.Now(),
	}
	if p.Buyer.Override != nil {
		doc.BuyerName = p.Buyer.Override.Name
	}

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := a.receipts.InsertOne(insertCtx, doc); err != nil {
		log.Errorf("failed to archive receipt for participation %s: %s", p.ID, err)
	}
}
