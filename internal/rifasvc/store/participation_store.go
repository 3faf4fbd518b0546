package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

type ParticipationStore struct{}

func NewParticipationStore() *ParticipationStore {
	return &ParticipationStore{}
}

// Insert writes one participation row. It runs on the executor of the
// enclosing purchase transaction so the reservation, the claim and
// the participation commit or roll back together.
func (s *ParticipationStore) Insert(ctx context.Context, db DB, p *models.Participation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var selfID *int64
	var overrideName, overridePhone, overrideEmail *string
	var registeredBy *int64
	if p.Buyer.Self != nil {
		selfID = &p.Buyer.Self.AccountID
	}
	if o := p.Buyer.Override; o != nil {
		overrideName = &o.Name
		if o.Phone != "" {
			overridePhone = &o.Phone
		}
		if o.Email != "" {
			overrideEmail = &o.Email
		}
		registeredBy = &o.RegisteredBy
	}

	query := `
		INSERT INTO participations
			(id, game_id, buyer_account_id, override_name, override_phone, override_email, registered_by, payment_method, payment_state, price_paid, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := db.QueryRow(ctx, query,
		p.ID, p.GameID, selfID, overrideName, overridePhone, overrideEmail, registeredBy,
		p.PaymentMethod, p.PaymentState, p.PricePaid, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert participation: %w", err)
	}

	return nil
}

func (s *ParticipationStore) GetByID(ctx context.Context, db DB, id string) (*models.Participation, error) {
	query := `
		SELECT id, game_id, buyer_account_id, override_name, override_phone, override_email, registered_by, payment_method, payment_state, price_paid, status, created_at, updated_at
		FROM participations
		WHERE id = $1
	`

	p := &models.Participation{}
	var selfID, registeredBy *int64
	var overrideName, overridePhone, overrideEmail *string
	err := db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.GameID,
		&selfID,
		&overrideName,
		&overridePhone,
		&overrideEmail,
		&registeredBy,
		&p.PaymentMethod,
		&p.PaymentState,
		&p.PricePaid,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}

	if selfID != nil {
		p.Buyer.Self = &models.SelfBuyer{AccountID: *selfID}
	} else if overrideName != nil && registeredBy != nil {
		o := &models.OverrideBuyer{Name: *overrideName, RegisteredBy: *registeredBy}
		if overridePhone != nil {
			o.Phone = *overridePhone
		}
		if overrideEmail != nil {
			o.Email = *overrideEmail
		}
		p.Buyer.Override = o
	}

	return p, nil
}

// CountBuyerUnits counts non-canceled units (slots plus cards) a
// buyer account already holds in a game. Used for the advisory
// per-buyer limit check.
func (s *ParticipationStore) CountBuyerUnits(ctx context.Context, db DB, gameID, accountID int64) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM slot_claims sc
			   JOIN participations p ON p.id = sc.participation_id
			 WHERE sc.game_id = $1 AND p.status <> 'canceled'
			   AND COALESCE(p.buyer_account_id, p.registered_by) = $2)
			+
			(SELECT COUNT(*) FROM scratch_cards c
			   JOIN participations p ON p.id = c.participation_id
			 WHERE c.game_id = $1 AND p.status <> 'canceled'
			   AND COALESCE(p.buyer_account_id, p.registered_by) = $2)
	`

	var n int
	if err := db.QueryRow(ctx, query, gameID, accountID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count buyer units: %w", err)
	}
	return n, nil
}
