package models

import "errors"

// Buyer is a tagged union: either the authenticated account buys for
// itself, or an intermediary registers a purchase on behalf of an
// unregistered buyer. Exactly one arm must be set, never a mix.
type Buyer struct {
	Self     *SelfBuyer     `json:"self,omitempty"`
	Override *OverrideBuyer `json:"override,omitempty"`
}

type SelfBuyer struct {
	AccountID int64 `json:"account_id"`
}

// OverrideBuyer identifies an unregistered buyer. Name plus at least
// one of phone/email is mandatory; RegisteredBy is the intermediary
// account that made the purchase.
type OverrideBuyer struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	RegisteredBy int64  `json:"registered_by"`
}

var (
	ErrBuyerShape    = errors.New("buyer must have exactly one of self or override set")
	ErrOverrideBuyer = errors.New("override buyer requires name and a phone or email")
)

// Validate enforces the one-arm shape.
func (b Buyer) Validate() error {
	if (b.Self == nil) == (b.Override == nil) {
		return ErrBuyerShape
	}
	if b.Override != nil {
		if b.Override.Name == "" || (b.Override.Phone == "" && b.Override.Email == "") {
			return ErrOverrideBuyer
		}
		if b.Override.RegisteredBy <= 0 {
			return ErrOverrideBuyer
		}
	}
	return nil
}

// AccountID returns the account the purchase is attributed to for
// ownership checks: the self account, or the registering intermediary.
func (b Buyer) AccountID() int64 {
	if b.Self != nil {
		return b.Self.AccountID
	}
	if b.Override != nil {
		return b.Override.RegisteredBy
	}
	return 0
}
