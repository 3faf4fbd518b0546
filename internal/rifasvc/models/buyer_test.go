package models

import "testing"

func TestBuyerValidate(t *testing.T) {
	cases := []struct {
		name    string
		buyer   Buyer
		wantErr error
	}{
		{"self only", Buyer{Self: &SelfBuyer{AccountID: 42}}, nil},
		{"override complete with phone", Buyer{Override: &OverrideBuyer{Name: "Maria", Phone: "5511999", RegisteredBy: 7}}, nil},
		{"override complete with email", Buyer{Override: &OverrideBuyer{Name: "Maria", Email: "m@x.br", RegisteredBy: 7}}, nil},
		{"neither arm", Buyer{}, ErrBuyerShape},
		{"both arms", Buyer{Self: &SelfBuyer{AccountID: 1}, Override: &OverrideBuyer{Name: "x", Phone: "1", RegisteredBy: 2}}, ErrBuyerShape},
		{"override missing name", Buyer{Override: &OverrideBuyer{Phone: "5511999", RegisteredBy: 7}}, ErrOverrideBuyer},
		{"override missing contact", Buyer{Override: &OverrideBuyer{Name: "Maria", RegisteredBy: 7}}, ErrOverrideBuyer},
		{"override missing registrar", Buyer{Override: &OverrideBuyer{Name: "Maria", Phone: "5511999"}}, ErrOverrideBuyer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.buyer.Validate(); err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuyerAccountID(t *testing.T) {
	self := Buyer{Self: &SelfBuyer{AccountID: 42}}
	if self.AccountID() != 42 {
		t.Errorf("expected 42, got %d", self.AccountID())
	}

	override := Buyer{Override: &OverrideBuyer{Name: "Maria", Phone: "5511999", RegisteredBy: 7}}
	if override.AccountID() != 7 {
		t.Errorf("expected registering account 7, got %d", override.AccountID())
	}
}
