package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/prize"
)

type fakeGameReader struct {
	games map[int64]*models.Game
}

func (f *fakeGameReader) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	return f.games[gameID], nil
}

// fakeAllocStore mimics the transactional store: claims are keyed by
// (game, position), stock is a conditional counter, and failed
// operations leave no trace.
type fakeAllocStore struct {
	claims      map[string]*models.SlotClaim
	cards       []*models.ScratchCard
	remaining   int
	nextIndex   int
	buyerUnits  int
	inserted    int
	failClaimAt string // position key whose claim fails with a storage error
}

func newFakeAllocStore(stock int) *fakeAllocStore {
	return &fakeAllocStore{claims: map[string]*models.SlotClaim{}, remaining: stock}
}

func (f *fakeAllocStore) ClaimSlot(ctx context.Context, game *models.Game, key string, draft *models.Participation) (*models.Participation, *models.SlotClaim, error) {
	if key == f.failClaimAt {
		return nil, nil, fmt.Errorf("failed to commit claim: connection reset")
	}
	mapKey := fmt.Sprintf("%d/%s", game.ID, key)
	if _, taken := f.claims[mapKey]; taken {
		return nil, nil, apperr.Newf(apperr.CodeSlotTaken, "position %s is already taken in game %d", key, game.ID)
	}
	draft.ID = fmt.Sprintf("p-%d", f.inserted)
	f.inserted++
	claim := &models.SlotClaim{GameID: game.ID, PositionKey: key, ParticipationID: draft.ID}
	f.claims[mapKey] = claim
	return draft, claim, nil
}

func (f *fakeAllocStore) IssueCards(ctx context.Context, game *models.Game, draft *models.Participation, count int, plan *prize.Plan) (*models.Participation, []*models.ScratchCard, error) {
	if f.remaining < count {
		return nil, nil, apperr.Newf(apperr.CodeCapacity, "not enough scratch cards left in game %d", game.ID)
	}
	start := f.nextIndex + 1
	f.remaining -= count
	f.nextIndex += count

	draft.ID = fmt.Sprintf("p-%d", f.inserted)
	f.inserted++

	var cards []*models.ScratchCard
	for i := 0; i < count; i++ {
		index := start + i
		outcome := plan.OutcomeAt(index)
		seed, err := prize.NewSeed()
		if err != nil {
			return nil, nil, err
		}
		card := &models.ScratchCard{
			ID:              fmt.Sprintf("card-%d-%d", game.ID, index),
			GameID:          game.ID,
			CardIndex:       index,
			ParticipationID: draft.ID,
			Seed:            seed,
			CommitmentHash:  prize.CommitmentHash(seed, prize.SerializeOutcome(outcome), index),
		}
		if outcome != nil {
			card.TierID = &outcome.ID
		}
		cards = append(cards, card)
	}
	f.cards = append(f.cards, cards...)
	return draft, cards, nil
}

func (f *fakeAllocStore) CountBuyerUnits(ctx context.Context, gameID, accountID int64) (int, error) {
	return f.buyerUnits, nil
}

func (f *fakeAllocStore) ListClaims(ctx context.Context, gameID int64) ([]*models.SlotClaim, error) {
	var out []*models.SlotClaim
	for _, c := range f.claims {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	purchases int
	reveals   int
}

func (f *fakeNotifier) PurchaseCompleted(gameID int64, ids []string, units int) { f.purchases++ }
func (f *fakeNotifier) CardRevealed(gameID int64, cardID, outcome string)       { f.reveals++ }

func gridGame(id int64) *models.Game {
	return &models.Game{
		ID:        id,
		Kind:      models.GameKindGrid,
		GridRows:  10,
		GridCols:  10,
		Status:    models.GameStatusActive,
		UnitPrice: decimal.NewFromInt(10),
	}
}

func scratchGame(id int64, stock int, tiers []*models.PrizeTier) *models.Game {
	return &models.Game{
		ID:        id,
		Kind:      models.GameKindScratch,
		Capacity:  stock,
		Status:    models.GameStatusActive,
		UnitPrice: decimal.NewFromInt(5),
		Tiers:     tiers,
	}
}

func selfBuyer(account int64) models.Buyer {
	return models.Buyer{Self: &models.SelfBuyer{AccountID: account}}
}

func TestPurchaseGridPartialBatch(t *testing.T) {
	game := gridGame(1)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(0)
	notifier := &fakeNotifier{}
	svc := NewPurchaseService(games, alloc, notifier, nil)

	// C7 is already claimed by someone else
	_, _, err := alloc.ClaimSlot(context.Background(), game, "C7", &models.Participation{GameID: 1})
	if err != nil {
		t.Fatalf("setup claim failed: %v", err)
	}

	result, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID:        1,
		Buyer:         selfBuyer(42),
		PaymentMethod: "pix",
		Positions: []models.Position{
			{Row: "c", Col: 7},
			{Row: "A", Col: 1},
			{Row: "B", Col: 2},
		},
	})
	if err != nil {
		t.Fatalf("expected partial success, got error %v", err)
	}

	if len(result.ParticipationIDs) != 2 {
		t.Errorf("expected 2 committed claims, got %d", len(result.ParticipationIDs))
	}
	var taken int
	for _, sr := range result.Slots {
		if sr.ErrorCode == apperr.CodeSlotTaken {
			taken++
			if sr.PositionKey != "C7" {
				t.Errorf("expected C7 to be the taken position, got %s", sr.PositionKey)
			}
		}
	}
	if taken != 1 {
		t.Errorf("expected exactly 1 SlotTaken, got %d", taken)
	}

	// the claim listing carries C7 exactly once
	claims, _ := alloc.ListClaims(context.Background(), 1)
	var c7 int
	for _, c := range claims {
		if c.PositionKey == "C7" {
			c7++
		}
	}
	if c7 != 1 {
		t.Errorf("expected C7 claimed exactly once, got %d", c7)
	}
}

func TestPurchaseValidationLeavesNoState(t *testing.T) {
	game := gridGame(1)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(0)
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	bad := []*PurchaseRequest{
		{GameID: 1, PaymentMethod: "pix", Positions: []models.Position{{Row: "A", Col: 1}}}, // no buyer
		{GameID: 1, Buyer: selfBuyer(42), Positions: []models.Position{{Row: "A", Col: 1}}}, // no payment method
		{GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix"},                             // no payload
		{GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix", ScratchCount: 2},            // wrong payload kind
		{GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix",
			Positions: []models.Position{{Row: "Z", Col: 99}}}, // out of range
		{GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix",
			Positions: []models.Position{{Row: "a", Col: 1}, {Row: "A", Col: 1}}}, // duplicate after folding
	}

	for i, req := range bad {
		if _, err := svc.Purchase(context.Background(), req); err == nil {
			t.Errorf("request %d: expected validation error", i)
		}
	}
	if len(alloc.claims) != 0 || alloc.inserted != 0 {
		t.Error("failed validation must leave zero side effects")
	}
}

func TestPurchaseGameNotActive(t *testing.T) {
	game := gridGame(1)
	game.Status = models.GameStatusClosed
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	svc := NewPurchaseService(games, newFakeAllocStore(0), &fakeNotifier{}, nil)

	_, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix",
		Positions: []models.Position{{Row: "A", Col: 1}},
	})
	if !apperr.Is(err, apperr.CodeGameNotActive) {
		t.Errorf("expected GameNotActive, got %v", err)
	}
}

func TestPurchasePerBuyerLimit(t *testing.T) {
	game := gridGame(1)
	game.PerBuyerLimit = 3
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(0)
	alloc.buyerUnits = 2
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	_, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix",
		Positions: []models.Position{{Row: "A", Col: 1}, {Row: "A", Col: 2}},
	})
	if !apperr.Is(err, apperr.CodeCapacity) {
		t.Errorf("expected CapacityExceeded from per-buyer limit, got %v", err)
	}
	if len(alloc.claims) != 0 {
		t.Error("limit rejection must not claim anything")
	}
}

func TestPurchaseScratchScenario(t *testing.T) {
	tiers := []*models.PrizeTier{
		{ID: 11, OrderNo: 1, Name: "Top", Kind: models.PrizeKindCash, Share: 0.01, UnitValue: decimal.NewFromInt(50)},
		{ID: 12, OrderNo: 2, Name: "Second", Kind: models.PrizeKindCash, Share: 0.05, UnitValue: decimal.NewFromInt(5)},
	}
	game := scratchGame(1, 100, tiers)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(100)
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	result, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix", ScratchCount: 10,
	})
	if err != nil {
		t.Fatalf("expected issuance to succeed, got %v", err)
	}

	if len(result.CardIndices) != 10 {
		t.Fatalf("expected 10 cards, got %d", len(result.CardIndices))
	}
	for i, idx := range result.CardIndices {
		if idx != i+1 {
			t.Fatalf("expected first issuance to take indices 1..10, got %v", result.CardIndices)
		}
	}

	// committed outcomes follow the plan: 1 -> Top, 2..6 -> Second, rest none
	for _, card := range alloc.cards {
		switch {
		case card.CardIndex == 1:
			if card.TierID == nil || *card.TierID != 11 {
				t.Errorf("card 1: expected Top tier, got %v", card.TierID)
			}
		case card.CardIndex <= 6:
			if card.TierID == nil || *card.TierID != 12 {
				t.Errorf("card %d: expected Second tier, got %v", card.CardIndex, card.TierID)
			}
		default:
			if card.TierID != nil {
				t.Errorf("card %d: expected no prize, got tier %d", card.CardIndex, *card.TierID)
			}
		}
	}

	// commitment soundness on the Top card
	top := alloc.cards[0]
	if !prize.VerifyCommitment(top.Seed, tiers[0], top.CardIndex, top.CommitmentHash) {
		t.Error("top card commitment must verify against the stored hash")
	}
}

func TestPurchaseScratchConservation(t *testing.T) {
	game := scratchGame(1, 5, nil)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(5)
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	buy := func(count int) error {
		_, err := svc.Purchase(context.Background(), &PurchaseRequest{
			GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix", ScratchCount: count,
		})
		return err
	}

	if err := buy(3); err != nil {
		t.Fatalf("first issuance: %v", err)
	}
	// second bulk request does not fit: reservation is all-or-nothing
	if err := buy(3); !apperr.Is(err, apperr.CodeCapacity) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	if err := buy(2); err != nil {
		t.Fatalf("remaining stock should cover 2 cards: %v", err)
	}

	if alloc.remaining != 0 {
		t.Errorf("expected remaining 0, got %d", alloc.remaining)
	}
	if len(alloc.cards) != 5 {
		t.Errorf("remaining + issued must equal initial stock, issued %d", len(alloc.cards))
	}
	seen := map[int]bool{}
	for _, c := range alloc.cards {
		if seen[c.CardIndex] {
			t.Errorf("card index %d issued twice", c.CardIndex)
		}
		seen[c.CardIndex] = true
	}
}

func TestPurchaseDisclosesCardIDs(t *testing.T) {
	game := scratchGame(1, 10, nil)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(10)
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	result, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix", ScratchCount: 3,
	})
	if err != nil {
		t.Fatalf("expected issuance to succeed, got %v", err)
	}

	// the reveal endpoint is keyed on the card id, so the buyer must
	// receive it at issuance
	if len(result.Cards) != 3 {
		t.Fatalf("expected 3 issued cards in the result, got %d", len(result.Cards))
	}
	stored := map[string]int{}
	for _, c := range alloc.cards {
		stored[c.ID] = c.CardIndex
	}
	for _, ic := range result.Cards {
		if ic.CardID == "" {
			t.Fatalf("issued card %d has no id", ic.Index)
		}
		index, ok := stored[ic.CardID]
		if !ok {
			t.Errorf("result card id %s not found in store", ic.CardID)
		} else if index != ic.Index {
			t.Errorf("card %s: result index %d, stored index %d", ic.CardID, ic.Index, index)
		}
	}
}

func TestPurchaseStorageFailureReportsCommitted(t *testing.T) {
	game := gridGame(1)
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	alloc := newFakeAllocStore(0)
	alloc.failClaimAt = "B2"
	svc := NewPurchaseService(games, alloc, &fakeNotifier{}, nil)

	result, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix",
		Positions: []models.Position{
			{Row: "A", Col: 1},
			{Row: "B", Col: 2},
			{Row: "C", Col: 3},
		},
	})
	if err == nil {
		t.Fatal("expected the storage failure to surface")
	}
	if result == nil {
		t.Fatal("committed claims must come back alongside the error")
	}
	if len(result.ParticipationIDs) != 1 {
		t.Fatalf("expected 1 committed claim before the failure, got %d", len(result.ParticipationIDs))
	}
	if result.Slots[0].PositionKey != "A1" || result.Slots[0].ParticipationID == "" {
		t.Errorf("committed claim A1 missing from result: %+v", result.Slots)
	}
	// the failing position and everything after it stay unclaimed
	if len(alloc.claims) != 1 {
		t.Errorf("expected exactly the committed claim in the store, got %d", len(alloc.claims))
	}
}

func TestPurchaseResponseHidesOutcome(t *testing.T) {
	game := scratchGame(1, 10, []*models.PrizeTier{
		{ID: 1, OrderNo: 1, Name: "Top", Kind: models.PrizeKindCash, Share: 1, UnitValue: decimal.NewFromInt(1)},
	})
	games := &fakeGameReader{games: map[int64]*models.Game{1: game}}
	svc := NewPurchaseService(games, newFakeAllocStore(10), &fakeNotifier{}, nil)

	result, err := svc.Purchase(context.Background(), &PurchaseRequest{
		GameID: 1, Buyer: selfBuyer(42), PaymentMethod: "pix", ScratchCount: 1,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	// the commit step fixes the outcome but the response carries only
	// the participation id and card index
	if len(result.CardIndices) != 1 || len(result.ParticipationIDs) != 1 {
		t.Fatalf("unexpected result shape %+v", result)
	}
}
