package models

import "testing"

func TestNormalizePositionNumbered(t *testing.T) {
	game := &Game{Kind: GameKindNumbered, Capacity: 100}

	key, err := NormalizePosition(game, Position{Number: 17})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if key != "N17" {
		t.Errorf("expected key N17, got %s", key)
	}

	for _, n := range []int{0, -3, 101} {
		if _, err := NormalizePosition(game, Position{Number: n}); err == nil {
			t.Errorf("expected error for out-of-range position %d", n)
		}
	}
}

func TestNormalizePositionGrid(t *testing.T) {
	game := &Game{Kind: GameKindGrid, GridRows: 5, GridCols: 10}

	// case folding: "c7" and "C7" normalize to the same key
	lower, err := NormalizePosition(game, Position{Row: "c", Col: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	upper, err := NormalizePosition(game, Position{Row: "C", Col: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lower != upper || lower != "C7" {
		t.Errorf("expected both keys to be C7, got %s and %s", lower, upper)
	}

	bad := []Position{
		{Row: "F", Col: 1},  // row beyond 5 rows (A..E)
		{Row: "A", Col: 0},  // column below range
		{Row: "A", Col: 11}, // column beyond range
		{Row: "", Col: 3},
		{Row: "AA", Col: 3},
		{Row: "7", Col: 3},
	}
	for _, p := range bad {
		if _, err := NormalizePosition(game, p); err == nil {
			t.Errorf("expected error for position %+v", p)
		}
	}
}

func TestNormalizePositionWrongKind(t *testing.T) {
	game := &Game{Kind: GameKindScratch, Capacity: 100}
	if _, err := NormalizePosition(game, Position{Number: 1}); err == nil {
		t.Error("expected error for scratch game")
	}
}
