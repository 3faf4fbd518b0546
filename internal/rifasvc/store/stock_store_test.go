package store

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
)

// scriptedDB answers QueryRow calls from a fixed script, letting the
// conditional-update error mapping run without a database.
type scriptedRow struct {
	scan func(dest ...any) error
}

func (r scriptedRow) Scan(dest ...any) error { return r.scan(dest...) }

type scriptedDB struct {
	rows []scriptedRow
}

func (db *scriptedDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *scriptedDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (db *scriptedDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	row := db.rows[0]
	db.rows = db.rows[1:]
	return row
}

func noRows(dest ...any) error { return pgx.ErrNoRows }

func scanBool(v bool) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*bool)) = v
		return nil
	}
}

func scanInt(v int) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*int)) = v
		return nil
	}
}

func TestReserveInsufficientStockIsCapacity(t *testing.T) {
	db := &scriptedDB{rows: []scriptedRow{{scan: noRows}}}

	_, err := NewStockStore().Reserve(context.Background(), db, 1, 5)
	if !apperr.Is(err, apperr.CodeCapacity) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
}

func TestReserveReturnsStartIndex(t *testing.T) {
	db := &scriptedDB{rows: []scriptedRow{{scan: scanInt(7)}}}

	start, err := NewStockStore().Reserve(context.Background(), db, 1, 3)
	if err != nil {
		t.Fatalf("expected reservation to succeed, got %v", err)
	}
	if start != 7 {
		t.Errorf("expected start index 7, got %d", start)
	}
}

func TestReleaseMissingLedger(t *testing.T) {
	// update matches nothing, existence probe says the game has no row
	db := &scriptedDB{rows: []scriptedRow{{scan: noRows}, {scan: scanBool(false)}}}

	err := NewStockStore().Release(context.Background(), db, 9, 2)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected NotFound for a game without a stock ledger, got %v", err)
	}
}

func TestReleaseOverTotalStock(t *testing.T) {
	// update matches nothing but the ledger row exists
	db := &scriptedDB{rows: []scriptedRow{{scan: noRows}, {scan: scanBool(true)}}}

	err := NewStockStore().Release(context.Background(), db, 9, 2)
	if err == nil {
		t.Fatal("expected an error for an over-release")
	}
	if apperr.Is(err, apperr.CodeNotFound) {
		t.Fatal("an existing ledger must not be reported as missing")
	}
	if !strings.Contains(err.Error(), "exceed total stock") {
		t.Errorf("expected an over-release diagnosis, got %v", err)
	}
}

func TestReleaseSucceeds(t *testing.T) {
	db := &scriptedDB{rows: []scriptedRow{{scan: scanInt(4)}}}

	if err := NewStockStore().Release(context.Background(), db, 9, 2); err != nil {
		t.Fatalf("expected release to succeed, got %v", err)
	}
}
