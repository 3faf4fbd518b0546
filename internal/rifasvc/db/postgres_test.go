package db

import "testing"

func TestConnectRejectsMalformedDSN(t *testing.T) {
	if _, err := Connect("host='unterminated"); err == nil {
		t.Fatal("expected a parse error for a malformed DSN")
	}
}
