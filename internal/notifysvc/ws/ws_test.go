package ws

import "testing"

func TestWatchBookkeeping(t *testing.T) {
	h := NewHub()
	h.StoreConnection("s1", nil)
	h.StoreConnection("s2", nil)

	h.Watch("s1", 7)
	h.Watch("s2", 9)

	if !h.watching("s1", 7) {
		t.Fatalf("s1 should watch game 7")
	}
	if h.watching("s1", 9) {
		t.Errorf("s1 should not watch game 9")
	}

	h.Unwatch("s1", 7)
	if h.watching("s1", 7) {
		t.Errorf("s1 still watching game 7 after unwatch")
	}

	h.HandleDisconnect("s2")
	if h.watching("s2", 9) {
		t.Errorf("s2 should be gone after disconnect")
	}
	if _, ok := h.GetConnection("s2"); ok {
		t.Errorf("s2 connection should be removed")
	}
}

func TestWatchUnknownSocketIsNoop(t *testing.T) {
	h := NewHub()
	h.Watch("ghost", 1)
	if h.watching("ghost", 1) {
		t.Fatalf("unregistered socket must not gain watches")
	}
}
