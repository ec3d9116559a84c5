package websocket

import "testing"

func TestNotifyNeverBlocksHandlers(t *testing.T) {
	hub := NewHub()
	// Hub is not running; events past the buffer must be dropped, not
	// block the caller.
	for i := 0; i < 1000; i++ {
		hub.Notify("user-1", "created", i)
	}
}

func TestNotifyOnNilHub(t *testing.T) {
	var hub *Hub
	hub.Notify("user-1", "created", 1)
}
