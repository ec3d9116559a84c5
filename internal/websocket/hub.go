package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client is one connected browser tab, pinned to the owner it
// authenticated as.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Mu     sync.Mutex
}

// Event tells a client that one of its owner's tasks changed.
type Event struct {
	Action string `json:"action"`
	TaskID int    `json:"task_id"`
}

type userEvent struct {
	userID  string
	payload []byte
}

// Hub fans task events out to the connections of the affected owner only;
// clients never see another user's events.
type Hub struct {
	clients    map[string]map[*Client]bool
	events     chan userEvent
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		events:     make(chan userEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Notify queues an event for every connection owned by userID. Events are
// dropped rather than blocking a request handler when the hub is saturated
// or not running.
func (h *Hub) Notify(userID, action string, taskID int) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Action: action, TaskID: taskID})
	if err != nil {
		return
	}
	select {
	case h.events <- userEvent{userID: userID, payload: payload}:
	default:
	}
}

// Run owns the client map; all membership changes and deliveries go
// through its channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
		case client := <-h.Unregister:
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					client.Conn.Close()
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
		case event := <-h.events:
			for client := range h.clients[event.userID] {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, event.payload)
				client.Mu.Unlock()
				if err != nil {
					delete(h.clients[event.userID], client)
					client.Conn.Close()
				}
			}
		}
	}
}
