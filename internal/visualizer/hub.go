package visualizer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"bravo-deck-backend/internal/deck"
)

// Message is the envelope pushed to visualizer clients.
type Message struct {
	Command   string            `json:"command"`
	DeckState *deck.DeckSummary `json:"deck_state,omitempty"`
	Event     *deck.Event       `json:"event,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

const (
	commandSyncDeckState = "sync_deck_state"
	commandDeckEvent     = "deck_event"
)

// Hub manages visualizer WebSocket connections. Every connected client gets a
// full state sync on join and a deck_event message after every mutation. The
// hub implements deck.Listener; event delivery into the hub is non-blocking
// so a stalled client can never hold up a deck mutation.
type Hub struct {
	state      *deck.DeckState
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a hub bound to the given deck state.
func NewHub(state *deck.DeckState) *Hub {
	return &Hub{
		state:      state,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run owns the client set until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.sendSync(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

func (h *Hub) sendSync(client *Client) {
	summary := h.state.GetDeckSummary()
	payload, err := json.Marshal(Message{
		Command:   commandSyncDeckState,
		DeckState: &summary,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Error marshaling deck sync: %v", err)
		return
	}
	select {
	case client.send <- payload:
	default:
		log.Println("Warning: visualizer client not accepting sync message")
	}
}

// HandleDeckEvent implements deck.Listener.
func (h *Hub) HandleDeckEvent(ev deck.Event) {
	summary := h.state.GetDeckSummary()
	payload, err := json.Marshal(Message{
		Command:   commandDeckEvent,
		DeckState: &summary,
		Event:     &ev,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Error marshaling deck event: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Println("Warning: visualizer broadcast queue full, dropping event")
	}
}
