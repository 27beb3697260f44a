package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event types sent to card subscribers.
const (
	EventPlayerJoined = "player_joined"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	GameID  string      `json:"game_id"`
	Payload interface{} `json:"payload"`
}

// Client represents a single subscriber watching one game card.
// The SSE handler drains it.
type Client chan []byte

// clientBuffer is how many events a slow client may fall behind by before
// events are dropped.
const clientBuffer = 16

// Hub fans events out to the subscribers of each game.
type Hub struct {
	games map[string]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		games: make(map[string]map[Client]bool),
	}
}

// Subscribe registers a new client for gameID.
func (h *Hub) Subscribe(gameID string) Client {
	client := make(Client, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.games[gameID]; !ok {
		h.games[gameID] = make(map[Client]bool)
	}
	h.games[gameID][client] = true
	return client
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(gameID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.games[gameID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // signals the SSE handler to stop
			if len(clients) == 0 {
				delete(h.games, gameID)
			}
		}
	}
}

// Subscribers returns the number of clients watching gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Broadcast sends an event to every client watching event.GameID.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.games[event.GameID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Failed to encode hub event", zap.String("game_id", event.GameID), zap.Error(err))
		return
	}

	for client := range clients {
		// Non-blocking: a slow client must not stall the others.
		select {
		case client <- messageBytes:
		default:
			zap.L().Debug("Dropping event for slow client", zap.String("game_id", event.GameID))
		}
	}
}
