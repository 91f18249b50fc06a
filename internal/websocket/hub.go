package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/sports"
)

const (
	MessageTypeMarketUpdate = "market_update"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeError        = "error"
	MessageTypeStatus       = "status"
	MessageTypePong         = "pong"
)

// Message is the frame sent to connected clients.
type Message struct {
	Type      string                   `json:"type"`
	Sport     string                   `json:"sport,omitempty"`
	Markets   []markets.CombinedMarket `json:"markets,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Error     string                   `json:"error,omitempty"`
	Status    string                   `json:"status,omitempty"`
}

// Hub tracks connected clients and fans market updates out to the ones
// subscribed to each sport.
type Hub struct {
	clients       map[*Client]bool
	subscriptions map[sports.Sport]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	maxConnections int
}

func NewHub(maxConnections int) *Hub {
	if maxConnections <= 0 {
		maxConnections = 1000
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		subscriptions:  make(map[sports.Sport]map[*Client]bool),
		register:       make(chan *Client, 256),
		unregister:     make(chan *Client, 256),
		maxConnections: maxConnections,
	}
}

// Run processes register/unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxConnections {
		logging.Warnf("websocket: connection rejected, at capacity (%d)", h.maxConnections)
		data, _ := json.Marshal(Message{
			Type:      MessageTypeError,
			Error:     "server at capacity, try again later",
			Timestamp: time.Now().UTC(),
		})
		client.send <- data
		close(client.send)
		return
	}

	h.clients[client] = true
	logging.Infof("websocket: client connected (total: %d)", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for sport := range h.subscriptions {
		delete(h.subscriptions[sport], client)
	}
	close(client.send)
	logging.Infof("websocket: client disconnected (total: %d)", len(h.clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.subscriptions = make(map[sports.Sport]map[*Client]bool)
}

// Subscribe adds a client to a sport's subscriber set.
func (h *Hub) Subscribe(client *Client, sport sports.Sport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscriptions[sport] == nil {
		h.subscriptions[sport] = make(map[*Client]bool)
	}
	h.subscriptions[sport][client] = true
	logging.Debugf("websocket: client subscribed to %s (subscribers: %d)", sport, len(h.subscriptions[sport]))
}

// Unsubscribe removes a client from a sport's subscriber set.
func (h *Hub) Unsubscribe(client *Client, sport sports.Sport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscriptions[sport] != nil {
		delete(h.subscriptions[sport], client)
	}
}

// Broadcast sends refreshed markets to every client subscribed to the sport.
// Clients whose send buffer is full are dropped.
func (h *Hub) Broadcast(sport sports.Sport, mkts []markets.CombinedMarket) {
	data, err := json.Marshal(Message{
		Type:      MessageTypeMarketUpdate,
		Sport:     string(sport),
		Markets:   mkts,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logging.Errorf("websocket: marshal broadcast: %v", err)
		return
	}

	var slow []*Client

	h.mu.RLock()
	subscribers := h.subscriptions[sport]
	if len(subscribers) == 0 {
		h.mu.RUnlock()
		return
	}
	for client := range subscribers {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	sent := len(subscribers) - len(slow)
	h.mu.RUnlock()

	for _, client := range slow {
		logging.Warnf("websocket: dropping slow client")
		h.unregister <- client
	}

	logging.Debugf("websocket: broadcast %s to %d clients (%d bytes)", sport, sent, len(data))
}

// BroadcastStatus sends a status message to every connected client. Clients
// with a full buffer are skipped rather than dropped.
func (h *Hub) BroadcastStatus(status string) {
	data, err := json.Marshal(Message{
		Type:      MessageTypeStatus,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
}

// CanAccept reports whether the hub is below its connection limit.
func (h *Hub) CanAccept() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) < h.maxConnections
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCounts returns the subscriber count per sport.
func (h *Hub) SubscriberCounts() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[string]int, len(h.subscriptions))
	for sport, clients := range h.subscriptions {
		counts[string(sport)] = len(clients)
	}
	return counts
}
