package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/sports"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Ping period, must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from the peer.
	maxMessageSize = 1024

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens at the CORS layer in front of us.
		return true
	},
}

// Client is one WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sports map[sports.Sport]bool
}

// ClientMessage is the frame received from a client.
type ClientMessage struct {
	Type  string `json:"type"`
	Sport string `json:"sport,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		sports: make(map[sports.Sport]bool),
	}
}

// ServeWs upgrades an HTTP request to a WebSocket connection and registers
// it with the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if !hub.CanAccept() {
		http.Error(w, "server at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("websocket: upgrade failed: %v", err)
		return
	}

	client := NewClient(hub, conn)
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump reads subscribe/unsubscribe frames from the connection until the
// peer goes away, then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warnf("websocket: read: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump forwards hub messages to the connection and pings the peer on a
// ticker. Queued messages are coalesced into a single frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe:
		c.handleSubscribe(msg.Sport)
	case MessageTypeUnsubscribe:
		c.handleUnsubscribe(msg.Sport)
	case "ping":
		c.sendPong()
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) handleSubscribe(sportStr string) {
	sport, err := sports.ParseSport(sportStr)
	if err != nil {
		c.sendError("unknown sport: " + sportStr)
		return
	}

	// One subscription at a time.
	for s := range c.sports {
		c.hub.Unsubscribe(c, s)
	}
	c.sports = map[sports.Sport]bool{sport: true}
	c.hub.Subscribe(c, sport)

	c.sendStatus("subscribed to " + string(sport))
}

func (c *Client) handleUnsubscribe(sportStr string) {
	sport, err := sports.ParseSport(sportStr)
	if err != nil {
		return
	}
	if c.sports[sport] {
		delete(c.sports, sport)
		c.hub.Unsubscribe(c, sport)
		c.sendStatus("unsubscribed from " + string(sport))
	}
}

func (c *Client) sendError(errMsg string) {
	data, _ := json.Marshal(Message{
		Type:      MessageTypeError,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendStatus(status string) {
	data, _ := json.Marshal(Message{
		Type:      MessageTypeStatus,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Message{
		Type:      MessageTypePong,
		Timestamp: time.Now().UTC(),
	})
	select {
	case c.send <- data:
	default:
	}
}
