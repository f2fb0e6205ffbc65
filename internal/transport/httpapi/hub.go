package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is pushed to websocket clients.
type Message struct {
	SessionID string         `json:"session_id"`
	Event     string         `json:"event"`
	State     *core.GameInfo `json:"state,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// inbound is what clients may send: an action for their session.
type inbound struct {
	Action core.Action `json:"action"`
	Hold   bool        `json:"hold"`
}

// Client is one websocket connection watching a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub polls every watched session at a fixed cadence and pushes the
// snapshots to its clients. Sessions nobody watches are not polled.
type Hub struct {
	sessions  *session.Manager
	pollEvery time.Duration
	logger    *log.Logger

	// only touched by Run
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
}

// NewHub creates a hub. It does nothing until Run is called.
func NewHub(sessions *session.Manager, pollEvery time.Duration, logger *log.Logger) *Hub {
	return &Hub{
		sessions:   sessions,
		pollEvery:  pollEvery,
		logger:     logger,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and closes every client when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pollEvery)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.pollAll()

		case <-ctx.Done():
			for _, clients := range h.clients {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true

	h.logger.Debug("websocket client registered", "session", client.sessionID, "clients", len(h.clients[client.sessionID]))
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}

	h.logger.Debug("websocket client unregistered", "session", client.sessionID, "clients", len(clients))
}

// pollAll advances each watched session once and broadcasts the result.
func (h *Hub) pollAll() {
	for id := range h.clients {
		msg := &Message{SessionID: id, Event: "state"}

		sess, err := h.sessions.Get(id)
		if err == nil {
			var info core.GameInfo
			if info, err = sess.Poll(); err == nil {
				msg.State = &info
			}
		}
		if err != nil {
			msg.Event = "error"
			msg.Error = err.Error()
		}
		h.broadcast(msg)
	}
}

func (h *Hub) broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("cannot marshal websocket message", "err", err)
		return
	}

	for client := range h.clients[msg.SessionID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.unregisterClient(client)
		}
	}
}

// readPump forwards client actions to the session until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "session", c.sessionID, "err", err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.hub.logger.Debug("ignoring websocket message", "session", c.sessionID, "err", err)
			continue
		}
		sess, err := c.hub.sessions.Get(c.sessionID)
		if err != nil {
			return
		}
		if err := sess.Submit(in.Action, in.Hold); err != nil {
			c.hub.logger.Debug("websocket action rejected", "session", c.sessionID, "err", err)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
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
				// the hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
