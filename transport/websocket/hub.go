package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
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

	// Time allowed for one inbound command to run.
	commandTimeout = 5 * time.Second
)

// Message types
const (
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypeEvents   = "events"
	TypeError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Rounds are public; any origin may watch
		return true
	},
}

// Message is the envelope for every outbound frame
type Message struct {
	Type      string                `json:"type"`
	SessionID string                `json:"session_id"`
	ClientID  string                `json:"client_id,omitempty"`
	Snapshot  *engine.Snapshot      `json:"snapshot,omitempty"`
	Result    *engine.CommandResult `json:"result,omitempty"`
	Events    []service.GameEvent   `json:"events,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Inbound is what clients send: {"command":"move_up"}
type Inbound struct {
	Command string `json:"command"`
}

// Client represents a WebSocket client
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// directMessage is a frame for one client only
type directMessage struct {
	client *Client
	msg    *Message
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Messages for every client of a session
	broadcast chan *Message

	// Messages for a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	service service.GameService
	log     logrus.FieldLogger
}

// NewHub creates a new WebSocket hub. Inbound commands are applied through svc.
func NewHub(svc service.GameService, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		direct:     make(chan directMessage, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		service:    svc,
		log:        log,
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			h.sendDirect(dm)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to a session.
// The session must exist.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	sessionID = strings.ToLower(sessionID)
	snap, err := h.service.GetSnapshot(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	h.reply(client, &Message{
		Type:      TypeWelcome,
		SessionID: sessionID,
		ClientID:  client.id,
		Snapshot:  snap,
	})

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a snapshot to all clients of a session
func (h *Hub) BroadcastToSession(sessionID string, snap *engine.Snapshot) {
	h.enqueue(&Message{
		Type:      TypeSnapshot,
		SessionID: sessionID,
		Snapshot:  snap,
	})
}

// BroadcastEvents sends round events to all clients of a session
func (h *Hub) BroadcastEvents(sessionID string, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	h.enqueue(&Message{
		Type:      TypeEvents,
		SessionID: sessionID,
		Events:    events,
	})
}

// Publish broadcasts the current snapshot of each session. It lets the hub
// serve as a runner publisher.
func (h *Hub) Publish(ctx context.Context, sessionIDs []string) {
	for _, id := range sessionIDs {
		snap, err := h.service.GetSnapshot(ctx, id)
		if err != nil {
			h.log.WithError(err).WithField("session", id).Debug("snapshot for broadcast failed")
			continue
		}
		h.BroadcastToSession(id, snap)
	}
}

// enqueue drops the message when the hub is saturated rather than stall the
// caller, which may be the realtime clock
func (h *Hub) enqueue(m *Message) {
	select {
	case h.broadcast <- m:
	default:
		h.log.WithField("session", m.SessionID).Warn("broadcast queue full, dropping message")
	}
}

// reply queues a message for one client
func (h *Hub) reply(c *Client, m *Message) {
	select {
	case h.direct <- directMessage{client: c, msg: m}:
	case <-h.done:
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.log.WithFields(logrus.Fields{
		"session": client.sessionID,
		"client":  client.id,
		"clients": len(h.sessions[client.sessionID]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	h.log.WithFields(logrus.Fields{
		"session": client.sessionID,
		"client":  client.id,
		"clients": len(clients),
	}).Debug("websocket client unregistered")
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Warn("failed to marshal broadcast message")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, close it
			h.unregisterClient(client)
		}
	}
}

// sendDirect delivers a message to one client if it is still registered
func (h *Hub) sendDirect(dm directMessage) {
	if !h.sessions[dm.client.sessionID][dm.client] {
		return
	}

	data, err := json.Marshal(dm.msg)
	if err != nil {
		h.log.WithError(err).Warn("failed to marshal direct message")
		return
	}

	select {
	case dm.client.send <- data:
	default:
		h.unregisterClient(dm.client)
	}
}

// handleInbound applies one client command and fans the outcome out
func (h *Hub) handleInbound(c *Client, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil || in.Command == "" {
		h.reply(c, &Message{
			Type:      TypeError,
			SessionID: c.sessionID,
			Error:     `expected {"command": "..."}`,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	resp, err := h.service.Command(ctx, c.sessionID, in.Command)
	if err != nil {
		h.reply(c, &Message{
			Type:      TypeError,
			SessionID: c.sessionID,
			Error:     err.Error(),
		})
		return
	}

	h.enqueue(&Message{
		Type:      TypeSnapshot,
		SessionID: c.sessionID,
		ClientID:  c.id,
		Snapshot:  resp.Snapshot,
		Result:    &resp.Result,
	})
	h.BroadcastEvents(c.sessionID, resp.Events)
}

// readPump pumps commands from the WebSocket connection to the service
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
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("client", c.id).Warn("websocket read failed")
			}
			break
		}
		c.hub.handleInbound(c, raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
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
				// The hub closed the channel
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
