package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Per-client and hub-wide queue sizes.
	sendBuffer      = 256
	broadcastBuffer = 256

	// Deadline for one inbound action against the game service.
	actionTimeout = 5 * time.Second
)

// Inbound actions
const (
	ActionRoll      = "roll"
	ActionMove      = "move"
	ActionStart     = "start"
	ActionLeave     = "leave"
	ActionReconnect = "reconnect"
)

// Hub-generated events
const (
	EventStateUpdate = "state_update"
	EventAck         = "ack"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: check Origin against an --allowed-origins list
		return true
	},
}

// Message is the envelope sent to clients
type Message struct {
	RoomID string       `json:"room_id"`
	Game   *engine.Game `json:"game,omitempty"`
	Event  string       `json:"event,omitempty"`
	Data   any          `json:"data,omitempty"`
}

// Request is an action sent by a client
type Request struct {
	Action string          `json:"action"`
	UserID string          `json:"user_id"`
	Token  int             `json:"token"`
	Type   engine.MoveType `json:"type"`
}

// Actions is the part of the game service a client can drive over the socket
type Actions interface {
	StartGame(ctx context.Context, code, userID string) (*service.RoomInfo, error)
	RollDice(ctx context.Context, code, userID string) (*service.RollResult, error)
	MakeMove(ctx context.Context, code, userID string, token int, moveType engine.MoveType) (*service.MoveResult, error)
	LeaveGame(ctx context.Context, code, userID string) (*service.RoomInfo, error)
	Reconnect(ctx context.Context, code, userID, connID string) (*service.RoomInfo, error)
}

// Client represents a WebSocket client
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	roomID string
	// id is the transport handle passed to Reconnect
	id string
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients per room and fans out messages.
// The rooms map is only written by Run.
type Hub struct {
	// Registered clients by room code
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex

	actions Actions

	// Outbound room-wide messages
	broadcast chan *Message

	// Replies addressed to a single client
	direct chan directMessage

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		direct:     make(chan directMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetActions wires the service that handles inbound client actions. The
// service is built with the hub as its notifier, so this happens after both
// exist and before Run.
func (h *Hub) SetActions(a Actions) {
	h.actions = a
}

// Run starts the hub's event loop and returns after Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case m := <-h.direct:
			h.sendTo(m.client, m.data)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and attaches the connection to a room
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		roomID: roomID,
		id:     uuid.NewString(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastRoom sends the current game to every client in the room
func (h *Hub) BroadcastRoom(roomID string, game *engine.Game) {
	h.enqueue(&Message{RoomID: roomID, Game: game, Event: EventStateUpdate})
}

// BroadcastEvent sends a named event with the game it produced
func (h *Hub) BroadcastEvent(roomID string, game *engine.Game, event string, data any) {
	h.enqueue(&Message{RoomID: roomID, Game: game, Event: event, Data: data})
}

// ClientCount returns how many clients are attached to a room
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// enqueue never blocks: the service calls it while holding a room lock.
func (h *Hub) enqueue(m *Message) {
	select {
	case h.broadcast <- m:
	default:
		log.Warn().Str("room", m.RoomID).Str("event", m.Event).Msg("broadcast queue full, dropping message")
	}
}

func (h *Hub) reply(c *Client, m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal reply")
		return
	}
	select {
	case h.direct <- directMessage{client: c, data: data}:
	case <-h.done:
	}
}

// registerClient adds a client to a room
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.rooms[client.roomID] == nil {
		h.rooms[client.roomID] = make(map[*Client]bool)
	}
	h.rooms[client.roomID][client] = true
	total := len(h.rooms[client.roomID])
	h.mu.Unlock()

	log.Debug().Str("room", client.roomID).Int("clients", total).Msg("client registered")
}

// unregisterClient removes a client from a room
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.roomID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.roomID)
	}

	log.Debug().Str("room", client.roomID).Int("clients", len(clients)).Msg("client unregistered")
}

// broadcastMessage sends a message to all clients in a room
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Warn().Err(err).Str("room", message.RoomID).Msg("failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.rooms[message.RoomID] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Client's send channel is full, drop it
	for _, client := range slow {
		h.unregisterClient(client)
	}
}

func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	registered := h.rooms[client.roomID][client]
	h.mu.RUnlock()
	if !registered {
		return
	}

	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, roomID)
	}
}

// handle runs one client action and answers the sender. State changes reach
// the whole room through the service's notifier.
func (h *Hub) handle(c *Client, req Request) {
	if h.actions == nil {
		h.reply(c, &Message{RoomID: c.roomID, Event: EventError, Data: map[string]string{"error": "actions are not available"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	var (
		result any
		err    error
	)
	switch req.Action {
	case ActionRoll:
		result, err = h.actions.RollDice(ctx, c.roomID, req.UserID)
	case ActionMove:
		result, err = h.actions.MakeMove(ctx, c.roomID, req.UserID, req.Token, req.Type)
	case ActionStart:
		result, err = h.actions.StartGame(ctx, c.roomID, req.UserID)
	case ActionLeave:
		result, err = h.actions.LeaveGame(ctx, c.roomID, req.UserID)
	case ActionReconnect:
		result, err = h.actions.Reconnect(ctx, c.roomID, req.UserID, c.id)
	default:
		h.reply(c, &Message{RoomID: c.roomID, Event: EventError, Data: map[string]string{"action": req.Action, "error": "unknown action"}})
		return
	}

	if err != nil {
		log.Debug().Err(err).Str("room", c.roomID).Str("action", req.Action).Str("user", req.UserID).Msg("websocket action rejected")
		h.reply(c, &Message{RoomID: c.roomID, Event: EventError, Data: map[string]string{"action": req.Action, "error": err.Error()}})
		return
	}
	h.reply(c, &Message{RoomID: c.roomID, Event: EventAck, Data: map[string]any{"action": req.Action, "result": result}})
}

// readPump pumps messages from the WebSocket connection to the hub
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
				log.Warn().Err(err).Str("room", c.roomID).Msg("websocket error")
			}
			break
		}

		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			c.hub.reply(c, &Message{RoomID: c.roomID, Event: EventError, Data: map[string]string{"error": "invalid message"}})
			continue
		}
		c.hub.handle(c, req)
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

			// One JSON document per frame
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
