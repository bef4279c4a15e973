package gateway

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Session is the game surface the gateway drives on behalf of clients.
type Session interface {
	IdentifyAdmin(connID string) models.Player
	SendQuestionsUpdate(connID string)
	RegisterPlayer(connID, name string) (models.Player, error)
	AddQuestion(connID string, req models.AddQuestionRequest, imageURL string) (models.Question, error)
	DeleteQuestion(connID, questionID string) error
	StartRound(connID string) error
	SubmitAnswer(connID string, answerIndex int) (models.SubmitAnswerAck, error)
	RequestNext(connID string)
	Disconnect(connID string)
}

// Hub maintains the set of active clients and routes outbound events to
// them. It implements game.Notifier: sends never block, a client that
// cannot keep up is dropped.
type Hub struct {
	log        logger.Logger
	session    Session
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	isAdmin atomic.Bool
	send    chan models.ServerMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, session Session) *Hub {
	return &Hub{
		log:        log,
		session:    session,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration and unregistration
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "id", client.id, "total_clients", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			// Only the client that owns the map entry may be evicted; a
			// stale unregister for a replaced id must not close the
			// current occupant's channel.
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "id", client.id, "total_clients", total)
		}
	}
}

// SendTo delivers an event to a single client. Unknown ids are dropped.
// The read lock is held through the send: the run loop closes a client's
// channel only under the write lock, so a locked delivery can never hit a
// closed channel.
func (h *Hub) SendTo(playerID, event string, payload any) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	client, ok := h.clients[playerID]
	if !ok {
		return
	}
	h.deliver(client, models.ServerMessage{Type: event, Payload: payload})
}

// SendToAdmins delivers an event to every admin client.
func (h *Hub) SendToAdmins(event string, payload any) {
	msg := models.ServerMessage{Type: event, Payload: payload}
	h.mutex.RLock()
	for _, client := range h.clients {
		if client.isAdmin.Load() {
			h.deliver(client, msg)
		}
	}
	h.mutex.RUnlock()
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event string, payload any) {
	msg := models.ServerMessage{Type: event, Payload: payload}
	h.mutex.RLock()
	for _, client := range h.clients {
		h.deliver(client, msg)
	}
	h.mutex.RUnlock()
}

func (h *Hub) deliver(client *Client, msg models.ServerMessage) {
	select {
	case client.send <- msg:
	default:
		// Client's send channel is full, unregister
		go func(c *Client) {
			h.unregister <- c
		}(client)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the websocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.hub.session.Disconnect(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "id", c.id, "error", err)
			}
			break
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Malformed frame", "id", c.id, "error", err)
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch handles one inbound event. Every failure path answers the client;
// none of them tears down the connection.
func (c *Client) dispatch(msg models.ClientMessage) {
	switch msg.Type {
	case models.EvIdentifyAdmin:
		c.isAdmin.Store(true)
		c.hub.session.IdentifyAdmin(c.id)
		c.ack(msg.Seq, models.Ack{Success: true})

	case models.EvRegisterPlayer:
		var req models.RegisterPlayerRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.reply(msg.Seq, models.RegisterAck{Error: "invalid payload"})
			return
		}
		player, err := c.hub.session.RegisterPlayer(c.id, req.Name)
		if err != nil {
			c.reply(msg.Seq, models.RegisterAck{Error: err.Error()})
			return
		}
		c.reply(msg.Seq, models.RegisterAck{Success: true, Player: &player})

	case models.EvAddQuestion:
		var req models.AddQuestionRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.fail(msg.Seq, "invalid payload")
			return
		}
		if _, err := c.hub.session.AddQuestion(c.id, req, ""); err != nil {
			c.fail(msg.Seq, err.Error())
			return
		}
		c.ack(msg.Seq, models.Ack{Success: true})

	case models.EvDeleteQuestion:
		var req models.DeleteQuestionRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.fail(msg.Seq, "invalid payload")
			return
		}
		if err := c.hub.session.DeleteQuestion(c.id, req.QuestionID); err != nil {
			c.fail(msg.Seq, err.Error())
			return
		}
		c.ack(msg.Seq, models.Ack{Success: true})

	case models.EvStartRound:
		if err := c.hub.session.StartRound(c.id); err != nil {
			c.fail(msg.Seq, err.Error())
			return
		}
		c.ack(msg.Seq, models.Ack{Success: true})

	case models.EvSubmitAnswer:
		var req models.SubmitAnswerRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.reply(msg.Seq, models.SubmitAnswerAck{Error: "invalid payload"})
			return
		}
		ack, err := c.hub.session.SubmitAnswer(c.id, req.AnswerIndex)
		if err != nil {
			c.reply(msg.Seq, models.SubmitAnswerAck{Error: err.Error()})
			return
		}
		c.reply(msg.Seq, ack)

	case models.EvRequestNextQuestion:
		c.hub.session.RequestNext(c.id)

	case models.EvRequestQuestionsUpdate:
		c.hub.session.SendQuestionsUpdate(c.id)

	default:
		c.hub.log.Debug("Unknown event", "id", c.id, "type", msg.Type)
	}
}

// ack sends an acknowledgement when one was requested (non-zero seq).
func (c *Client) ack(seq uint64, payload any) {
	if seq == 0 {
		return
	}
	c.hub.deliver(c, models.ServerMessage{Type: models.EvAck, Seq: seq, Payload: payload})
}

// reply always answers, even without a seq: registration and answer
// outcomes are pushed as their own events for fire-and-forget clients.
func (c *Client) reply(seq uint64, payload any) {
	if seq != 0 {
		c.hub.deliver(c, models.ServerMessage{Type: models.EvAck, Seq: seq, Payload: payload})
		return
	}
	event := models.EvAck
	switch payload.(type) {
	case models.RegisterAck:
		event = models.EvRegistrationResult
	case models.SubmitAnswerAck:
		event = models.EvAnswerResult
	}
	c.hub.deliver(c, models.ServerMessage{Type: event, Payload: payload})
}

// fail reports an admin operation failure. Without a seq the error is
// surfaced on the admin-error channel, matching the admin console contract.
func (c *Client) fail(seq uint64, message string) {
	if seq != 0 {
		c.hub.deliver(c, models.ServerMessage{Type: models.EvAck, Seq: seq, Payload: models.Ack{Error: message}})
		return
	}
	c.hub.deliver(c, models.ServerMessage{Type: models.EvAdminError, Payload: map[string]string{"message": message}})
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan models.ServerMessage, 256),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
