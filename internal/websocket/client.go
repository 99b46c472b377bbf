package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBuffer     = 256

	// CloseSessionExpired is sent when the access token behind a connection expires
	CloseSessionExpired = 4001
)

// Control actions agenda clients send to narrow or widen their feed
const (
	ControlSubscribe   = "subscribe"
	ControlUnsubscribe = "unsubscribe"
)

var knownEntities = map[Entity]bool{
	EntityAppointment: true,
	EntityPatient:     true,
	EntityExpense:     true,
}

// ParseEntities parses a comma separated entity list such as "appointment,expense".
// An empty list means every entity.
func ParseEntities(csv string) ([]Entity, error) {
	var out []Entity
	for _, part := range strings.Split(csv, ",") {
		name := Entity(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !knownEntities[name] {
			return nil, fmt.Errorf("unknown entity %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// controlMessage is the only frame clients send: {"action":"subscribe","entities":["expense"]}
type controlMessage struct {
	Action   string   `json:"action"`
	Entities []Entity `json:"entities"`
}

// Client is a single agenda WebSocket connection bound to an authenticated session
type Client struct {
	id        string
	session   Session
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	entities  map[Entity]bool // nil receives everything
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a client receiving the given entities, or all when none are given
func NewClient(conn *websocket.Conn, session Session, hub *Hub, entities []Entity) *Client {
	c := &Client{
		id:      uuid.New().String(),
		session: session,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBuffer),
	}
	if len(entities) > 0 {
		c.entities = make(map[Entity]bool, len(entities))
		for _, e := range entities {
			c.entities[e] = true
		}
	}
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) ClinicID() int32 { return c.session.ClinicID }

// Wants reports whether events about entity are delivered to this client
func (c *Client) Wants(entity Entity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities == nil || c.entities[entity]
}

// subscribe widens the feed; a client already receiving everything is unchanged
func (c *Client) subscribe(entities []Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entities == nil {
		return
	}
	for _, e := range entities {
		c.entities[e] = true
	}
}

// unsubscribe narrows the feed; dropping every entity leaves an empty, silent feed
func (c *Client) unsubscribe(entities []Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entities == nil {
		c.entities = make(map[Entity]bool, len(knownEntities))
		for e := range knownEntities {
			c.entities[e] = true
		}
	}
	for _, e := range entities {
		delete(c.entities, e)
	}
}

// handleControl applies a subscribe or unsubscribe frame
func (c *Client) handleControl(data []byte) error {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("malformed control message: %w", err)
	}
	for _, e := range msg.Entities {
		if !knownEntities[e] {
			return fmt.Errorf("unknown entity %q", e)
		}
	}
	switch msg.Action {
	case ControlSubscribe:
		c.subscribe(msg.Entities)
	case ControlUnsubscribe:
		c.unsubscribe(msg.Entities)
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return nil
}

// Send queues a message; a full buffer means the client is too slow and is treated as closed
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close closes the connection; safe to call more than once
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// ReadPump applies control frames until the connection drops. Run in a goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
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
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("clinic_id", c.session.ClinicID).
					Msg("WebSocket unexpected close")
			}
			return
		}
		if err := c.handleControl(data); err != nil {
			log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring WebSocket frame")
		}
	}
}

// WritePump writes queued messages and periodic pings, and ends the
// connection when the session expires. Run in a goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	var expired <-chan time.Time
	if !c.session.ExpiresAt.IsZero() {
		timer := time.NewTimer(time.Until(c.session.ExpiresAt))
		defer timer.Stop()
		expired = timer.C
	}
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("clinic_id", c.session.ClinicID).
					Msg("WebSocket write error")
				return
			}

		case <-expired:
			log.Info().
				Str("client_id", c.id).
				Int32("clinic_id", c.session.ClinicID).
				Msg("WebSocket session expired")
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(CloseSessionExpired, "token expired"))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
