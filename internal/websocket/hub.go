package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// Subscriber is a connection that receives a clinic's events
type Subscriber interface {
	ID() string
	ClinicID() int32
	Send(data []byte) error
	Close() error
}

// EntityFilter is implemented by subscribers that only want some entities
type EntityFilter interface {
	Wants(entity Entity) bool
}

// Hub fans events out to subscribers grouped by clinic.
// It is safe for concurrent use.
type Hub struct {
	rooms map[int32]map[string]Subscriber
	mu    sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int32]map[string]Subscriber),
	}
}

// Register adds a subscriber to its clinic room
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[s.ClinicID()]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[s.ClinicID()] = room
	}
	room[s.ID()] = s

	log.Debug().
		Int32("clinic_id", s.ClinicID()).
		Str("client_id", s.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a subscriber, dropping the room when it empties
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[s.ClinicID()]
	if !ok {
		return
	}
	if _, exists := room[s.ID()]; !exists {
		return
	}
	delete(room, s.ID())
	if len(room) == 0 {
		delete(h.rooms, s.ClinicID())
	}

	log.Debug().
		Int32("clinic_id", s.ClinicID()).
		Str("client_id", s.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to all subscribers of a clinic without blocking on slow clients
func (h *Hub) Broadcast(clinicID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("clinic_id", clinicID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	targets := h.snapshot(clinicID)
	delivered := 0
	for _, s := range targets {
		if f, ok := s.(EntityFilter); ok && !f.Wants(event.Entity) {
			continue
		}
		delivered++
		go func(s Subscriber) {
			if err := s.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("clinic_id", clinicID).
					Str("client_id", s.ID()).
					Msg("Failed to send to client")
			}
		}(s)
	}

	log.Debug().
		Int32("clinic_id", clinicID).
		Str("event_type", event.Type).
		Int("client_count", delivered).
		Msg("Broadcast event")
}

// snapshot copies a room so sends happen outside the lock
func (h *Hub) snapshot(clinicID int32) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[clinicID]
	out := make([]Subscriber, 0, len(room))
	for _, s := range room {
		out = append(out, s)
	}
	return out
}

// ClientCount returns the number of subscribers for a clinic
func (h *Hub) ClientCount(clinicID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[clinicID])
}

// TotalClientCount returns the number of subscribers across all clinics
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}
