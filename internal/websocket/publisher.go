package websocket

// EventPublisher delivers events to every client connected to a clinic
type EventPublisher interface {
	Publish(clinicID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher
func (h *Hub) Publish(clinicID int32, event Event) {
	h.Broadcast(clinicID, event)
}

// NoOpPublisher discards events (tests, or realtime disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(clinicID int32, event Event) {}
