package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is what happened to an entity
type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionCancelled   Action = "cancelled"
	ActionRescheduled Action = "rescheduled"
	ActionPaid        Action = "paid"
	ActionDeleted     Action = "deleted"
)

// Entity is the kind of record an event is about
type Entity string

const (
	EntityAppointment Entity = "appointment"
	EntityPatient     Entity = "patient"
	EntityExpense     Entity = "expense"
)

// Event is the message pushed to agenda clients:
// { type, entity, payload, timestamp }
type Event struct {
	Type      string    `json:"type"` // e.g. "appointment.created"
	Entity    Entity    `json:"entity"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current UTC time
func NewEvent(action Action, entity Entity, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entity, action),
		Entity:    entity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func AppointmentCreated(payload any) Event {
	return NewEvent(ActionCreated, EntityAppointment, payload)
}

func AppointmentUpdated(payload any) Event {
	return NewEvent(ActionUpdated, EntityAppointment, payload)
}

func AppointmentRescheduled(payload any) Event {
	return NewEvent(ActionRescheduled, EntityAppointment, payload)
}

func AppointmentCancelled(payload any) Event {
	return NewEvent(ActionCancelled, EntityAppointment, payload)
}

func AppointmentPaid(payload any) Event {
	return NewEvent(ActionPaid, EntityAppointment, payload)
}

func PatientCreated(payload any) Event {
	return NewEvent(ActionCreated, EntityPatient, payload)
}

func ExpenseCreated(payload any) Event {
	return NewEvent(ActionCreated, EntityExpense, payload)
}

func ExpenseUpdated(payload any) Event {
	return NewEvent(ActionUpdated, EntityExpense, payload)
}

func ExpenseDeleted(payload any) Event {
	return NewEvent(ActionDeleted, EntityExpense, payload)
}
