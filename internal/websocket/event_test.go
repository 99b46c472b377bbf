package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	evt := NewEvent(ActionRescheduled, EntityAppointment, map[string]any{"id": 1})

	assert.Equal(t, "appointment.rescheduled", evt.Type)
	assert.Equal(t, EntityAppointment, evt.Entity)
	assert.False(t, evt.Timestamp.Before(before))
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		evt  Event
		want string
	}{
		{AppointmentCreated(nil), "appointment.created"},
		{AppointmentUpdated(nil), "appointment.updated"},
		{AppointmentRescheduled(nil), "appointment.rescheduled"},
		{AppointmentCancelled(nil), "appointment.cancelled"},
		{AppointmentPaid(nil), "appointment.paid"},
		{PatientCreated(nil), "patient.created"},
		{ExpenseCreated(nil), "expense.created"},
		{ExpenseUpdated(nil), "expense.updated"},
		{ExpenseDeleted(nil), "expense.deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.evt.Type)
		})
	}
}

func TestEvent_ToJSON(t *testing.T) {
	evt := AppointmentCreated(map[string]any{"id": 42, "status": "scheduled"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "appointment.created", decoded["type"])
	assert.Equal(t, "appointment", decoded["entity"])
	assert.Contains(t, decoded, "timestamp")

	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, float64(42), payload["id"])
}
