package notify

import (
	"encoding/json"
	"time"
)

// Kind identifies the notification template consumers should render
type Kind string

const (
	KindBookingConfirmed Kind = "booking_confirmed"
	KindRescheduled      Kind = "rescheduled"
	KindCancelled        Kind = "cancelled"
)

// AppointmentMessage is the payload published for patient notifications.
// Consumers look up anything else they need by AppointmentID.
type AppointmentMessage struct {
	Kind          Kind      `json:"kind"`
	ClinicID      int32     `json:"clinicId"`
	AppointmentID int32     `json:"appointmentId"`
	PatientName   string    `json:"patientName"`
	PatientPhone  string    `json:"patientPhone"`
	StartsAt      time.Time `json:"startsAt"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *AppointmentMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AppointmentMessageFromJSON decodes a message
func AppointmentMessageFromJSON(data []byte) (*AppointmentMessage, error) {
	var msg AppointmentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
