package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/util"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EventPaymentSucceeded is the only provider event that settles an appointment
const EventPaymentSucceeded = "payment.succeeded"

// PaymentEvent is the provider webhook body. Timestamps arrive in several
// shapes depending on the provider SDK, so they are normalized on decode.
type PaymentEvent struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Created util.FlexibleTime `json:"created"`
	Data    struct {
		ID       string            `json:"id"`
		Amount   decimal.Decimal   `json:"amount"`
		Currency string            `json:"currency"`
		PaidAt   util.FlexibleTime `json:"paid_at"`
		Metadata struct {
			ClinicID      int32 `json:"clinic_id"`
			AppointmentID int32 `json:"appointment_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// WebhookResult describes what a webhook delivery did
type WebhookResult struct {
	EventID   string          `json:"eventId"`
	Ignored   bool            `json:"ignored"`
	Duplicate bool            `json:"duplicate"`
	Payment   *domain.Payment `json:"payment,omitempty"`
}

// PaymentService settles appointments from payment provider webhooks
type PaymentService struct {
	paymentRepo     domain.PaymentRepository
	appointmentRepo domain.AppointmentRepository
	publisher       websocket.EventPublisher
	secret          []byte
	currency        string
	now             func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	appointmentRepo domain.AppointmentRepository,
	webhookSecret string,
	currency string,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		appointmentRepo: appointmentRepo,
		secret:          []byte(webhookSecret),
		currency:        currency,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.publisher = publisher
}

// Sign returns the hex HMAC-SHA256 of payload under the webhook secret
func (s *PaymentService) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a hex signature, optionally prefixed with "sha256="
func (s *PaymentService) VerifySignature(payload []byte, signature string) bool {
	if len(s.secret) == 0 {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// HandleWebhook verifies and applies a provider event. Replays of an already
// processed event succeed without side effects.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) (*WebhookResult, error) {
	if !s.VerifySignature(payload, signature) {
		return nil, domain.ErrInvalidSignature
	}

	var event PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidInput
	}
	if event.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	result := &WebhookResult{EventID: event.ID}
	if event.Type != EventPaymentSucceeded {
		log.Debug().Str("event_id", event.ID).Str("type", event.Type).Msg("Ignoring payment event")
		result.Ignored = true
		return result, nil
	}

	if existing, err := s.paymentRepo.GetByEventID(event.ID); err == nil {
		result.Duplicate = true
		result.Payment = existing
		if err := s.settle(existing, webhookReference(event)); err != nil {
			return nil, err
		}
		return result, nil
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	meta := event.Data.Metadata
	if meta.ClinicID == 0 || meta.AppointmentID == 0 || !event.Data.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.appointmentRepo.GetByID(meta.ClinicID, meta.AppointmentID); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(event.Data.Currency))
	if currency == "" {
		currency = s.currency
	}

	// paid_at wins, then the event creation time, then arrival time
	paidAt := event.Data.PaidAt.Or(event.Created.Or(s.now()))

	payment, appt, err := s.paymentRepo.CreateAndMarkPaid(&domain.Payment{
		ClinicID:      meta.ClinicID,
		AppointmentID: meta.AppointmentID,
		ProviderID:    event.Data.ID,
		EventID:       event.ID,
		Amount:        event.Data.Amount,
		Currency:      currency,
		PaidAt:        paidAt.UTC(),
	}, webhookReference(event))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			result.Duplicate = true
			return result, nil
		}
		return nil, err
	}

	log.Info().
		Str("event_id", event.ID).
		Int32("clinic_id", meta.ClinicID).
		Int32("appointment_id", meta.AppointmentID).
		Str("amount", payment.Amount.String()).
		Msg("Appointment paid")

	if s.publisher != nil {
		s.publisher.Publish(meta.ClinicID, websocket.AppointmentPaid(appt))
	}

	result.Payment = payment
	return result, nil
}

// settle flags the appointment of an already recorded payment paid when an
// earlier delivery stored the payment without it
func (s *PaymentService) settle(payment *domain.Payment, reference string) error {
	appt, err := s.appointmentRepo.GetByID(payment.ClinicID, payment.AppointmentID)
	if err != nil {
		return err
	}
	if appt.IsPaid {
		return nil
	}
	appt, err = s.appointmentRepo.MarkPaid(payment.ClinicID, payment.AppointmentID, reference)
	if err != nil {
		return err
	}
	log.Warn().
		Str("event_id", payment.EventID).
		Int32("appointment_id", payment.AppointmentID).
		Msg("Replayed payment event settled an unpaid appointment")
	if s.publisher != nil {
		s.publisher.Publish(payment.ClinicID, websocket.AppointmentPaid(appt))
	}
	return nil
}

func webhookReference(event PaymentEvent) string {
	if event.Data.ID != "" {
		return event.Data.ID
	}
	return event.ID
}

// ListPayments lists the payments recorded for an appointment
func (s *PaymentService) ListPayments(clinicID, appointmentID int32) ([]*domain.Payment, error) {
	if _, err := s.appointmentRepo.GetByID(clinicID, appointmentID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByAppointment(clinicID, appointmentID)
}
