package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type paymentFixture struct {
	*agendaFixture
	payments *testutil.MockPaymentRepository
	svc      *PaymentService
	now      time.Time
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		agendaFixture: newAgendaFixture(0),
		now:           time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	f.payments = testutil.NewMockPaymentRepository(f.appointments)
	f.svc = NewPaymentService(f.payments, f.appointments, testWebhookSecret, "BRL")
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return f.now }
	a := f.addAppointment(5, at(2030, 3, 10, 9, 0), domain.AppointmentStatusCompleted)
	a.Price = decimal.NewFromInt(150)
	return f
}

func (f *paymentFixture) deliver(payload string) (*WebhookResult, error) {
	return f.svc.HandleWebhook([]byte(payload), f.svc.Sign([]byte(payload)))
}

func paymentPayload(eventID, created, paidAt string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"type": "payment.succeeded",
		"created": %s,
		"data": {
			"id": "pay_123",
			"amount": "150.00",
			"currency": "brl",
			"paid_at": %s,
			"metadata": {"clinic_id": 1, "appointment_id": 5}
		}
	}`, eventID, created, paidAt)
}

func TestPaymentService_VerifySignature(t *testing.T) {
	svc := NewPaymentService(nil, nil, testWebhookSecret, "BRL")
	payload := []byte(`{"id":"evt_1"}`)
	sig := svc.Sign(payload)

	assert.True(t, svc.VerifySignature(payload, sig))
	assert.True(t, svc.VerifySignature(payload, "sha256="+sig))
	assert.False(t, svc.VerifySignature(payload, "deadbeef"))
	assert.False(t, svc.VerifySignature(payload, "not-hex"))
	assert.False(t, svc.VerifySignature([]byte(`{"id":"evt_2"}`), sig))

	unconfigured := NewPaymentService(nil, nil, "", "BRL")
	assert.False(t, unconfigured.VerifySignature(payload, unconfigured.Sign(payload)))
}

func TestPaymentService_HandleWebhook_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.HandleWebhook([]byte(paymentPayload("evt_1", "null", "null")), "00")

	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, f.payments.Payments)
}

func TestPaymentService_HandleWebhook_MarksAppointmentPaid(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.deliver(paymentPayload("evt_1", `"2030-03-10T12:00:00Z"`, `{"seconds": 1899810000, "nanoseconds": 0}`))

	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.False(t, result.Duplicate)
	assert.Equal(t, "BRL", result.Payment.Currency)
	assert.True(t, result.Payment.Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, int64(1899810000000), result.Payment.PaidAt.UnixMilli())

	appt, err := f.appointments.GetByID(1, 5)
	require.NoError(t, err)
	assert.True(t, appt.IsPaid)
	require.NotNil(t, appt.PaymentReference)
	assert.Equal(t, "pay_123", *appt.PaymentReference)
	assert.Equal(t, []string{"appointment.paid"}, f.publisher.Types())
}

func TestPaymentService_HandleWebhook_TimestampFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		created string
		paidAt  string
		want    time.Time
	}{
		{"paid_at epoch millis", "null", "1899810000000", time.UnixMilli(1899810000000)},
		{"paid_at string", "null", `"2030-03-10T12:00:00Z"`, time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)},
		{"created when paid_at missing", `"2030-03-09T08:00:00Z"`, "null", time.Date(2030, 3, 9, 8, 0, 0, 0, time.UTC)},
		{"created when paid_at garbage", `{"seconds": 1899810000}`, `"soon"`, time.Unix(1899810000, 0)},
		{"now when both missing", "null", "null", time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()

			result, err := f.deliver(paymentPayload("evt_ts", tt.created, tt.paidAt))

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(result.Payment.PaidAt), "got %s", result.Payment.PaidAt)
		})
	}
}

func TestPaymentService_HandleWebhook_DuplicateEvent(t *testing.T) {
	f := newPaymentFixture()
	payload := paymentPayload("evt_dup", "null", "null")

	_, err := f.deliver(payload)
	require.NoError(t, err)

	result, err := f.deliver(payload)
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	require.NotNil(t, result.Payment)
	assert.Equal(t, "evt_dup", result.Payment.EventID)
	assert.Len(t, f.payments.Payments, 1)
	assert.Equal(t, []string{"appointment.paid"}, f.publisher.Types())
}

func TestPaymentService_HandleWebhook_FailedUpdateStoresNothing(t *testing.T) {
	f := newPaymentFixture()
	calls := 0
	f.appointments.MarkPaidFn = func(clinicID, id int32) error {
		calls++
		if calls == 1 {
			return errors.New("db down")
		}
		return nil
	}
	payload := paymentPayload("evt_retry", "null", "null")

	_, err := f.deliver(payload)
	require.Error(t, err)
	assert.Empty(t, f.payments.Payments)
	appt, err := f.appointments.GetByID(1, 5)
	require.NoError(t, err)
	assert.False(t, appt.IsPaid)

	result, err := f.deliver(payload)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Len(t, f.payments.Payments, 1)
	appt, err = f.appointments.GetByID(1, 5)
	require.NoError(t, err)
	assert.True(t, appt.IsPaid)
	assert.Equal(t, []string{"appointment.paid"}, f.publisher.Types())
}

func TestPaymentService_HandleWebhook_ReplaySettlesUnpaidAppointment(t *testing.T) {
	f := newPaymentFixture()
	// recorded by an earlier delivery that never flagged the appointment
	f.payments.AddPayment(&domain.Payment{
		ClinicID:      1,
		AppointmentID: 5,
		EventID:       "evt_half",
		Amount:        decimal.NewFromInt(150),
		Currency:      "BRL",
		PaidAt:        f.now,
	})

	result, err := f.deliver(paymentPayload("evt_half", "null", "null"))

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	appt, err := f.appointments.GetByID(1, 5)
	require.NoError(t, err)
	assert.True(t, appt.IsPaid)
	require.NotNil(t, appt.PaymentReference)
	assert.Equal(t, "pay_123", *appt.PaymentReference)
	assert.Len(t, f.payments.Payments, 1)
	assert.Equal(t, []string{"appointment.paid"}, f.publisher.Types())

	// a settled appointment is left alone on later replays
	_, err = f.deliver(paymentPayload("evt_half", "null", "null"))
	require.NoError(t, err)
	assert.Len(t, f.publisher.Types(), 1)
}

func TestPaymentService_HandleWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.deliver(`{"id":"evt_9","type":"payment.refunded","data":{}}`)

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Empty(t, f.payments.Payments)
}

func TestPaymentService_HandleWebhook_BadPayloads(t *testing.T) {
	f := newPaymentFixture()

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"malformed json", `{"id":`, domain.ErrInvalidInput},
		{"missing id", `{"type":"payment.succeeded"}`, domain.ErrInvalidInput},
		{"missing metadata", `{"id":"evt_x","type":"payment.succeeded","data":{"amount":"10"}}`, domain.ErrInvalidInput},
		{"zero amount", `{"id":"evt_x","type":"payment.succeeded","data":{"amount":"0","metadata":{"clinic_id":1,"appointment_id":5}}}`, domain.ErrInvalidInput},
		{"unknown appointment", `{"id":"evt_x","type":"payment.succeeded","data":{"amount":"10","metadata":{"clinic_id":1,"appointment_id":77}}}`, domain.ErrAppointmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.deliver(tt.payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPaymentService_ListPayments(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.deliver(paymentPayload("evt_1", "null", "null"))
	require.NoError(t, err)

	payments, err := f.svc.ListPayments(1, 5)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = f.svc.ListPayments(1, 99)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}
