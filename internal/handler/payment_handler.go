package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body
const SignatureHeader = "X-Signature"

// maxWebhookBody bounds webhook payloads
const maxWebhookBody = 1 << 20

// PaymentHandler handles payment provider webhooks and payment history
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse represents a stored payment
type PaymentResponse struct {
	ID            int32  `json:"id"`
	AppointmentID int32  `json:"appointmentId"`
	ProviderID    string `json:"providerId"`
	EventID       string `json:"eventId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaidAt        string `json:"paidAt"`
}

// Webhook godoc
// @Summary Payment provider webhook
// @Description Verifies the X-Signature HMAC, then marks the referenced appointment paid. Repeated event ids are acknowledged without side effects.
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Signature header string true "hex HMAC-SHA256 of the raw body"
// @Success 200 {object} service.WebhookResult
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /webhooks/payments [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return NewValidationError(c, "Failed to read body", nil)
	}

	result, err := h.paymentService.HandleWebhook(body, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		log.Warn().Err(err).Msg("Payment webhook rejected")
		return handleServiceError(c, err, "process payment webhook")
	}
	return c.JSON(http.StatusOK, result)
}

// GetPayments godoc
// @Summary Payments of an appointment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {array} PaymentResponse
// @Router /appointments/{id}/payments [get]
func (h *PaymentHandler) GetPayments(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid appointment ID", nil)
	}

	payments, err := h.paymentService.ListPayments(clinicID, id)
	if err != nil {
		return handleServiceError(c, err, "list payments")
	}

	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, PaymentResponse{
			ID:            p.ID,
			AppointmentID: p.AppointmentID,
			ProviderID:    p.ProviderID,
			EventID:       p.EventID,
			Amount:        p.Amount.StringFixed(2),
			Currency:      p.Currency,
			PaidAt:        p.PaidAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
