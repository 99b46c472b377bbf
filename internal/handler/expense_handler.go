package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles clinic expense requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest represents the create/update expense body
type ExpenseRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Category     string `json:"category"`
	Date         string `json:"date"` // YYYY-MM-DD
	IsPaid       bool   `json:"isPaid"`
	RecurringDay *int   `json:"recurringDay,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID           int32  `json:"id"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Category     string `json:"category"`
	Date         string `json:"date"`
	IsPaid       bool   `json:"isPaid"`
	RecurringDay *int   `json:"recurringDay,omitempty"`
	TemplateID   *int32 `json:"templateId,omitempty"`
	HasReceipt   bool   `json:"hasReceipt"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount.StringFixed(2),
		Category:     string(e.Category),
		Date:         e.ExpenseDate.Format(dateLayout),
		IsPaid:       e.IsPaid,
		RecurringDay: e.RecurringDay,
		TemplateID:   e.TemplateID,
		HasReceipt:   e.ReceiptPath != nil,
	}
}

func toExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	resp := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, toExpenseResponse(e))
	}
	return resp
}

func (r ExpenseRequest) toInput() (service.ExpenseInput, []ValidationError) {
	var verrs []ValidationError
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		verrs = append(verrs, ValidationError{Field: "amount", Message: "Invalid decimal"})
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		verrs = append(verrs, ValidationError{Field: "date", Message: "Use YYYY-MM-DD"})
	}
	return service.ExpenseInput{
		Description:  r.Description,
		Amount:       amount,
		Category:     domain.ExpenseCategory(r.Category),
		ExpenseDate:  date,
		IsPaid:       r.IsPaid,
		RecurringDay: r.RecurringDay,
	}, verrs
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Setting recurringDay makes the expense a monthly template
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verrs := req.toInput()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	expense, err := h.expenseService.CreateExpense(clinicID, input)
	if err != nil {
		return handleServiceError(c, err, "create expense")
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses godoc
// @Summary List a month's expenses
// @Description Recurring templates are copied into current and future months on first read
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Router /expenses/{year}/{month} [get]
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	year, month, ok := parseYearMonthParams(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	expenses, err := h.expenseService.ListByMonth(clinicID, year, month)
	if err != nil {
		return handleServiceError(c, err, "list expenses")
	}
	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// MaterializeRecurring godoc
// @Summary Copy recurring expenses into a month
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Router /expenses/{year}/{month}/materialize [post]
func (h *ExpenseHandler) MaterializeRecurring(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	year, month, ok := parseYearMonthParams(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	created, err := h.expenseService.MaterializeRecurring(clinicID, year, month)
	if err != nil {
		return handleServiceError(c, err, "materialize recurring expenses")
	}

	log.Info().
		Int32("clinic_id", clinicID).
		Int("year", year).
		Int("month", month).
		Int("created", len(created)).
		Msg("Recurring expenses materialized")

	return c.JSON(http.StatusOK, toExpenseResponses(created))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param request body ExpenseRequest true "Expense"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verrs := req.toInput()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	expense, err := h.expenseService.UpdateExpense(clinicID, id, input)
	if err != nil {
		return handleServiceError(c, err, "update expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// TogglePaid godoc
// @Summary Toggle an expense's paid flag
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id}/toggle-paid [patch]
func (h *ExpenseHandler) TogglePaid(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.TogglePaid(clinicID, id)
	if err != nil {
		return handleServiceError(c, err, "toggle expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(clinicID, id); err != nil {
		return handleServiceError(c, err, "delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}
