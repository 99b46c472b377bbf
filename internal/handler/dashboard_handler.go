package handler

import (
	"net/http"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// AppointmentCountsResponse holds appointment counts by status
type AppointmentCountsResponse struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"noShow"`
}

// MonthFinancialsResponse represents one month of the dashboard
type MonthFinancialsResponse struct {
	Year         int                       `json:"year"`
	Month        int                       `json:"month"`
	Label        string                    `json:"label"`
	Revenue      string                    `json:"revenue"`
	Receivable   string                    `json:"receivable"`
	Expenses     string                    `json:"expenses"`
	ExpensesPaid string                    `json:"expensesPaid"`
	ByCategory   map[string]string         `json:"expensesByCategory"`
	Net          string                    `json:"net"`
	Appointments AppointmentCountsResponse `json:"appointments"`
}

// ComparisonResponse holds current-minus-previous deltas
type ComparisonResponse struct {
	RevenueDelta      string  `json:"revenueDelta"`
	ExpensesDelta     string  `json:"expensesDelta"`
	NetDelta          string  `json:"netDelta"`
	AppointmentsDelta int     `json:"appointmentsDelta"`
	RevenueChangePct  *string `json:"revenueChangePct,omitempty"`
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	Current    MonthFinancialsResponse `json:"current"`
	Previous   MonthFinancialsResponse `json:"previous"`
	Comparison ComparisonResponse      `json:"comparison"`
	LimitUsage *domain.LimitUsage      `json:"limitUsage"`
	IsHistoric bool                    `json:"isHistoric"`
}

func toMonthFinancialsResponse(m *domain.MonthFinancials) MonthFinancialsResponse {
	resp := MonthFinancialsResponse{
		Year:       m.Year,
		Month:      m.Month,
		Label:      m.Label,
		Revenue:    m.Revenue.StringFixed(2),
		Receivable: m.Receivable.StringFixed(2),
		Net:        m.Net.StringFixed(2),
		ByCategory: map[string]string{},
	}
	if m.Expenses != nil {
		resp.Expenses = m.Expenses.Total.StringFixed(2)
		resp.ExpensesPaid = m.Expenses.Paid.StringFixed(2)
		for cat, amount := range m.Expenses.ByCat {
			resp.ByCategory[string(cat)] = amount.StringFixed(2)
		}
	} else {
		resp.Expenses = decimal.Zero.StringFixed(2)
		resp.ExpensesPaid = decimal.Zero.StringFixed(2)
	}
	if a := m.Appointments; a != nil {
		resp.Appointments = AppointmentCountsResponse{
			Total:     a.Total,
			Scheduled: a.Scheduled,
			Confirmed: a.Confirmed,
			Completed: a.Completed,
			Cancelled: a.Cancelled,
			NoShow:    a.NoShow,
		}
	}
	return resp
}

func toDashboardSummaryResponse(s *domain.DashboardSummary) DashboardSummaryResponse {
	resp := DashboardSummaryResponse{
		Current:    toMonthFinancialsResponse(s.Current),
		Previous:   toMonthFinancialsResponse(s.Previous),
		LimitUsage: s.LimitUsage,
		IsHistoric: s.IsHistoric,
	}
	if cmp := s.Comparison; cmp != nil {
		resp.Comparison = ComparisonResponse{
			RevenueDelta:      cmp.RevenueDelta.StringFixed(2),
			ExpensesDelta:     cmp.ExpensesDelta.StringFixed(2),
			NetDelta:          cmp.NetDelta.StringFixed(2),
			AppointmentsDelta: cmp.AppointmentsDelta,
		}
		if cmp.RevenueChangePct != nil {
			pct := cmp.RevenueChangePct.StringFixed(2)
			resp.Comparison.RevenueChangePct = &pct
		}
	}
	return resp
}

// GetSummary godoc
// @Summary Monthly dashboard
// @Description Revenue, expenses and appointment counts for a month compared with the month before. Defaults to the current month.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} DashboardSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	var summary *domain.DashboardSummary
	var err error
	if c.QueryParam("year") == "" && c.QueryParam("month") == "" {
		// current month as seen from the clinic timezone
		summary, err = h.dashboardService.GetCurrentSummary(clinicID)
	} else {
		year, month, verrs := parseOptionalYearMonth(c)
		if verrs != nil {
			return NewValidationError(c, "Validation failed", verrs)
		}
		summary, err = h.dashboardService.GetSummary(clinicID, year, month)
	}
	if err != nil {
		return handleServiceError(c, err, "get dashboard summary")
	}
	return c.JSON(http.StatusOK, toDashboardSummaryResponse(summary))
}
