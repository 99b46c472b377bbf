package handler

import (
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth      *AuthHandler
	Clinic    *ClinicHandler
	Patient   *PatientHandler
	Agenda    *AgendaHandler
	Expense   *ExpenseHandler
	Receipt   *ReceiptHandler
	Dashboard *DashboardHandler
	Public    *PublicHandler
	Payment   *PaymentHandler
	WebSocket *WebSocketHandler
	OpenAPI   echo.HandlerFunc
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, publicLimiter *middleware.RateLimiter, h *Handlers) {
	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.OpenAPI != nil {
		e.GET("/openapi.json", h.OpenAPI)
	}

	// Realtime agenda updates (token in query)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes; the callback runs before the clinic exists
	auth := api.Group("/auth")
	auth.POST("/callback", h.Auth.Callback, authMiddleware.AuthenticateUser())
	auth.GET("/me", h.Auth.Me, authMiddleware.AuthenticateUser())
	auth.POST("/logout", h.Auth.Logout, authMiddleware.AuthenticateUser())

	// Clinic settings (protected)
	clinic := api.Group("/clinic")
	clinic.Use(authMiddleware.Authenticate())
	clinic.GET("", h.Clinic.GetClinic)
	clinic.PUT("", h.Clinic.UpdateClinic)

	// Patient routes (protected)
	patients := api.Group("/patients")
	patients.Use(authMiddleware.Authenticate())
	patients.POST("", h.Patient.CreatePatient)
	patients.GET("", h.Patient.GetPatients)
	patients.GET("/:id", h.Patient.GetPatient)
	patients.PUT("/:id", h.Patient.UpdatePatient)
	patients.DELETE("/:id", h.Patient.DeletePatient)

	// Appointment routes (protected)
	appointments := api.Group("/appointments")
	appointments.Use(authMiddleware.Authenticate())
	appointments.POST("", h.Agenda.CreateAppointment)
	appointments.GET("", h.Agenda.GetDay)
	appointments.GET("/limit-usage", h.Agenda.GetLimitUsage)
	appointments.GET("/month/:year/:month", h.Agenda.GetMonth)
	appointments.GET("/:id", h.Agenda.GetAppointment)
	appointments.PATCH("/:id/status", h.Agenda.UpdateStatus)
	appointments.PATCH("/:id/reschedule", h.Agenda.Reschedule)
	appointments.POST("/:id/cancel", h.Agenda.Cancel)
	appointments.GET("/:id/payments", h.Payment.GetPayments)

	// Expense routes (protected)
	expenses := api.Group("/expenses")
	expenses.Use(authMiddleware.Authenticate())
	expenses.POST("", h.Expense.CreateExpense)
	expenses.GET("/:year/:month", h.Expense.GetExpenses)
	expenses.POST("/:year/:month/materialize", h.Expense.MaterializeRecurring)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)
	expenses.PATCH("/:id/toggle-paid", h.Expense.TogglePaid)
	expenses.POST("/:id/receipt", h.Receipt.UploadReceipt)
	expenses.GET("/:id/receipt", h.Receipt.GetReceipt)
	expenses.DELETE("/:id/receipt", h.Receipt.DeleteReceipt)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.Use(authMiddleware.Authenticate())
	dashboard.GET("/summary", h.Dashboard.GetSummary)

	// Public booking page (rate limited per IP)
	public := api.Group("/public/:slug")
	public.Use(middleware.RateLimitMiddleware(publicLimiter))
	public.GET("", h.Public.GetClinic)
	public.GET("/slots", h.Public.GetSlots)
	public.POST("/book", h.Public.Book)

	// Provider webhooks (HMAC signed)
	api.POST("/webhooks/payments", h.Payment.Webhook)
}
