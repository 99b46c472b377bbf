package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problemDetails mirrors handler.ProblemDetails; middleware cannot import handler
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const (
	errorTypeUnauthorized = "https://clinica.app/errors/unauthorized"
	errorTypeRateLimit    = "https://clinica.app/errors/rate-limit"
)

func writeProblem(c echo.Context, status int, errorType, detail string) error {
	return c.JSON(status, problemDetails{
		Type:     errorType,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusUnauthorized, errorTypeUnauthorized, detail)
}

func rateLimitError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusTooManyRequests, errorTypeRateLimit, detail)
}
