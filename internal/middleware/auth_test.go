package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

func TestGetAuth0ID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns auth0 id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), Auth0IDKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			result := GetAuth0ID(c)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetCustomClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns custom claims when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|12345"},
			CustomClaims:     &CustomClaims{Email: "ana@example.com", Name: "Ana"},
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		custom := GetCustomClaims(c)
		if custom == nil {
			t.Fatal("Expected custom claims, got nil")
		}
		if custom.Email != "ana@example.com" {
			t.Errorf("Expected email ana@example.com, got %q", custom.Email)
		}
		if GetClaims(c) != claims {
			t.Error("Expected GetClaims to return stored claims")
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		if GetCustomClaims(c) != nil {
			t.Error("Expected nil custom claims")
		}
	})
}

func TestGetClinicID(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if id := GetClinicID(c); id != 0 {
		t.Errorf("Expected 0 without clinic, got %d", id)
	}

	ctx := context.WithValue(c.Request().Context(), ClinicIDKey, int32(42))
	c.SetRequest(c.Request().WithContext(ctx))
	if id := GetClinicID(c); id != 42 {
		t.Errorf("Expected 42, got %d", id)
	}
}

// fakeValidator accepts a single token and returns claims for a fixed subject
type fakeValidator struct {
	token   string
	subject string
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != f.token {
		return nil, errors.New("bad token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: f.subject},
		CustomClaims:     &CustomClaims{Email: "owner@example.com"},
	}, nil
}

// MockClinicProvider resolves clinics from a map
type MockClinicProvider struct {
	clinics map[string]int32
	calls   int
}

func (m *MockClinicProvider) GetClinicIDByAuth0ID(auth0ID string) (int32, error) {
	m.calls++
	if id, ok := m.clinics[auth0ID]; ok {
		return id, nil
	}
	return 0, errors.New("not found")
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return rec, c, called
}

func TestAuthMiddleware_RejectsBadHeaders(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|1"}, nil)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer ", "Bearer bad"} {
		rec, _, called := runAuth(t, m.Authenticate(), header)
		if called {
			t.Errorf("Handler should not run for header %q", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for header %q, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_ClinicInjection(t *testing.T) {
	provider := &MockClinicProvider{clinics: map[string]int32{"auth0|owner": 7}}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|owner"}, provider)

	rec, c, called := runAuth(t, m.Authenticate(), "Bearer good")
	if !called {
		t.Fatalf("Expected handler to run, got status %d", rec.Code)
	}
	if GetClinicID(c) != 7 {
		t.Errorf("Expected clinic 7, got %d", GetClinicID(c))
	}
	if GetAuth0ID(c) != "auth0|owner" {
		t.Errorf("Expected auth0 id, got %q", GetAuth0ID(c))
	}
}

func TestAuthMiddleware_UnknownClinic(t *testing.T) {
	provider := &MockClinicProvider{clinics: map[string]int32{}}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|stranger"}, provider)

	rec, _, called := runAuth(t, m.Authenticate(), "Bearer good")
	if called {
		t.Error("Handler should not run without a clinic")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_AuthenticateUserSkipsClinicLookup(t *testing.T) {
	provider := &MockClinicProvider{clinics: map[string]int32{}}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|new"}, provider)

	_, c, called := runAuth(t, m.AuthenticateUser(), "Bearer good")
	if !called {
		t.Fatal("Expected handler to run")
	}
	if provider.calls != 0 {
		t.Errorf("Expected no clinic lookups, got %d", provider.calls)
	}
	if GetClinicID(c) != 0 {
		t.Errorf("Expected no clinic in context, got %d", GetClinicID(c))
	}
	if claims := GetCustomClaims(c); claims == nil || claims.Email != "owner@example.com" {
		t.Error("Expected custom claims in context")
	}
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("bearer abc.def")
	if err != nil || token != "abc.def" {
		t.Errorf("Expected abc.def, got %q (%v)", token, err)
	}
	if _, err := bearerToken(""); !errors.Is(err, errMissingAuthHeader) {
		t.Errorf("Expected missing header error, got %v", err)
	}
	for _, header := range []string{"Bearer", "Bearer   ", "Token abc"} {
		if _, err := bearerToken(header); !errors.Is(err, errMalformedHeader) {
			t.Errorf("Expected malformed error for %q, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_CachesClinicLookup(t *testing.T) {
	provider := &MockClinicProvider{clinics: map[string]int32{"auth0|owner": 7}}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|owner"}, provider)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, c, called := runAuth(t, m.Authenticate(), "Bearer good"); !called || GetClinicID(c) != 7 {
			t.Fatalf("Request %d: expected clinic 7", i)
		}
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 lookup, got %d", provider.calls)
	}

	now = now.Add(clinicCacheTTL + time.Second)
	runAuth(t, m.Authenticate(), "Bearer good")
	if provider.calls != 2 {
		t.Errorf("Expected a fresh lookup after expiry, got %d calls", provider.calls)
	}
}
