package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// ClinicIDKey is the context key for the caller's clinic ID
	ClinicIDKey contextKey = "clinic_id"
)

// ClinicProvider resolves the clinic owned by an Auth0 subject
type ClinicProvider interface {
	GetClinicIDByAuth0ID(auth0ID string) (int32, error)
}

// TokenValidator validates a raw bearer token; *validator.Validator satisfies it
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// clinicCacheTTL bounds how long a subject's clinic id is reused. Ownership
// never moves between clinics, so staleness only matters for deleted accounts.
const clinicCacheTTL = time.Minute

type cachedClinic struct {
	id      int32
	expires time.Time
}

// AuthMiddleware validates Auth0 bearer tokens and resolves the caller's clinic
type AuthMiddleware struct {
	validator      TokenValidator
	clinicProvider ClinicProvider

	mu      sync.Mutex
	clinics map[string]cachedClinic
	now     func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domain, audience string, clinicProvider ClinicProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator, clinicProvider), nil
}

// NewAuthMiddlewareWithValidator wires a custom token validator
func NewAuthMiddlewareWithValidator(v TokenValidator, clinicProvider ClinicProvider) *AuthMiddleware {
	return &AuthMiddleware{
		validator:      v,
		clinicProvider: clinicProvider,
		clinics:        make(map[string]cachedClinic),
		now:            time.Now,
	}
}

// Authenticate validates the bearer token and injects the caller's clinic
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return m.authenticate(true)
}

// AuthenticateUser validates the bearer token only. Used by the login
// callback, which runs before the clinic exists.
func (m *AuthMiddleware) AuthenticateUser() echo.MiddlewareFunc {
	return m.authenticate(false)
}

var (
	errMissingAuthHeader = errors.New("missing authorization header")
	errMalformedHeader   = errors.New("invalid authorization header format")
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" value
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}

// clinicFor resolves a subject's clinic, consulting the cache first
func (m *AuthMiddleware) clinicFor(auth0ID string) (int32, error) {
	now := m.now()
	m.mu.Lock()
	if entry, ok := m.clinics[auth0ID]; ok && now.Before(entry.expires) {
		m.mu.Unlock()
		return entry.id, nil
	}
	m.mu.Unlock()

	id, err := m.clinicProvider.GetClinicIDByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.clinics[auth0ID] = cachedClinic{id: id, expires: now.Add(clinicCacheTTL)}
	m.mu.Unlock()
	return id, nil
}

func (m *AuthMiddleware) authenticate(requireClinic bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return unauthorizedError(c, err.Error())
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validated, ok := claims.(*validator.ValidatedClaims)
			if !ok || validated.RegisteredClaims.Subject == "" {
				return unauthorizedError(c, "invalid claims")
			}
			auth0ID := validated.RegisteredClaims.Subject

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validated)
			ctx = context.WithValue(ctx, Auth0IDKey, auth0ID)

			if requireClinic && m.clinicProvider != nil {
				clinicID, err := m.clinicFor(auth0ID)
				if err != nil {
					log.Debug().Err(err).Str("auth0_id", auth0ID).Msg("Clinic lookup failed")
					return unauthorizedError(c, "clinic not found")
				}
				ctx = context.WithValue(ctx, ClinicIDKey, clinicID)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// GetClinicID extracts the clinic ID from the context
func GetClinicID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(ClinicIDKey).(int32); ok {
		return id
	}
	return 0
}
