package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

var (
	// ErrInvalidToken is returned when JWT validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrClinicNotFound is returned when the token's subject owns no clinic
	ErrClinicNotFound = errors.New("clinic not found")
)

// ClinicLookup resolves an Auth0 subject to its clinic
type ClinicLookup interface {
	GetClinicIDByAuth0ID(auth0ID string) (int32, error)
}

// Session is what an agenda connection is allowed to see and for how long.
// A zero ExpiresAt never expires.
type Session struct {
	ClinicID  int32
	Subject   string
	ExpiresAt time.Time
}

type emptyClaims struct{}

func (emptyClaims) Validate(ctx context.Context) error { return nil }

// Auth0JWTValidator turns the token presented at upgrade time into a Session
type Auth0JWTValidator struct {
	validator *validator.Validator
	lookup    ClinicLookup
}

// NewAuth0JWTValidator creates a validator for the given Auth0 tenant
func NewAuth0JWTValidator(domain, audience string, lookup ClinicLookup) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	v, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &emptyClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{validator: v, lookup: lookup}, nil
}

// ValidateToken checks the token and resolves the caller's clinic
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (Session, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	return sessionFromClaims(validated.RegisteredClaims, v.lookup)
}

func sessionFromClaims(claims validator.RegisteredClaims, lookup ClinicLookup) (Session, error) {
	if claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	clinicID, err := lookup.GetClinicIDByAuth0ID(claims.Subject)
	if err != nil {
		return Session{}, ErrClinicNotFound
	}

	session := Session{ClinicID: clinicID, Subject: claims.Subject}
	if claims.Expiry > 0 {
		session.ExpiresAt = time.Unix(claims.Expiry, 0).UTC()
	}
	return session, nil
}
