package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	handler := NewAuthHandler(f.authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|newcomer", "bia@example.com", "Bia", "")

	require.NoError(t, handler.Callback(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthCallbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "bia@example.com", resp.User.Email)
	assert.Equal(t, "Clínica Bia", resp.Clinic.Name)
	assert.NotEmpty(t, resp.Clinic.PublicSlug)
	assert.NotZero(t, resp.Clinic.ID)
}

func TestCallback_SecondLoginKeepsClinic(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	handler := NewAuthHandler(f.authService)

	var first, second AuthCallbackResponse
	for i, out := range []*AuthCallbackResponse{&first, &second} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, "auth0|returning", "caio@example.com", "", "")
		require.NoError(t, handler.Callback(c))
		require.Equal(t, http.StatusOK, rec.Code, "login %d", i+1)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}

	assert.True(t, first.IsNewUser)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.Clinic.ID, second.Clinic.ID)
	assert.Equal(t, "Minha Clínica", first.Clinic.Name)
}

func TestCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	handler := NewAuthHandler(f.authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|noemail", "", "", "")

	require.NoError(t, handler.Callback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrorTypeValidation, decodeProblem(rec).Type)
}

func TestMe_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(newFixture(10).authService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(newFixture(10).authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, testAuth0ID, "owner@example.com", "", "")

	require.NoError(t, handler.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
