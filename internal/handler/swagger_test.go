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

func TestOpenAPIServers(t *testing.T) {
	servers := OpenAPIServers("8080", "")
	require.Len(t, servers, 1)
	assert.Equal(t, "http://localhost:8080/api/v1", servers[0].URL)

	servers = OpenAPIServers("8080", "https://api.clinica.app/")
	require.Len(t, servers, 2)
	assert.Equal(t, "https://api.clinica.app/api/v1", servers[1].URL)
}

func TestTransformParameter(t *testing.T) {
	param := map[string]any{"name": "year", "in": "query", "type": "integer", "required": false}
	got := transformParameter(param)

	assert.Equal(t, "year", got["name"])
	assert.Equal(t, map[string]any{"type": "integer"}, got["schema"])
	assert.NotContains(t, got, "type")

	body := map[string]any{"name": "request", "in": "body", "schema": map[string]any{"$ref": "#/definitions/x"}}
	assert.Equal(t, body, transformParameter(body))
}

func TestServeOpenAPI3(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, NewOpenAPI3Handler(OpenAPIServers("8080", ""))(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var spec OpenAPI3Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Contains(t, spec.Paths, "/public/{slug}/book")

	raw := rec.Body.String()
	assert.NotContains(t, raw, "#/definitions/")
	assert.Contains(t, raw, "#/components/schemas/handler.ProblemDetails")
}
