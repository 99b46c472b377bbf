package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/clinica/clinica-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document built from the swag output
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIServers lists the local server plus the public one when configured
func OpenAPIServers(port, publicURL string) []Server {
	servers := []Server{{URL: "http://localhost:" + port + "/api/v1", Description: "Local Development"}}
	if publicURL != "" {
		servers = append(servers, Server{URL: strings.TrimRight(publicURL, "/") + "/api/v1", Description: "Production"})
	}
	return servers
}

// convertSwagger2 turns a swagger 2.0 document into OpenAPI 3.0.
// Body parameters are passed through unchanged.
func convertSwagger2(doc []byte, servers []Server) (*OpenAPI3Spec, error) {
	var swagger2 map[string]any
	if err := json.Unmarshal(doc, &swagger2); err != nil {
		return nil, err
	}

	info, _ := swagger2["info"].(map[string]any)
	paths, _ := swagger2["paths"].(map[string]any)

	components := make(map[string]any)
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]any); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]any); ok {
		components["schemas"] = transformRefs(definitions)
	}

	convertedPaths, _ := transformRefs(paths).(map[string]any)

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      convertedPaths,
		Components: components,
	}, nil
}

// transformRefs rewrites #/definitions/ refs to #/components/schemas/ and
// converts non-body parameters to the 3.0 schema form
func transformRefs(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasIn := v["in"]; hasIn {
			if _, hasName := v["name"]; hasName {
				return transformParameter(v)
			}
		}

		result := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformParameter moves type fields of a 2.0 parameter under "schema"
func transformParameter(param map[string]any) map[string]any {
	if param["in"] == "body" {
		return param
	}

	result := make(map[string]any)
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]any)
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum"} {
		if val, ok := param[field]; ok {
			schema[field] = val
		}
	}
	if items, ok := param["items"]; ok {
		schema["items"] = transformRefs(items)
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}

	return result
}

// NewOpenAPI3Handler serves the registered swagger doc converted to OpenAPI 3.0
func NewOpenAPI3Handler(servers []Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return NewInternalError(c, "Failed to read swagger doc")
		}
		spec, err := convertSwagger2([]byte(doc), servers)
		if err != nil {
			return NewInternalError(c, "Failed to parse swagger doc")
		}
		return c.JSON(http.StatusOK, spec)
	}
}
