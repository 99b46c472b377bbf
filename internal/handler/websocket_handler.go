package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// bearerSubprotocol lets browsers send the token as
// Sec-WebSocket-Protocol: bearer, <token>
const bearerSubprotocol = "bearer"

// JWTValidator validates JWT tokens and returns the caller's session
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (websocket.Session, error)
}

// WebSocketHandler streams clinic events to the agenda UI
type WebSocketHandler struct {
	hub       *websocket.Hub
	validator JWTValidator
	origins   originMatcher
	upgrader  ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Allowed origins may use
// a leading wildcard label, e.g. "https://*.clinica.app".
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:       hub,
		validator: validator,
		origins:   newOriginMatcher(allowedOrigins),
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
		Subprotocols:    []string{bearerSubprotocol},
	}
	return h
}

type originMatcher struct {
	exact    map[string]bool
	suffixes []string // scheme + "://" kept in front, e.g. "https://" + ".clinica.app"
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]bool)}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			m.suffixes = append(m.suffixes, scheme+"://|."+host)
			continue
		}
		m.exact[o] = true
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	if m.exact[origin] {
		return true
	}
	for _, s := range m.suffixes {
		prefix, suffix, _ := strings.Cut(s, "|")
		host, ok := strings.CutPrefix(origin, prefix)
		if ok && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// checkOrigin accepts non-browser clients (no Origin) and configured origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins.allows(origin) {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// tokenFrom reads the access token from ?token= or the bearer subprotocol
func tokenFrom(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	protocols := ws.Subprotocols(r)
	if len(protocols) == 2 && protocols[0] == bearerSubprotocol {
		return protocols[1]
	}
	return ""
}

// HandleWS godoc
// @Summary Agenda live updates
// @Description Upgrades to a WebSocket that streams appointment, patient and expense events for the caller's clinic. The token goes in ?token= or as the "bearer, <token>" subprotocol.
// @Tags realtime
// @Param token query string false "Auth0 access token"
// @Param entities query string false "Comma separated entities to receive: appointment, patient, expense"
// @Success 101
// @Failure 400
// @Failure 401
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := tokenFrom(c.Request())
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	entities, err := websocket.ParseEntities(c.QueryParam("entities"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	clinicID := session.ClinicID

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Int32("clinic_id", clinicID).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, session, h.hub, entities)
	h.hub.Register(client)

	log.Info().
		Int32("clinic_id", clinicID).
		Str("client_id", client.ID()).
		Int("clinic_clients", h.hub.ClientCount(clinicID)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
