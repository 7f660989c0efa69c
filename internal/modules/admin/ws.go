package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clinicbook/internal/events"
	jwtsvc "clinicbook/internal/pkg/jwt"
	"clinicbook/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // origin list enforced by the reverse proxy
}

// WSHandler streams the domain event bus to connected admin dashboards.
type WSHandler struct {
	hub *events.Hub
	jwt *jwtsvc.Service
	log *zap.Logger
}

func NewWSHandler(hub *events.Hub, jwt *jwtsvc.Service, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwt, log: log}
}

func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", h.Events)
}

// Events upgrades GET /admin/events?token=JWT to a websocket. Browsers
// cannot set headers on the upgrade request, so the token rides the query
// string, same contract as the Authorization header elsewhere.
func (h *WSHandler) Events(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		return
	}
	if claims.Role != "admin" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	id := h.hub.Register(conn)
	h.log.Info("admin event stream connected",
		zap.Int64("conn_id", id), zap.String("admin", claims.Email))
	defer func() {
		h.hub.Unregister(id)
		h.log.Info("admin event stream disconnected", zap.Int64("conn_id", id))
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go pingLoop(conn)

	// The stream is write-only; the read loop only notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			return
		}
	}
}
