package roomfeed

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/jwt"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/response"
)

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the websocket endpoint. An empty origins list accepts any origin.
func NewHandler(hub *Hub, jwtService *jwt.Service, origins []string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &Handler{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
		log: log,
	}
}

// GET /ws/room-status?token=JWT&room_type_id=1&room_type_id=2
// Authorization: Bearer is accepted for non-browser clients.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	var roomTypes []int64
	for _, raw := range c.QueryArray("room_type_id") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_type_id must be a positive integer")
			return
		}
		roomTypes = append(roomTypes, id)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("roomfeed upgrade failed", zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, claims.StaffID, roomTypes)
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws/room-status", h.ServeWS)
}
