package handler

import (
	"roomchat/internal/websocket"
	"roomchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WSHandler struct {
	hub    *websocket.Hub
	logger *logger.Logger
}

func NewWSHandler(hub *websocket.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: log}
}

// HandleWebSocket upgrades the request and starts the connection's
// pumps. The opaque connection id is minted here; clients never choose
// their own.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	connID := uuid.New().String()
	websocket.ServeWS(h.hub, c.Writer, c.Request, connID)
}
