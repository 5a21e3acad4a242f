package router

import (
	"roomchat/internal/handler"
	"roomchat/internal/websocket"
	"roomchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router is the conventional web-server shell around the coordinator:
// a health check and the websocket upgrade endpoint. Room and message
// logic never lives here.
type Router struct {
	engine    *gin.Engine
	wsHandler *handler.WSHandler
}

func NewRouter(hub *websocket.Hub, log *logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		engine:    engine,
		wsHandler: handler.NewWSHandler(hub, log),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.engine.GET("/ws", r.wsHandler.HandleWebSocket)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
