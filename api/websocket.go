package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/middleware"
	"livro/services"
)

// WebSocketController upgrades admin notification sockets.
type WebSocketController struct {
	Hub *services.Hub
	log *zap.Logger
}

// NewWebSocketController creates a WebSocketController.
func NewWebSocketController(hub *services.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, log: logger}
}

// HandleWebSocket attaches the signed-in admin to the hub.
func (c *WebSocketController) HandleWebSocket(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextAdminEmail)
	if email == "" {
		fail(ctx, http.StatusUnauthorized, "Não autenticado")
		return
	}

	conn, err := services.Upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		c.log.Warn("admin socket upgrade failed", zap.Error(err))
		return
	}

	client := services.NewClient(conn, email)
	if !c.Hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(c.Hub)
}
