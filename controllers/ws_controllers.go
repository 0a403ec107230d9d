package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *realtime.Hub
}

func NewWSController(hub *realtime.Hub) *WSController {
	return &WSController{Hub: hub}
}

// Subscribe -> websocket endpoint for kitchen and admin displays. The
// connection joins its tenant's room; everything it receives is a hint to
// re-pull authoritative state.
func (wc *WSController) Subscribe(c *gin.Context) {
	tenant := middlewares.MustTenant(c)
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.Register(tenant.ID, ws, claims.Role)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Unregister(tenant.ID, ws)
}
