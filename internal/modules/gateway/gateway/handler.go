package gateway

import (
	"github.com/chatty-app/realtime/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts socket.io and stats endpoints.
func RegisterRoutes(rg *gin.RouterGroup, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	rg.Any("/socket.io", handler)
	rg.Any("/socket.io/*any", handler)

	registerPresenceRoutes(rg, hub)
}

func registerPresenceRoutes(rg *gin.RouterGroup, hub *Hub) {
	rg.GET("/gateway/stats", func(c *gin.Context) {
		response.OK(c, hub.Stats(c.Request.Context()))
	})

	rg.GET("/presence/online", func(c *gin.Context) {
		response.OK(c, hub.OnlineUsers())
	})

	rg.GET("/presence/users/:userId", func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			response.BadRequest(c, "userId is required")
			return
		}
		sid, online := hub.ResolveConnection(userID)
		response.OK(c, gin.H{
			"user_id":   userID,
			"socket_id": sid,
			"online":    online,
		})
	})
}
