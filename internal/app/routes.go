package app

import (
	"context"
	"net/http"
	"time"

	"github.com/chatty-app/realtime/internal/modules/gateway/gateway"
	"github.com/chatty-app/realtime/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})

	root := r.Group("")
	gateway.RegisterRoutes(root, a.hub)

	root.GET("/health", a.health)
}

func (a *App) health(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": humanizeDuration(a.uptime()),
		"online": len(a.hub.OnlineUsers()),
	}
	if a.rc == nil {
		c.JSON(http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := a.rc.Raw().Ping(ctx).Err(); err != nil {
		a.logger.Warn("health redis ping failed", zap.Error(err))
		response.ServiceUnavailable(c, "redis unavailable")
		return
	}
	body["redis"] = true
	c.JSON(http.StatusOK, body)
}
