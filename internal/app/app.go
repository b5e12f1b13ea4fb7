package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chatty-app/realtime/internal/config"
	"github.com/chatty-app/realtime/internal/middleware"
	"github.com/chatty-app/realtime/internal/modules/gateway/gateway"
	"github.com/chatty-app/realtime/internal/modules/gateway/presence"
	pkgredis "github.com/chatty-app/realtime/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	hub    *gateway.Hub
	rc     *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → Redis (stats only) → hub → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	var (
		rc    *pkgredis.Client
		stats gateway.StatsStore
	)
	if cfg.Stats.Enable {
		var err error
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		stats = gateway.NewRedisStats(rc)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	policy := presence.ParsePolicy(cfg.Presence.DisconnectPolicy)
	hub := gateway.NewHub(stats, logger, policy)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	logger.Info("presence registry ready",
		zap.String("disconnect_policy", string(policy)),
		zap.Bool("stats", stats != nil),
	)

	app := &App{cfg: cfg, router: router, hub: hub, rc: rc, logger: logger, cancel: cancel}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Hub exposes the gateway so other subsystems can resolve user connections.
func (a *App) Hub() *gateway.Hub { return a.hub }

// Shutdown stops the hub loop, waits for the socket.io server to close and
// releases Redis.
func (a *App) Shutdown() {
	a.cancel()
	select {
	case <-a.hub.Done():
	case <-time.After(hubStopTimeout):
		a.logger.Warn("gateway hub did not stop in time", zap.Duration("timeout", hubStopTimeout))
	}
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}

func (a *App) uptime() time.Duration {
	return time.Since(processStart)
}

var processStart = time.Now()

const hubStopTimeout = 5 * time.Second
