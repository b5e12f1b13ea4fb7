package gateway

import (
	"sync"

	"github.com/chatty-app/realtime/internal/modules/gateway/presence"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceRoot = "/"

	eventGetOnlineUsers = "getOnlineUsers"
	queryUserID         = "userId"

	redisKeyMaxOnlineCount      = "chatty:max_online_count"
	redisKeyMaxOnlineCountTotal = "chatty:max_online_count:total"

	eventQueueSize = 256
)

type eventKind uint8

const (
	eventConnect eventKind = iota + 1
	eventDisconnect
)

type clientMeta struct {
	sid    string
	userID string
}

// hubEvent is one socket lifecycle change, queued in arrival order.
type hubEvent struct {
	kind eventKind
	clientMeta
}

// Stats is the snapshot served by the stats endpoint.
type Stats struct {
	Online     int  `json:"online"`
	Sockets    int  `json:"sockets"`
	PeakOnline *int `json:"peak_online,omitempty"`
}

// Hub accepts socket.io connections and feeds their lifecycle into the
// presence registry.
type Hub struct {
	mu      sync.RWMutex
	sidUser map[string]string

	events  chan hubEvent
	closing chan struct{}
	stopped chan struct{}

	registry *presence.Registry
	stats    StatsStore
	logger   *zap.Logger
	sio      *socketio.Server
	emit     func(event string, payload any)
}
