package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/chatty-app/realtime/internal/modules/gateway/presence"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// NewHub creates the socket.io server and its presence registry.
// stats may be nil to disable daily counters.
func NewHub(stats StatsStore, logger *zap.Logger, policy presence.DisconnectPolicy) *Hub {
	sio := socketio.NewServer(nil, nil)
	h := newHub(stats, logger, policy)
	h.sio = sio
	h.emit = func(event string, payload any) {
		h.sio.Of(namespaceRoot, nil).Emit(event, payload)
	}
	h.registerNamespaces()
	return h
}

func newHub(stats StatsStore, logger *zap.Logger, policy presence.DisconnectPolicy) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		sidUser: make(map[string]string),
		events:  make(chan hubEvent, eventQueueSize),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		stats:   stats,
		logger:  logger,
		emit:    func(string, any) {},
	}
	h.registry = presence.NewRegistry(h, presence.WithPolicy(policy), presence.WithLogger(logger))
	return h
}

// Run applies connection events in arrival order until ctx is done. Socket
// events raised while the server closes are dropped.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			close(h.closing)
			if h.sio != nil {
				h.sio.Close(nil)
			}
			return

		case ev := <-h.events:
			switch ev.kind {
			case eventConnect:
				h.connect(ev.clientMeta)
			case eventDisconnect:
				h.disconnect(ev.clientMeta)
			}
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.stopped }

func (h *Hub) enqueue(kind eventKind, c clientMeta) bool {
	select {
	case <-h.closing:
		return false
	default:
	}
	select {
	case h.events <- hubEvent{kind: kind, clientMeta: c}:
		return true
	case <-h.closing:
		return false
	}
}

func (h *Hub) connect(c clientMeta) {
	h.mu.Lock()
	h.sidUser[c.sid] = c.userID
	h.mu.Unlock()

	h.logger.Info("a user connected", zap.String("sid", c.sid), zap.String("userId", c.userID))
	h.registry.OnConnect(c.sid, c.userID)
	h.recordOnline(h.registry.Count())
}

func (h *Hub) disconnect(c clientMeta) {
	h.mu.Lock()
	delete(h.sidUser, c.sid)
	h.mu.Unlock()

	h.logger.Info("a user disconnected", zap.String("sid", c.sid), zap.String("userId", c.userID))
	h.registry.OnDisconnect(c.sid, c.userID)
}

func (h *Hub) recordOnline(online int) {
	if h.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.stats.RecordOnline(ctx, online, time.Now()); err != nil {
		h.logger.Warn("gateway record online stats failed", zap.Error(err))
	}
}

// BroadcastOnlineUsers emits the online list to every socket on the root namespace.
func (h *Hub) BroadcastOnlineUsers(users []string) {
	h.emit(eventGetOnlineUsers, users)
}

// ResolveConnection returns the socket id of userID when the user is online.
func (h *Hub) ResolveConnection(userID string) (string, bool) {
	return h.registry.Resolve(userID)
}

// OnlineUsers returns the current online user ids.
func (h *Hub) OnlineUsers() []string {
	return h.registry.OnlineUsers()
}

// SocketCount returns the number of open sockets, anonymous ones included.
func (h *Hub) SocketCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sidUser)
}

// Stats collects live counters, plus today's peak when a store is configured.
func (h *Hub) Stats(ctx context.Context) Stats {
	out := Stats{
		Online:  h.registry.Count(),
		Sockets: h.SocketCount(),
	}
	if h.stats == nil {
		return out
	}
	peak, err := h.stats.PeakOnline(ctx, time.Now())
	if err != nil {
		h.logger.Warn("gateway get max online failed", zap.Error(err))
		return out
	}
	out.PeakOnline = &peak
	return out
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
