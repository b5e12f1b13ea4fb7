package presence

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DisconnectPolicy decides which entry a disconnect event may remove.
type DisconnectPolicy string

const (
	// PolicyUser removes the entry stored under the user id, whatever socket it
	// currently points to. A late disconnect from a replaced socket therefore
	// evicts the user's newer connection.
	PolicyUser DisconnectPolicy = "user"
	// PolicyHandle removes the entry only while it still points to the
	// disconnecting socket.
	PolicyHandle DisconnectPolicy = "handle"
)

// ParsePolicy maps a config value onto a policy, falling back to PolicyUser.
func ParsePolicy(raw string) DisconnectPolicy {
	switch DisconnectPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyHandle:
		return PolicyHandle
	default:
		return PolicyUser
	}
}

type entry struct {
	sid string
	seq uint64
}

// Registry maps each online user id to its most recent socket id.
type Registry struct {
	mu      sync.RWMutex
	sockets map[string]entry
	nextSeq uint64

	policy      DisconnectPolicy
	broadcaster Broadcaster
	logger      *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithPolicy sets the disconnect policy.
func WithPolicy(p DisconnectPolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithLogger attaches a logger for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry that announces every change through b.
func NewRegistry(b Broadcaster, opts ...Option) *Registry {
	r := &Registry{
		sockets:     make(map[string]entry),
		policy:      PolicyUser,
		broadcaster: b,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the active disconnect policy.
func (r *Registry) Policy() DisconnectPolicy { return r.policy }

// OnConnect records sid as the live socket of userID and broadcasts the
// online list. An empty userID leaves the mapping alone but still broadcasts.
// A previous socket for the same user is replaced, not closed.
func (r *Registry) OnConnect(sid, userID string) {
	r.mu.Lock()
	if userID != "" {
		if prev, ok := r.sockets[userID]; ok {
			if prev.sid != sid {
				r.logger.Debug("presence socket replaced",
					zap.String("userId", userID),
					zap.String("previous", prev.sid),
					zap.String("sid", sid),
				)
			}
			r.sockets[userID] = entry{sid: sid, seq: prev.seq}
		} else {
			r.nextSeq++
			r.sockets[userID] = entry{sid: sid, seq: r.nextSeq}
		}
	}
	users := r.snapshotLocked()
	r.mu.Unlock()

	r.broadcast(users)
}

// OnDisconnect drops userID, the id captured when sid connected, and
// broadcasts the online list. Removing an absent user is a no-op.
func (r *Registry) OnDisconnect(sid, userID string) {
	r.mu.Lock()
	if current, ok := r.sockets[userID]; ok {
		switch {
		case r.policy == PolicyHandle && current.sid != sid:
			r.logger.Debug("presence disconnect ignored for replaced socket",
				zap.String("userId", userID),
				zap.String("sid", sid),
				zap.String("current", current.sid),
			)
		default:
			delete(r.sockets, userID)
		}
	}
	users := r.snapshotLocked()
	r.mu.Unlock()

	r.broadcast(users)
}

// Resolve returns the socket id recorded for userID.
func (r *Registry) Resolve(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sockets[userID]
	if !ok {
		return "", false
	}
	return e.sid, true
}

// OnlineUsers returns the user ids currently online, in first-seen order.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sockets)
}

func (r *Registry) snapshotLocked() []string {
	entries := lo.Entries(r.sockets)
	slices.SortFunc(entries, func(a, b lo.Entry[string, entry]) int {
		return cmp.Compare(a.Value.seq, b.Value.seq)
	})
	return lo.Map(entries, func(item lo.Entry[string, entry], _ int) string {
		return item.Key
	})
}

func (r *Registry) broadcast(users []string) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.BroadcastOnlineUsers(users)
}
