package presence_test

import (
	"sync"
	"testing"

	"github.com/chatty-app/realtime/internal/mocks"
	"github.com/chatty-app/realtime/internal/modules/gateway/presence"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) BroadcastOnlineUsers(users []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, users)
}

func (r *recorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRegistry_ConnectThenResolve(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(&recorder{})

	// When u1 connects on h1
	registry.OnConnect("h1", "u1")

	// Then u1 resolves to h1
	sid, ok := registry.Resolve("u1")
	req.True(ok)
	req.Equal("h1", sid)
}

func TestRegistry_ReconnectOverwritesHandle(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(&recorder{})

	registry.OnConnect("h1", "u1")
	registry.OnConnect("h2", "u1")

	sid, ok := registry.Resolve("u1")
	req.True(ok)
	req.Equal("h2", sid)
	req.Equal(1, registry.Count())
}

func TestRegistry_DisconnectRemovesEntry(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(&recorder{})

	registry.OnConnect("h1", "u1")
	registry.OnDisconnect("h1", "u1")

	sid, ok := registry.Resolve("u1")
	req.False(ok)
	req.Empty(sid)
}

func TestRegistry_ResolveUnknownUser(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(nil)

	sid, ok := registry.Resolve("nobody")
	req.False(ok)
	req.Empty(sid)
}

func TestRegistry_BroadcastPayloadHoldsOnlineUsers(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	registry := presence.NewRegistry(rec)

	registry.OnConnect("h1", "u1")
	registry.OnConnect("h2", "u2")

	req.ElementsMatch([]string{"u1", "u2"}, rec.last())
	req.Equal(2, rec.count())
}

func TestRegistry_EmptyUserIDStillBroadcasts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	broadcaster := mocks.NewMockBroadcaster(ctrl)
	registry := presence.NewRegistry(broadcaster)

	// Given u1 is online
	broadcaster.EXPECT().BroadcastOnlineUsers([]string{"u1"}).Times(1)
	registry.OnConnect("h1", "u1")

	// When an anonymous socket connects
	// Then the unchanged list is broadcast again
	broadcaster.EXPECT().BroadcastOnlineUsers([]string{"u1"}).Times(1)
	registry.OnConnect("h2", "")

	req.Equal([]string{"u1"}, registry.OnlineUsers())
	_, ok := registry.Resolve("")
	req.False(ok)
}

func TestRegistry_DisconnectIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	broadcaster := mocks.NewMockBroadcaster(ctrl)
	registry := presence.NewRegistry(broadcaster)

	gomock.InOrder(
		broadcaster.EXPECT().BroadcastOnlineUsers([]string{"u1"}),
		broadcaster.EXPECT().BroadcastOnlineUsers([]string{}),
		broadcaster.EXPECT().BroadcastOnlineUsers([]string{}),
	)

	registry.OnConnect("h1", "u1")
	registry.OnDisconnect("h1", "u1")
	_, ok := registry.Resolve("u1")
	req.False(ok)

	registry.OnDisconnect("h1", "u1")
	_, ok = registry.Resolve("u1")
	req.False(ok)
}

func TestRegistry_LateDisconnectEvictsNewerSocket(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(&recorder{})
	req.Equal(presence.PolicyUser, registry.Policy())

	// Given u1 reconnected on h2 before h1 went away
	registry.OnConnect("h1", "u1")
	registry.OnConnect("h2", "u1")

	// When the disconnect of h1 arrives late
	registry.OnDisconnect("h1", "u1")

	// Then u1 is reported offline although h2 is still open
	_, ok := registry.Resolve("u1")
	req.False(ok)
	req.Empty(registry.OnlineUsers())
}

func TestRegistry_HandlePolicyKeepsNewerSocket(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	registry := presence.NewRegistry(rec, presence.WithPolicy(presence.PolicyHandle))

	registry.OnConnect("h1", "u1")
	registry.OnConnect("h2", "u1")
	registry.OnDisconnect("h1", "u1")

	sid, ok := registry.Resolve("u1")
	req.True(ok)
	req.Equal("h2", sid)
	req.Equal([]string{"u1"}, rec.last())
	req.Equal(3, rec.count())

	registry.OnDisconnect("h2", "u1")
	_, ok = registry.Resolve("u1")
	req.False(ok)
}

func TestRegistry_OnlineUsersFollowFirstConnectOrder(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(nil)

	registry.OnConnect("h1", "carol")
	registry.OnConnect("h2", "alice")
	registry.OnConnect("h3", "bob")
	req.Equal([]string{"carol", "alice", "bob"}, registry.OnlineUsers())

	// Reconnecting keeps the original slot
	registry.OnConnect("h4", "carol")
	req.Equal([]string{"carol", "alice", "bob"}, registry.OnlineUsers())

	// Leaving and coming back moves to the end
	registry.OnDisconnect("h2", "alice")
	registry.OnConnect("h5", "alice")
	req.Equal([]string{"carol", "bob", "alice"}, registry.OnlineUsers())
}

func TestRegistry_SnapshotIsNotShared(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	registry := presence.NewRegistry(rec)

	registry.OnConnect("h1", "u1")
	first := rec.last()
	registry.OnConnect("h2", "u2")

	req.Equal([]string{"u1"}, first)
	req.Equal([]string{"u1", "u2"}, rec.last())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(presence.BroadcasterFunc(func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := string(rune('a' + n%26))
			registry.OnConnect(user+"-sid", user)
			_, _ = registry.Resolve(user)
			_ = registry.OnlineUsers()
		}(i)
	}
	wg.Wait()

	req.Equal(26, registry.Count())
}

func TestParsePolicy(t *testing.T) {
	req := require.New(t)
	req.Equal(presence.PolicyHandle, presence.ParsePolicy(" Handle "))
	req.Equal(presence.PolicyUser, presence.ParsePolicy("user"))
	req.Equal(presence.PolicyUser, presence.ParsePolicy(""))
	req.Equal(presence.PolicyUser, presence.ParsePolicy("bogus"))
}
