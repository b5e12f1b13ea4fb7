//go:generate go run go.uber.org/mock/mockgen -source=broadcaster.go -destination=../../../mocks/mock_broadcaster.go -package=mocks
package presence

// Broadcaster pushes the online user list to every connected client.
// Delivery is fire-and-forget; failures belong to the transport.
type Broadcaster interface {
	BroadcastOnlineUsers(users []string)
}

// BroadcasterFunc adapts a plain function to Broadcaster.
type BroadcasterFunc func(users []string)

func (f BroadcasterFunc) BroadcastOnlineUsers(users []string) { f(users) }
