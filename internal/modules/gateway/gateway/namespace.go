package gateway

import (
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func (h *Hub) registerNamespaces() {
	rootNS := h.sio.Of(namespaceRoot, nil)
	_ = rootNS.On("connection", func(args ...any) {
		if len(args) == 0 {
			return
		}
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sid := string(client.Id())
		// The user id is read once here and carried to the disconnect handler.
		meta := clientMeta{sid: sid, userID: extractUserID(client)}
		if !h.enqueue(eventConnect, meta) {
			return
		}

		_ = client.On("disconnect", func(_ ...any) {
			h.enqueue(eventDisconnect, meta)
		})
	})
}

func extractUserID(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	return queryValue(handshake.Query, queryUserID)
}

// queryValue returns the first value of key, matched exactly and kept verbatim.
func queryValue(values map[string][]string, key string) string {
	list := values[key]
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
