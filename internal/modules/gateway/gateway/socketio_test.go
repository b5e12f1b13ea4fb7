package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chatty-app/realtime/internal/modules/gateway/presence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const packetSeparator = "\x1e"

// pollingClient speaks Engine.IO v4 long-polling with socket.io packets on top.
type pollingClient struct {
	t       *testing.T
	url     string
	sid     string
	client  *http.Client
	pending string
}

func dialPolling(t *testing.T, baseURL, query string) *pollingClient {
	t.Helper()
	c := &pollingClient{
		t:      t,
		url:    baseURL + "/socket.io/",
		client: &http.Client{Timeout: 5 * time.Second},
	}

	body := c.do(http.MethodGet, c.url+"?EIO=4&transport=polling"+query, "")
	open := strings.Split(body, packetSeparator)[0]
	require.True(t, strings.HasPrefix(open, "0"), "unexpected open packet %q", open)

	var handshake struct {
		Sid string `json:"sid"`
	}
	require.NoError(t, json.Unmarshal([]byte(open[1:]), &handshake))
	require.NotEmpty(t, handshake.Sid)
	c.sid = handshake.Sid

	// socket.io CONNECT to the root namespace.
	c.send("40")
	return c
}

func (c *pollingClient) sessionURL() string {
	return c.url + "?EIO=4&transport=polling&sid=" + c.sid
}

func (c *pollingClient) send(packet string) {
	c.t.Helper()
	require.Equal(c.t, "ok", c.do(http.MethodPost, c.sessionURL(), packet))
}

// expect polls until packet shows up and drops everything up to it.
func (c *pollingClient) expect(packet string) {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(c.pending, packet) {
		require.True(c.t, time.Now().Before(deadline), "never received %q, got %q", packet, c.pending)
		c.pending += packetSeparator + c.do(http.MethodGet, c.sessionURL(), "")
	}
	idx := strings.Index(c.pending, packet)
	c.pending = c.pending[idx+len(packet):]
}

func (c *pollingClient) do(method, url, body string) string {
	c.t.Helper()
	r, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(c.t, err)
	if body != "" {
		r.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	}
	resp, err := c.client.Do(r)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(raw))
	return string(raw)
}

func TestHub_SocketIOBroadcastsOnlineUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	req := require.New(t)

	h := NewHub(nil, zap.NewNop(), presence.PolicyUser)
	router := gin.New()
	RegisterRoutes(router.Group(""), h)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	startHub(t, h)

	// Given an anonymous socket watching the list
	watcher := dialPolling(t, srv.URL, "")
	watcher.expect(`42["getOnlineUsers",[]]`)

	// When u1 connects
	user := dialPolling(t, srv.URL, "&userId=u1")

	// Then every socket receives ["u1"]
	user.expect(`42["getOnlineUsers",["u1"]]`)
	watcher.expect(`42["getOnlineUsers",["u1"]]`)

	sid, ok := h.ResolveConnection("u1")
	req.True(ok)
	req.NotEmpty(sid)
	req.Equal(2, h.SocketCount())

	// When u1 leaves the namespace
	user.send("41")

	// Then the list is empty again
	watcher.expect(`42["getOnlineUsers",[]]`)
	req.Eventually(func() bool { return len(h.OnlineUsers()) == 0 }, time.Second, 5*time.Millisecond)
	_, ok = h.ResolveConnection("u1")
	req.False(ok)
	req.Equal(1, h.SocketCount())
}
