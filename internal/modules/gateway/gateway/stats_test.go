package gateway

import (
	"context"
	"os"
	"testing"
	"time"

	pkgredis "github.com/chatty-app/realtime/internal/pkg/redis"
	"github.com/stretchr/testify/require"
)

func TestShortDateKey(t *testing.T) {
	at := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "3-7-26", shortDateKey(at))
}

func TestRedisStats_RecordOnline(t *testing.T) {
	url := os.Getenv("CHATTY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CHATTY_TEST_REDIS_URL not set")
	}
	req := require.New(t)
	ctx := context.Background()

	rc, err := pkgredis.Connect(url)
	req.NoError(err)
	t.Cleanup(func() { _ = rc.Close() })

	// A fixed past date keeps the test away from live counters.
	at := time.Date(2001, time.January, 2, 0, 0, 0, 0, time.UTC)
	dateKey := shortDateKey(at)
	t.Cleanup(func() {
		rc.Raw().HDel(ctx, redisKeyMaxOnlineCount, dateKey)
		rc.Raw().HDel(ctx, redisKeyMaxOnlineCountTotal, dateKey)
	})

	stats := NewRedisStats(rc)
	peak, err := stats.PeakOnline(ctx, at)
	req.NoError(err)
	req.Zero(peak)

	req.NoError(stats.RecordOnline(ctx, 3, at))
	req.NoError(stats.RecordOnline(ctx, 1, at))

	peak, err = stats.PeakOnline(ctx, at)
	req.NoError(err)
	req.Equal(3, peak)

	total, err := rc.Raw().HGet(ctx, redisKeyMaxOnlineCountTotal, dateKey).Int()
	req.NoError(err)
	req.Equal(2, total)
}
