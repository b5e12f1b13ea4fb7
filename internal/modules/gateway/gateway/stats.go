package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgredis "github.com/chatty-app/realtime/internal/pkg/redis"
	redis "github.com/redis/go-redis/v9"
)

// StatsStore keeps daily online counters.
type StatsStore interface {
	RecordOnline(ctx context.Context, online int, at time.Time) error
	PeakOnline(ctx context.Context, at time.Time) (int, error)
}

// RedisStats stores the daily peak and connection total in two Redis hashes
// keyed by short date.
type RedisStats struct {
	rc *pkgredis.Client
}

func NewRedisStats(rc *pkgredis.Client) *RedisStats {
	return &RedisStats{rc: rc}
}

func (s *RedisStats) RecordOnline(ctx context.Context, online int, at time.Time) error {
	if online < 0 {
		return nil
	}
	dateKey := shortDateKey(at)

	maxOnline, err := s.PeakOnline(ctx, at)
	if err != nil {
		return err
	}
	if online > maxOnline {
		if err := s.rc.Raw().HSet(ctx, redisKeyMaxOnlineCount, dateKey, online).Err(); err != nil {
			return fmt.Errorf("set max online: %w", err)
		}
	}
	if err := s.rc.Raw().HIncrBy(ctx, redisKeyMaxOnlineCountTotal, dateKey, 1).Err(); err != nil {
		return fmt.Errorf("incr online total: %w", err)
	}
	return nil
}

func (s *RedisStats) PeakOnline(ctx context.Context, at time.Time) (int, error) {
	raw, err := s.rc.Raw().HGet(ctx, redisKeyMaxOnlineCount, shortDateKey(at)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("get max online: %w", err)
	}
	parsed, parseErr := strconv.Atoi(strings.TrimSpace(raw))
	if parseErr != nil {
		return 0, nil
	}
	return parsed, nil
}

func shortDateKey(t time.Time) string {
	return t.Format("1-2-06")
}
