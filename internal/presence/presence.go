package presence

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"matrimony-server/internal/config"
)

// Key TTL outlives the websocket ping period so a live connection keeps its
// presence fresh while a crashed process's keys age out on their own.
const presenceTTL = 90 * time.Second

// Tracker records which users currently hold at least one live connection.
// State lives in Redis so it survives across processes, unlike the hub's
// in-memory room table.
type Tracker struct {
	rdb *redis.Client
}

// NewTracker connects to Redis and verifies the connection.
func NewTracker(cfg config.RedisConfig) (*Tracker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Tracker{rdb: rdb}, nil
}

func key(userID string) string {
	return "presence:" + userID
}

// Online marks a user as connected. Called on every hub register and on each
// heartbeat to refresh the TTL.
func (t *Tracker) Online(ctx context.Context, userID string) error {
	return t.rdb.Set(ctx, key(userID), "1", presenceTTL).Err()
}

// Offline clears a user's presence once their last connection is gone.
func (t *Tracker) Offline(ctx context.Context, userID string) error {
	return t.rdb.Del(ctx, key(userID)).Err()
}

// IsOnline reports whether a user has a live connection anywhere.
func (t *Tracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := t.rdb.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the Redis connection.
func (t *Tracker) Close() error {
	return t.rdb.Close()
}
