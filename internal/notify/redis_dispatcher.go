package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/field-service/internal/config"
)

// RedisDispatcher pushes messages to a Redis outbox. Immediate messages go
// to a list drained by the notification worker; scheduled messages sit in a
// sorted set keyed by delivery time until due.
type RedisDispatcher struct {
	client       *redis.Client
	queueKey     string
	scheduledKey string
}

// NewRedisDispatcher creates the dispatcher.
func NewRedisDispatcher(client *redis.Client, cfg config.NotificationConfig) *RedisDispatcher {
	return &RedisDispatcher{
		client:       client,
		queueKey:     cfg.QueueKey,
		scheduledKey: cfg.ScheduledKey,
	}
}

// Notify enqueues the message.
func (d *RedisDispatcher) Notify(ctx context.Context, msg Message) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if msg.ScheduledAt != nil {
		return d.client.ZAdd(ctx, d.scheduledKey, redis.Z{
			Score:  float64(msg.ScheduledAt.Unix()),
			Member: encoded,
		}).Err()
	}
	return d.client.LPush(ctx, d.queueKey, encoded).Err()
}

// PopDue moves scheduled messages whose delivery time has passed onto the
// immediate queue. Called periodically by the worker.
func (d *RedisDispatcher) PopDue(ctx context.Context, nowUnix int64) (int, error) {
	entries, err := d.client.ZRangeByScore(ctx, d.scheduledKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(nowUnix, 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, entry := range entries {
		if err := d.client.LPush(ctx, d.queueKey, entry).Err(); err != nil {
			return moved, err
		}
		if err := d.client.ZRem(ctx, d.scheduledKey, entry).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
