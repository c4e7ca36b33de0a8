package data

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const streamModerationEvents = "civitas:modlog"

// PublishModerationEvent appends a moderation action to the Redis stream for
// external consumers. Callers guard against a nil client.
func PublishModerationEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamModerationEvents,
		Values: payload,
	}).Result()
	return err
}
