package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes every notification on the recipient's channel so
// connected clients can update their inbox without polling.
type RedisPublisher struct {
	client publisher
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Channel is the pub/sub channel a user's client subscribes to.
func Channel(userID fmt.Stringer) string {
	return "notifications:" + userID.String()
}

func (p *RedisPublisher) Dispatch(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev.Notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(ev.Notification.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification %s: %w", ev.Notification.ID, err)
	}
	return nil
}
