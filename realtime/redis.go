package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts over Redis pub/sub. Front-end gateways subscribe
// to the logical channels and forward to their connected clients.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
