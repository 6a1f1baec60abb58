package earning

import (
	"context"

	"dreamseller-controlplane/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher publishes earning events on the shared Redis channel
// consumed by the realtime trackers.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.rdb.Publish(ctx, rediskey.EarningsChannel, payload).Err()
}
