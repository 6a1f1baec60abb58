package realtime

import (
	"context"
	"sync"

	"dreamseller-controlplane/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

type redisSubscriber struct {
	rdb *redis.Client

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisSubscriber subscribes to the shared earnings channel.
func NewRedisSubscriber(rdb *redis.Client) Subscriber {
	return &redisSubscriber{rdb: rdb}
}

func (s *redisSubscriber) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := s.rdb.Subscribe(ctx, rediskey.EarningsChannel)

	// force the subscription onto the wire so failures surface here, not on
	// first receive
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.mu.Unlock()

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubsub == nil {
		return nil
	}
	return s.pubsub.Close()
}
