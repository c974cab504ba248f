package realtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisFeed shares signals between instances over Redis pub/sub. Every
// potluck has its own channel below prefix.
type RedisFeed struct {
	rdb    *redis.Client
	prefix string
	hub    *Hub
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisFeed(ctx context.Context, rdb *redis.Client, prefix string) (*RedisFeed, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	pubsub := rdb.PSubscribe(ctx, prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("redis psubscribe: %w", err)
	}

	f := &RedisFeed{
		rdb:    rdb,
		prefix: prefix,
		hub:    NewHub(),
		pubsub: pubsub,
		done:   make(chan struct{}),
	}
	go f.relay()
	return f, nil
}

func (f *RedisFeed) relay() {
	defer close(f.done)
	for msg := range f.pubsub.Channel() {
		f.hub.notify(strings.TrimPrefix(msg.Channel, f.prefix))
	}
	logrus.Info("redis change feed stopped")
}

func (f *RedisFeed) Publish(ctx context.Context, potluckID string) error {
	return f.rdb.Publish(ctx, f.prefix+potluckID, "changed").Err()
}

func (f *RedisFeed) Subscribe(potluckID string, onChange func()) func() {
	return f.hub.Subscribe(potluckID, onChange)
}

func (f *RedisFeed) Close() error {
	err := f.pubsub.Close()
	<-f.done
	f.hub.Close()
	return err
}
