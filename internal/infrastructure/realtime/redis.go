package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBroker fans events out through Redis pub/sub so every API instance
// sees every account's changes.
type RedisBroker struct {
	rdb    *redis.Client
	prefix string
	log    logrus.FieldLogger
}

// NewRedisBroker creates a broker on top of an existing Redis client
func NewRedisBroker(rdb *redis.Client, prefix string, log logrus.FieldLogger) *RedisBroker {
	if prefix == "" {
		prefix = "hisab"
	}
	return &RedisBroker{rdb: rdb, prefix: prefix, log: log}
}

func (b *RedisBroker) channel(accountID uuid.UUID) string {
	return fmt.Sprintf("%s:changes:%s", b.prefix, accountID)
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel(ev.AccountID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, accountID uuid.UUID) (<-chan Event, func(), error) {
	ps := b.rdb.Subscribe(ctx, b.channel(accountID))
	// Wait for the subscription to be confirmed before streaming.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})
	msgs := ps.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed change event")
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	return out, cancel, nil
}

// Close is a no-op; the Redis client is owned by the caller
func (b *RedisBroker) Close() error {
	return nil
}
