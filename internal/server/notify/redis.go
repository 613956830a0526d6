package notify

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// RedisChannel is the pub/sub channel shared by all server instances.
const RedisChannel = "worklogger:work_logs"

// RedisFeed publishes changes to a Redis channel and feeds the broker from
// it, so every instance sees the writes of every other one.
type RedisFeed struct {
	client  *redis.Client
	channel string
	broker  *Broker
	logger  logging.Logger
}

func NewRedisFeed(client *redis.Client, broker *Broker, logger logging.Logger) *RedisFeed {
	return &RedisFeed{
		client:  client,
		channel: RedisChannel,
		broker:  broker,
		logger:  logger.With("module", "redisfeed"),
	}
}

// Publish sends ev to every instance, this one included.
func (f *RedisFeed) Publish(ctx context.Context, ev models.ChangeEvent) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// Run consumes the channel until ctx is done. The client reconnects on its
// own; every receive error drops all subscriptions since messages may have
// been missed meanwhile.
func (f *RedisFeed) Run(ctx context.Context) error {
	ps := f.client.Subscribe(ctx, f.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", f.channel, err)
	}
	f.logger.Info(ctx, "subscribed", "channel", f.channel)

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()

	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn(ctx, "redis feed interrupted", "error", err)
			f.broker.metrics.reconnects.Inc()
			f.broker.DropAll()
			if !sleepCtx(ctx, b.NextBackOff()) {
				return ctx.Err()
			}
			continue
		}
		b.Reset()

		ev, err := decodeEvent([]byte(msg.Payload))
		if err != nil {
			f.logger.Warn(ctx, "bad message", "error", err)
			continue
		}
		f.broker.Publish(ev)
	}
}
