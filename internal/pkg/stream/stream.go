// internal/pkg/stream/stream.go
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channel names for the admin live feed
const (
	ChannelOrders = "orders:events"
	ChannelUsers  = "users:events"
)

// Event is one emission on a live feed channel
type Event struct {
	Type      string          `json:"type"` // created, updated, deleted
	Channel   string          `json:"channel,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Broker publishes and subscribes to live feed events over Redis
// pub/sub. Subscriptions are long-lived and must be released with the
// returned cancel function when the consumer goes away.
type Broker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// NewBroker creates a new event broker
func NewBroker(redisClient *redis.Client, logger *logrus.Logger) *Broker {
	return &Broker{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish emits an event on a channel. Publish failures are logged and
// swallowed: the feed is advisory and must never fail the mutation that
// triggered it.
func (b *Broker) Publish(ctx context.Context, channel, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.WithError(err).WithField("channel", channel).Warn("Failed to encode feed event")
		return
	}

	event := Event{
		Type:      eventType,
		Channel:   channel,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(event)
	if err != nil {
		b.logger.WithError(err).WithField("channel", channel).Warn("Failed to encode feed event")
		return
	}

	if err := b.redisClient.Publish(ctx, channel, raw).Err(); err != nil {
		b.logger.WithError(err).WithField("channel", channel).Warn("Failed to publish feed event")
	}
}

// Subscribe opens a live feed on the given channels. Events arrive on
// the returned channel until cancel is called or ctx is done; after
// cancellation no further events are delivered, even if some were
// already in flight.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) (<-chan Event, func()) {
	sub := b.redisClient.Subscribe(ctx, channels...)

	events := make(chan Event, 16)
	done := make(chan struct{})

	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.WithError(err).Warn("Dropping malformed feed event")
					continue
				}
				select {
				case events <- event:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var cancelled bool
	cancel := func() {
		if cancelled {
			return
		}
		cancelled = true
		close(done)
		if err := sub.Close(); err != nil {
			b.logger.WithError(err).Warn("Failed to close feed subscription")
		}
	}

	return events, cancel
}
