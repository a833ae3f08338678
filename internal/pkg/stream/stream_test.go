package stream

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBroker(t *testing.T) *Broker {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewBroker(redisClient, log)
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := testBroker(t)
	ctx := context.Background()

	events, cancel := b.Subscribe(ctx, ChannelOrders)
	defer cancel()

	// Subscription setup races with the first publish; give the
	// consumer loop a moment to attach.
	time.Sleep(50 * time.Millisecond)

	b.Publish(ctx, ChannelOrders, "created", map[string]interface{}{"id": 1})

	select {
	case event := <-events:
		assert.Equal(t, "created", event.Type)
		assert.Equal(t, ChannelOrders, event.Channel)
		assert.False(t, event.Timestamp.IsZero())

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.EqualValues(t, 1, payload["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestSubscribeSpansChannels(t *testing.T) {
	b := testBroker(t)
	ctx := context.Background()

	events, cancel := b.Subscribe(ctx, ChannelOrders, ChannelUsers)
	defer cancel()

	time.Sleep(50 * time.Millisecond)

	b.Publish(ctx, ChannelUsers, "deleted", map[string]interface{}{"user_id": 9})

	select {
	case event := <-events:
		assert.Equal(t, "deleted", event.Type)
		assert.Equal(t, ChannelUsers, event.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := testBroker(t)
	ctx := context.Background()

	events, cancel := b.Subscribe(ctx, ChannelOrders)
	cancel()
	// Cancel twice must be safe.
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed")
	}
}
