package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisPublisherPublishesJSON(t *testing.T) {
	client := &fakeRedis{}
	p := NewRedisPublisher(client, "engagement.events")

	err := p.Publish(context.Background(), Event{
		Type:   TypeKarmaAwarded,
		UserID: 42,
		Data:   map[string]any{"amount": 50},
	})
	require.NoError(t, err)
	assert.Equal(t, "engagement.events", client.channel)

	var got Event
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, TypeKarmaAwarded, got.Type)
	assert.Equal(t, int64(42), got.UserID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestRedisPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewRedisPublisher(&fakeRedis{err: boom}, "ch")

	err := p.Publish(context.Background(), Event{Type: TypePostUpvoted})
	assert.ErrorIs(t, err, boom)
}

func TestMemoryPublisherOfType(t *testing.T) {
	var m MemoryPublisher
	ctx := context.Background()
	_ = m.Publish(ctx, Event{Type: TypeKarmaAwarded})
	_ = m.Publish(ctx, Event{Type: TypeStreakUpdated})
	_ = m.Publish(ctx, Event{Type: TypeKarmaAwarded})

	assert.Len(t, m.Events(), 3)
	assert.Len(t, m.OfType(TypeKarmaAwarded), 2)
}
