package presence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatrelay/internal/models"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func TestPublishDeliversPresenceEvent(t *testing.T) {
	mr := setupTestRedis(t)

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { sub.Close() })
	pubsub := sub.Subscribe(context.Background(), Channel)
	t.Cleanup(func() { pubsub.Close() })
	// Wait for the subscription before publishing.
	_, err := pubsub.Receive(context.Background())
	require.NoError(t, err)

	p := NewPublisher(zap.NewNop(), mr.Addr())
	t.Cleanup(func() { p.Close() })

	p.Publish(models.PresenceEvent{
		Action:    "joined",
		RoomID:    "lobby",
		SessionID: "s-1",
		Username:  "bob",
		Members:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event models.PresenceEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "joined", event.Action)
	assert.Equal(t, "lobby", event.RoomID)
	assert.Equal(t, "bob", event.Username)
	assert.Equal(t, p.InstanceID(), event.InstanceID)
}

func TestPublishSurvivesDeadRedis(t *testing.T) {
	mr := setupTestRedis(t)
	p := NewPublisher(zap.NewNop(), mr.Addr())
	t.Cleanup(func() { p.Close() })

	mr.Close()

	// Must not panic or block; errors are logged and dropped.
	p.Publish(models.PresenceEvent{Action: "left", RoomID: "lobby"})
}

func TestInstanceIDIsStable(t *testing.T) {
	mr := setupTestRedis(t)
	p := NewPublisher(zap.NewNop(), mr.Addr())
	t.Cleanup(func() { p.Close() })

	assert.NotEmpty(t, p.InstanceID())
	assert.Equal(t, p.InstanceID(), p.InstanceID())
}
