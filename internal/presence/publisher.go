package presence

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chatrelay/internal/models"
)

// Channel is the redis pub/sub channel presence events are published on.
const Channel = "chatrelay:presence"

// Publisher fans membership changes out to redis pub/sub so external
// consumers can follow room activity. Room state itself stays in-memory;
// publishing is strictly best-effort and failures are only logged.
type Publisher struct {
	log        *zap.Logger
	rdb        *redis.Client
	instanceID string
}

func NewPublisher(log *zap.Logger, redisAddr string) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &Publisher{
		log:        log,
		rdb:        rdb,
		instanceID: uuid.NewString(),
	}
}

func (p *Publisher) InstanceID() string { return p.instanceID }

// Publish sends a presence event. Never blocks room operations on redis
// health: marshal or publish errors are logged and dropped.
func (p *Publisher) Publish(event models.PresenceEvent) {
	event.InstanceID = p.instanceID

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to marshal presence event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(context.Background(), Channel, data).Err(); err != nil {
		p.log.Warn("failed to publish presence event",
			zap.String("room", event.RoomID),
			zap.Error(err))
	}
}

func (p *Publisher) Close() error { return p.rdb.Close() }
