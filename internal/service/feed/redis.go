package feed

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/pkg/logger"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope событие с меткой экземпляра, который его опубликовал
type envelope struct {
	Origin string          `json:"origin"`
	Event  model.FeedEvent `json:"event"`
}

// RedisPublisher дублирует события в канал redis, чтобы их видели клиенты других экземпляров
type RedisPublisher struct {
	rdb     redis.UniversalClient
	channel string
	origin  string
}

func NewRedisPublisher(rdb redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
	}
}

func (p *RedisPublisher) Publish(ev model.FeedEvent) {
	payload, err := json.Marshal(envelope{Origin: p.origin, Event: ev})
	if err != nil {
		logger.Error("failed to encode feed event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		logger.Warn("failed to publish feed event", zap.String("channel", p.channel), zap.Error(err))
	}
}

// Relay пересылает события других экземпляров локальным подписчикам до отмены ctx
func (p *RedisPublisher) Relay(ctx context.Context, b *Broker) {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("bad feed message", zap.Error(err))
				continue
			}
			if env.Origin == p.origin {
				continue
			}
			b.Deliver(env.Event)
		}
	}
}
