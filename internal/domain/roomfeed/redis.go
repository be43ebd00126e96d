package roomfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

const DefaultChannel = "hms:unit_status"

// NewRedisClient accepts a redis:// URL or a bare host:port.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisPublisher sends unit status events to a pub/sub channel so every API
// instance can relay them to its own websocket clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) PublishUnitStatus(ctx context.Context, ev inventory.UnitStatusEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Relay forwards channel messages into hub until ctx is done.
func Relay(ctx context.Context, client *redis.Client, channel string, hub *Hub, log *zap.Logger) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				log.Warn("roomfeed relay: bad payload", zap.Error(err))
				continue
			}
			_ = hub.PublishUnitStatus(ctx, ev)
		}
	}
}

func decodeEvent(payload string) (inventory.UnitStatusEvent, error) {
	var ev inventory.UnitStatusEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, err
	}
	if ev.UnitID <= 0 {
		return ev, fmt.Errorf("missing unit_id")
	}
	return ev, nil
}
