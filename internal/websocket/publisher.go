package websocket

import (
	"context"
	"encoding/json"
	"log"

	"livechat-backend/internal/env"

	"github.com/go-redis/redis/v8"
)

// RedisMirror republishes relay broadcasts onto redis channels so external
// dashboard consumers can follow conversations. Best-effort only; failures
// are logged and never reach the relay.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror() *RedisMirror {
	addr := env.Get(env.ChatRedisURL)
	if addr == "" {
		return nil
	}
	return &RedisMirror{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: env.Get(env.ChatRedisPass),
			DB:       0,
		}),
	}
}

func (m *RedisMirror) Publish(channel string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("mirror: marshal payload for %s: %v", channel, err)
		return
	}
	if err := m.client.Publish(context.Background(), "livechat:"+channel, data).Err(); err != nil {
		log.Printf("mirror: publish to %s: %v", channel, err)
	}
}
