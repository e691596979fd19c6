// Package notify publishes prediction events to subscribers such as the
// dashboard's live view.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sves-daq/backend/pkg/metrics"
)

const connectTimeout = 3 * time.Second

// ErrPublish wraps every publish failure.
var ErrPublish = errors.New("publish notification failed")

// PredictionNotification announces that a prediction was stored.
type PredictionNotification struct {
	PredictionID string  `json:"predictionId"`
	TestID       string  `json:"testId"`
	Model        string  `json:"model"`
	Value        float64 `json:"value"`
	Confidence   float64 `json:"confidence"`
	Timestamp    string  `json:"timestamp"`
}

// Notifier publishes notifications.
type Notifier interface {
	Publish(ctx context.Context, n PredictionNotification) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Publish(context.Context, PredictionNotification) error { return nil }
func (Nop) Close() error                                          { return nil }

// RedisNotifier publishes JSON messages on a Redis channel.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, addr, password string, db int, channel string) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return NewRedisNotifierWithClient(client, channel), nil
}

// NewRedisNotifierWithClient wraps an existing client.
func NewRedisNotifierWithClient(client redis.UniversalClient, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (r *RedisNotifier) Publish(ctx context.Context, n PredictionNotification) error {
	msg, err := json.Marshal(n)
	if err != nil {
		metrics.RecordNotification("error")
		return fmt.Errorf("%w: encode: %v", ErrPublish, err)
	}
	if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		metrics.RecordNotification("error")
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	metrics.RecordNotification("ok")
	return nil
}

// Subscribe opens a subscription on the notifier's channel.
func (r *RedisNotifier) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channel)
}

func (r *RedisNotifier) Close() error {
	return r.client.Close()
}
