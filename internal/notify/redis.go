package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSender pushes messages onto a Redis list drained by the SMS worker.
type RedisSender struct {
	client *redis.Client
	queue  string
	now    func() time.Time
}

func NewRedisSender(client *redis.Client, queue string) *RedisSender {
	return &RedisSender{client: client, queue: queue, now: time.Now}
}

func (s *RedisSender) Send(ctx context.Context, template string, recipients []string, vars map[string]string) error {
	msg := Message{Template: template, Recipients: recipients, Variables: vars, CreatedAt: s.now()}
	data, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.client.RPush(ctx, s.queue, data).Err(); err != nil {
		return fmt.Errorf("queue notification: %w", err)
	}
	return nil
}
