package storage

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
)

// PublishUnmuteEvent publishes an unmute event to the Redis channel the
// notification sink listens on.
func (s *Service) PublishUnmuteEvent(ctx context.Context, event models.UnmuteEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, config.UnmuteEventsChannel, payload).Err()
}

// SubscribeUnmuteEvents subscribes to the unmute event channel.
func (s *Service) SubscribeUnmuteEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.UnmuteEventsChannel)
}
