package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
)

const defaultStream = "dispatch:events"

// StreamNotifier appends every notification to a Redis stream.
type StreamNotifier struct {
	client *redis.Client
	stream string
	logger zerolog.Logger
}

func NewStreamNotifier(client *redis.Client, cfg config.RedisConfig, logger zerolog.Logger) *StreamNotifier {
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = defaultStream
	}
	return &StreamNotifier{
		client: client,
		stream: stream,
		logger: logger.With().Str("notifier", "redis").Logger(),
	}
}

func (n *StreamNotifier) Notify(ctx context.Context, notif models.Notification) error {
	values := map[string]interface{}{
		"notification_id": strconv.FormatInt(notif.ID, 10),
		"event_type":      string(notif.EventType),
		"severity":        string(notif.Severity),
		"title":           notif.Title,
		"message":         notif.Message,
		"created_at":      notif.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(notif.Metadata) > 0 {
		values["metadata"] = string(notif.Metadata)
	}

	id, err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}

	n.logger.Debug().
		Int64("notification_id", notif.ID).
		Str("stream", n.stream).
		Str("message_id", id).
		Msg("notification published to stream")
	return nil
}

func (n *StreamNotifier) String() string {
	return "StreamNotifier"
}
