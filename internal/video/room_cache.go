package video

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Room is a provisioned video session room.
type Room struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type roomCache struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func newRoomCache(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *roomCache {
	if client == nil {
		panic("video: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("calmora.internal.video.cache")
	}
	return &roomCache{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

// Save caches a provisioned room under its booking id.
func (c *roomCache) Save(ctx context.Context, bookingID string, room *Room) error {
	ctx, span := c.tracer.Start(ctx, "video.save_room")
	defer span.End()

	data, err := json.Marshal(room)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("video: failed to marshal room: %w", err)
	}
	if err := c.redis.Set(ctx, roomKey(bookingID), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("video: failed to cache room: %w", err)
	}
	return nil
}

// Load returns the cached room for a booking, or nil on a miss.
func (c *roomCache) Load(ctx context.Context, bookingID string) (*Room, error) {
	ctx, span := c.tracer.Start(ctx, "video.load_room")
	defer span.End()

	data, err := c.redis.Get(ctx, roomKey(bookingID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("video: failed to load room: %w", err)
	}

	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("video: failed to decode room: %w", err)
	}
	return &room, nil
}

func roomKey(bookingID string) string {
	return fmt.Sprintf("video_room:%s", bookingID)
}
