package video

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

var videoTracer = otel.Tracer("calmora.internal.video")

// Provisioner hands out video rooms for bookings, caching provisioned
// rooms so repeated requests for the same booking reuse one room.
type Provisioner struct {
	creator RoomCreator
	cache   *roomCache
	ttl     time.Duration
	logger  *logging.Logger
}

// NewProvisioner constructs a room provisioner.
func NewProvisioner(creator RoomCreator, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Provisioner {
	if creator == nil {
		panic("video: room creator required")
	}
	if redisClient == nil {
		panic("video: redis client required")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Provisioner{
		creator: creator,
		cache:   newRoomCache(redisClient, ttl, videoTracer),
		ttl:     ttl,
		logger:  logger,
	}
}

// EnsureRoom returns the room URL for a booking, creating one if none
// is cached.
func (p *Provisioner) EnsureRoom(ctx context.Context, bookingID string) (string, error) {
	ctx, span := videoTracer.Start(ctx, "video.ensure_room")
	defer span.End()

	cached, err := p.cache.Load(ctx, bookingID)
	if err != nil {
		// Cache failures fall through to the provider.
		p.logger.Warn("room cache lookup failed", "booking_id", bookingID, "error", err)
	}
	if cached != nil && cached.URL != "" {
		return cached.URL, nil
	}

	room, err := p.creator.CreateRoom(ctx, "booking-"+bookingID, p.ttl)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := p.cache.Save(ctx, bookingID, room); err != nil {
		p.logger.Warn("failed to cache room", "booking_id", bookingID, "error", err)
	}

	p.logger.Info("video room provisioned", "booking_id", bookingID, "room_id", room.ID)
	return room.URL, nil
}
