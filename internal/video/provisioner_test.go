package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCreator struct {
	calls int
	room  *Room
	err   error
}

func (c *countingCreator) CreateRoom(ctx context.Context, name string, ttl time.Duration) (*Room, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.room, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestEnsureRoomCreatesAndCaches(t *testing.T) {
	creator := &countingCreator{room: &Room{ID: "room-1", URL: "https://video.example/room-1"}}
	p := NewProvisioner(creator, newTestRedis(t), time.Hour, nil)

	url, err := p.EnsureRoom(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "https://video.example/room-1", url)
	assert.Equal(t, 1, creator.calls)

	url, err = p.EnsureRoom(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "https://video.example/room-1", url)
	assert.Equal(t, 1, creator.calls, "second request served from cache")
}

func TestEnsureRoomSeparateBookingsGetSeparateRooms(t *testing.T) {
	creator := &countingCreator{room: &Room{ID: "room-1", URL: "https://video.example/room-1"}}
	p := NewProvisioner(creator, newTestRedis(t), time.Hour, nil)

	_, err := p.EnsureRoom(context.Background(), "booking-1")
	require.NoError(t, err)
	_, err = p.EnsureRoom(context.Background(), "booking-2")
	require.NoError(t, err)
	assert.Equal(t, 2, creator.calls)
}

func TestEnsureRoomPropagatesProviderFailure(t *testing.T) {
	creator := &countingCreator{err: errors.New("provider down")}
	p := NewProvisioner(creator, newTestRedis(t), time.Hour, nil)

	_, err := p.EnsureRoom(context.Background(), "booking-1")
	assert.Error(t, err)
}

func TestClientCreateRoom(t *testing.T) {
	var gotBody createRoomRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/rooms", r.URL.Path)
		require.Equal(t, "Bearer vk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(createRoomResponse{
			ID:  "room-1",
			URL: "https://video.example/room-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "vk_test", nil)
	room, err := client.CreateRoom(context.Background(), "booking-b1", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://video.example/room-1", room.URL)
	assert.Equal(t, "booking-b1", gotBody.Name)
	assert.Equal(t, 7200, gotBody.TTLSeconds)
}

func TestClientCreateRoomRejectsProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "vk_test", nil)
	_, err := client.CreateRoom(context.Background(), "booking-b1", time.Hour)
	assert.Error(t, err)
}

func TestClientRequiresCredentials(t *testing.T) {
	client := NewClient("", "", nil)
	_, err := client.CreateRoom(context.Background(), "booking-b1", time.Hour)
	assert.Error(t, err)
}
