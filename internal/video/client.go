package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// RoomCreator creates rooms at the video provider.
type RoomCreator interface {
	CreateRoom(ctx context.Context, name string, ttl time.Duration) (*Room, error)
}

// Client talks to the video provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a video provider client.
func NewClient(baseURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type createRoomRequest struct {
	Name       string `json:"name"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type createRoomResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateRoom provisions a room named after the booking.
func (c *Client) CreateRoom(ctx context.Context, name string, ttl time.Duration) (*Room, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("video: provider credentials not configured")
	}

	body, err := json.Marshal(createRoomRequest{Name: name, TTLSeconds: int(ttl.Seconds())})
	if err != nil {
		return nil, fmt.Errorf("video: encode room request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rooms", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("video: build room request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video: room request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("room creation rejected", "status", resp.StatusCode, "body", string(raw))
		return nil, fmt.Errorf("video: provider returned status %d", resp.StatusCode)
	}

	var out createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("video: decode room response: %w", err)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("video: provider response missing room url")
	}
	return &Room{ID: out.ID, URL: out.URL, ExpiresAt: out.ExpiresAt}, nil
}
