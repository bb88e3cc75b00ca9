package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aouyang1/immichslideshow/api/models"
	"github.com/aouyang1/immichslideshow/store"
)

type SlideshowClient struct {
	baseURL string
	client  *http.Client
}

func NewSlideshowClient(baseURL string) *SlideshowClient {
	return &SlideshowClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Command sends one of play, pause, next, previous or update
func (sc *SlideshowClient) Command(ctx context.Context, command string) error {
	var resp models.CommandResponse
	if err := sc.do(ctx, http.MethodPost, "/slideshow/"+url.PathEscape(command), nil, &resp); err != nil {
		return err
	}
	slog.Info("command sent", "command", resp.Command)
	return nil
}

// SetVideo reports whether a video is playing on the mirror
func (sc *SlideshowClient) SetVideo(ctx context.Context, playing bool) error {
	state := "0"
	if playing {
		state = "1"
	}
	var resp models.VideoResponse
	return sc.do(ctx, http.MethodPut, "/video/"+state, nil, &resp)
}

// Notify forwards a raw notification with an optional JSON payload
func (sc *SlideshowClient) Notify(ctx context.Context, notification string, payload json.RawMessage) (models.NotificationResponse, error) {
	reqBody := models.NotificationRequest{
		Notification: notification,
		Payload:      payload,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return models.NotificationResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp models.NotificationResponse
	if err := sc.do(ctx, http.MethodPost, "/notification", jsonData, &resp); err != nil {
		return models.NotificationResponse{}, err
	}
	return resp, nil
}

func (sc *SlideshowClient) GetState(ctx context.Context) (models.StateResponse, error) {
	var resp models.StateResponse
	if err := sc.do(ctx, http.MethodGet, "/state", nil, &resp); err != nil {
		return models.StateResponse{}, err
	}
	return resp, nil
}

// GetHistory retrieves the most recently shown images, newest first
func (sc *SlideshowClient) GetHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	var resp models.HistoryResponse
	if err := sc.do(ctx, http.MethodGet, fmt.Sprintf("/history?limit=%d", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (sc *SlideshowClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, sc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
