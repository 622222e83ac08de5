package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bundl/bundl/pkg/clients"
)

// HTTPPushSender posts to a push gateway's HTTP API, built the same way
// as the teacher's pkg/clients.HTTPClient wraps net/http for the
// accrual collaborator — here pointed at an external push provider
// instead of the accrual system.
type HTTPPushSender struct {
	client  clients.HTTPClientI
	baseURL string
}

func NewHTTPPushSender(client clients.HTTPClientI, baseURL string) *HTTPPushSender {
	return &HTTPPushSender{client: client, baseURL: baseURL}
}

type sendRequest struct {
	PushToken string `json:"pushToken"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

type broadcastRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radiusKm"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
}

func (s *HTTPPushSender) Send(ctx context.Context, pushToken, title, body string) error {
	return s.post(ctx, "/push/send", sendRequest{PushToken: pushToken, Title: title, Body: body})
}

func (s *HTTPPushSender) BroadcastNearby(ctx context.Context, lat, lon, radiusKm float64, title, body string) error {
	return s.post(ctx, "/push/broadcastNearby", broadcastRequest{
		Latitude: lat, Longitude: lon, RadiusKm: radiusKm, Title: title, Body: body,
	})
}

func (s *HTTPPushSender) post(ctx context.Context, path string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
