// Package meeting создаёт видеовстречи в Zoom для подтверждённых броней.
// Авторизация выполняется по server-to-server OAuth (account credentials).
package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/models"
)

// ErrNotConfigured интеграция не настроена.
var ErrNotConfigured = errors.New("meeting provider is not configured")

type Client struct {
	apiURL     string
	duration   time.Duration
	httpClient *http.Client
}

// NewClient создаёт клиент Zoom. Токен запрашивается лениво и обновляется
// автоматически. Без client_id клиент возвращает ErrNotConfigured.
func NewClient(cfg config.Zoom, duration time.Duration) *Client {
	if cfg.ZoomClientID == "" {
		return &Client{}
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ZoomClientID,
		ClientSecret: cfg.ZoomClientSecret,
		TokenURL:     cfg.ZoomTokenURL,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.ZoomAccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	base := &http.Client{Timeout: cfg.ZoomTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	httpClient := cc.Client(ctx)
	httpClient.Timeout = cfg.ZoomTimeout
	return &Client{
		apiURL:     strings.TrimRight(cfg.ZoomAPIURL, "/"),
		duration:   duration,
		httpClient: httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateMeeting создаёт запланированную встречу с темой topic,
// начинающуюся в startISO (RFC 3339).
func (c *Client) CreateMeeting(ctx context.Context, topic, startISO string) (*models.Meeting, error) {
	const op = "meeting.CreateMeeting"
	if c.httpClient == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start time: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/me/meetings", createMeetingRequest{
		Topic:     topic,
		Type:      scheduledMeeting,
		StartTime: start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  int(c.duration / time.Minute),
		Timezone:  "UTC",
		Settings:  meetingSettings{JoinBeforeHost: true, WaitingRoom: false},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, strings.TrimSpace(string(msg)))
	}

	var created createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if created.JoinURL == "" {
		return nil, fmt.Errorf("%s: empty join_url in response", op)
	}
	return &models.Meeting{JoinURL: created.JoinURL, Password: created.Password}, nil
}
