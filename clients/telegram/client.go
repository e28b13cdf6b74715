// Package telegram is a minimal client for the Bot API sendMessage call.
// Delivery is best effort, callers are expected to swallow failures.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/canteen-pay/meal-go/middleware"
)

const apiBase = "https://api.telegram.org"

// Client abstracts the notification channel
type Client interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

// HTTPClient implements Client against the Bot API
type HTTPClient struct {
	botToken string
	client   *http.Client
}

// New creates a telegram Client with a bounded request timeout
func New(botToken string) *HTTPClient {
	return &HTTPClient{
		botToken: botToken,
		client: &http.Client{
			Timeout:   3 * time.Second,
			Transport: middleware.InstrumentRoundTripper(http.DefaultTransport, "telegram"),
		},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage posts a text message to the chat
func (c *HTTPClient) SendMessage(ctx context.Context, chatID string, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post sendMessage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
	}
	return nil
}
