// Zonewatch - Live Location Tracking and Zone Alerting for Telegram
// Copyright 2026 Zonewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/zonewatch/zonewatch

// Package telegram is the chat transport: a minimal Bot API client and
// the long-poll loop translating Telegram updates into location events.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/zonewatch/zonewatch/internal/metrics"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering the calls
// Zonewatch needs: getMe, getUpdates, sendMessage, sendLocation.
// It satisfies notify.Sender.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, used by tests to point the
// client at a local server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.client = h }
}

// NewClient creates a Bot API client for the given token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		client: &http.Client{
			// Long polls block server-side up to the poll timeout;
			// leave headroom above it.
			Timeout: 65 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// call performs one Bot API method call and decodes the result into out
// when out is non-nil.
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, url.PathEscape(c.token), method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.TelegramRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.TelegramRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		metrics.TelegramRequests.WithLabelValues(method, "api_error").Inc()
		return fmt.Errorf("%s failed: %s (status %d)", method, envelope.Description, resp.StatusCode)
	}
	metrics.TelegramRequests.WithLabelValues(method, "ok").Inc()

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetMe verifies the bot token and returns the bot's user record.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates with ids >= offset. timeout is the
// server-side hold time in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := struct {
		Offset         int64    `json:"offset,omitempty"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		Offset:         offset,
		Timeout:        timeout,
		AllowedUpdates: []string{"message", "edited_message"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage delivers text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}{ChatID: chatID, Text: text}

	return c.call(ctx, "sendMessage", payload, nil)
}

// SendLocation delivers a coordinate as a location message.
func (c *Client) SendLocation(ctx context.Context, chatID int64, lat, lng float64) error {
	payload := struct {
		ChatID    int64   `json:"chat_id"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{ChatID: chatID, Latitude: lat, Longitude: lng}

	return c.call(ctx, "sendLocation", payload, nil)
}
