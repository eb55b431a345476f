// Package sms is the HTTP client for the outbound SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vekst-crm/crm-api/internal/config"
)

// Client sends text messages through the gateway API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sender     string
}

// SendResult is the gateway's acknowledgement of a message
type SendResult struct {
	MessageID string
	Accepted  bool
	Detail    string
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

// NewClient creates an SMS gateway client from configuration
func NewClient(cfg *config.SmsConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
	}
}

// Send submits a message to the gateway
func (c *Client) Send(ctx context.Context, recipient, content string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{
		To:      recipient,
		From:    c.sender,
		Message: content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		var errResp sendResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("gateway rejected message (%d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("gateway rejected message with status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &SendResult{
		MessageID: result.MessageID,
		Accepted:  true,
		Detail:    result.Detail,
	}, nil
}
