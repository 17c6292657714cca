// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends transactional email through the hosted email API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted email API.
const DefaultBaseURL = "https://mail-api.techflunky.com"

// Message is the payload accepted by POST /send.
type Message struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
	From     string   `json:"from,omitempty"`
	FromName string   `json:"fromName,omitempty"`
	ReplyTo  string   `json:"replyTo,omitempty"`
}

// APIError is returned when the email API answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email API error (status %d): %s", e.Status, e.Body)
}

// Detail returns the most specific message the API gave: the "error" field
// of a JSON body, the raw body, or the HTTP status.
func (e *APIError) Detail() string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(e.Body), &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Client sends messages with a bearer API key.
type Client struct {
	apiKey   string
	baseURL  string
	from     string
	fromName string
	client   *http.Client
}

// New returns a client, or nil when no API key is configured.
func New(apiKey, baseURL, from, fromName string) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		from:     from,
		fromName: fromName,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers msg. Empty From and FromName take the client defaults.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email send: no recipients")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	if msg.FromName == "" {
		msg.FromName = c.fromName
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("email marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}
