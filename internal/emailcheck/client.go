// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package emailcheck talks to the Spamidate email validation API.
package emailcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the public Spamidate endpoint.
const DefaultBaseURL = "https://api.spamidate.com"

// LowScore is the quality score below which a submission is logged as suspicious.
const LowScore = 70

// Check is the verdict of a single named sub-check (syntax, domain, disposable, mx, ...).
type Check struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Result is the validation verdict returned by the service.
type Result struct {
	Email           string           `json:"email"`
	IsValid         bool             `json:"isValid"`
	Score           float64          `json:"score"`
	Severity        string           `json:"severity,omitempty"`
	Checks          map[string]Check `json:"checks"`
	Recommendations []string         `json:"recommendations"`
}

// Disposable reports whether the address must be treated as a throwaway
// mailbox. Only a disposable check that ran and passed clears it.
func (r *Result) Disposable() bool {
	c, ok := r.Checks["disposable"]
	return !ok || !c.Passed
}

// FirstRecommendation returns the first recommendation or fallback.
func (r *Result) FirstRecommendation(fallback string) string {
	for _, rec := range r.Recommendations {
		if strings.TrimSpace(rec) != "" {
			return rec
		}
	}
	return fallback
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spamidate API error (status %d): %s", e.Status, e.Body)
}

// Client calls the validation API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns a client, or nil when no API key is configured.
func New(apiKey, baseURL string) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate asks the service for a verdict on email.
func (c *Client) Validate(ctx context.Context, email string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("spamidate marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("spamidate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spamidate http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("spamidate read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("spamidate unmarshal: %w", err)
	}
	if result.Checks == nil {
		result.Checks = map[string]Check{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	return &result, nil
}

var basicPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BasicResult is the local fallback used when the service is not configured.
func BasicResult(email string) *Result {
	return &Result{
		Email:    email,
		IsValid:  basicPattern.MatchString(email),
		Score:    50,
		Severity: "unknown",
		Checks: map[string]Check{
			"syntax": {Passed: true, Message: "Basic syntax check"},
		},
		Recommendations: []string{"API key not configured - using basic validation"},
	}
}
