// Package crm syncs captured emails to the email marketing provider's
// subscribe API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

// Config controls the subscribe client.
type Config struct {
	SubscribeURL string
	APIKey       string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *logging.Logger
}

// Client posts subscribers to the provider. Failures are reported to the
// caller but never retried here; the source flow treats the sync as best
// effort.
type Client struct {
	subscribeURL string
	apiKey       string
	httpClient   *http.Client
	logger       *logging.Logger
}

type subscribeRequest struct {
	Email     string `json:"email"`
	APIKey    string `json:"api_key"`
	FirstName string `json:"first_name,omitempty"`
}

// NewClient creates a subscribe client.
func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.SubscribeURL)
	if url == "" {
		return nil, errors.New("crm: subscribe URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("crm: API key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		subscribeURL: url,
		apiKey:       cfg.APIKey,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// Subscribe adds the email to the provider's list.
func (c *Client) Subscribe(ctx context.Context, email, name string) error {
	body, err := json.Marshal(subscribeRequest{
		Email:     email,
		APIKey:    c.apiKey,
		FirstName: firstName(name),
	})
	if err != nil {
		return fmt.Errorf("crm: marshal subscribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subscribeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm: subscribe post: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("crm: subscribe returned %d", resp.StatusCode)
	}

	c.logger.Debug("crm subscribe ok", "email", email)
	return nil
}

// firstName extracts the leading name token; the provider only takes one.
func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
