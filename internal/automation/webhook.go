// Package automation pushes stored-lead events to the configured
// automation platform webhook (the Zapier-style collaborator).
package automation

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/funnelkit/lead-capture-api/internal/events"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

const defaultUserAgent = "lead-capture-api/0.1"

// Config controls how the webhook client behaves.
type Config struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// WebhookClient delivers outbox entries over HTTP POST.
type WebhookClient struct {
	url        string
	secret     string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	userAgent  string
}

// NewWebhookClient creates a configured client with sane defaults.
func NewWebhookClient(cfg Config) (*WebhookClient, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("automation: webhook URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &WebhookClient{
		url:        url,
		secret:     cfg.Secret,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// Handle posts the entry payload to the webhook. Retries transient
// failures; a 4xx response is treated as permanent.
func (c *WebhookClient) Handle(ctx context.Context, entry events.OutboxEntry) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		err := c.post(ctx, entry)
		if err == nil {
			return nil
		}
		lastErr = err
		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
		c.logger.Warn("webhook delivery attempt failed", "error", err, "attempt", attempt+1, "event_id", entry.ID)
	}
	return fmt.Errorf("automation: delivery exhausted after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *WebhookClient) post(ctx context.Context, entry events.OutboxEntry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(entry.Payload))
	if err != nil {
		return fmt.Errorf("automation: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Event-Id", entry.ID.String())
	req.Header.Set("X-Event-Type", entry.Type)
	if c.secret != "" {
		req.Header.Set("X-Signature", Sign(c.secret, entry.Payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("automation: post: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &permanentError{status: resp.StatusCode}
	default:
		return fmt.Errorf("automation: webhook returned %d", resp.StatusCode)
	}
}

// Sign computes the hex HMAC-SHA256 signature the receiver can verify.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type permanentError struct {
	status int
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("automation: webhook rejected payload with %d", e.status)
}

var _ events.DeliveryHandler = (*WebhookClient)(nil)
