// Package webhook posts balance notifications to a chat-style webhook endpoint.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

const maxLoggedBody = 512

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Metrics records webhook deliveries.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Config holds webhook delivery settings. RPS of zero disables pacing.
type Config struct {
	URL     string
	RPS     int
	Timeout time.Duration
}

type payload struct {
	Content string `json:"content"`
}

// Client delivers one POST per notification. Failed deliveries are not retried.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	metrics    Metrics
	logger     *zap.Logger
}

// NewClient validates the endpoint and builds a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, metrics Metrics, logger *zap.Logger) (*Client, error) {
	if err := ValidateURL(cfg.URL); err != nil {
		return nil, err
	}
	if cfg.RPS < 0 {
		return nil, fmt.Errorf("webhook rps must not be negative: %d", cfg.RPS)
	}
	if metrics == nil {
		return nil, errors.New("webhook metrics is required")
	}
	if logger == nil {
		return nil, errors.New("webhook logger is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limiter = ratelimit.New(cfg.RPS)
	}

	return &Client{
		url:        cfg.URL,
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger.Named("webhook"),
	}, nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("webhook url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook url scheme %q is not http or https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("webhook url %q has no host", raw)
	}
	return nil
}

// FormatMessage renders the notification text.
func FormatMessage(n model.BalanceNotification) string {
	return fmt.Sprintf("💰 Unspent UTXO Balance: %d Lovelace at Block: %d\n Address: %s", n.Balance, n.Block, n.Address)
}

// Notify posts {"content": message} and treats any non-2xx answer as a failure.
func (c *Client) Notify(ctx context.Context, n model.BalanceNotification) (err error) {
	c.limiter.Take()

	started := time.Now()
	defer func() {
		c.metrics.Observe("notify", err, started)
	}()

	body, err := json.Marshal(payload{Content: FormatMessage(n)})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if readErr != nil {
		c.logger.Debug("read webhook response body",
			zap.Int("status", resp.StatusCode),
			zap.Error(readErr),
		)
	}
	c.logger.Info("webhook response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
		zap.Int64("block", n.Block),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
