// Package countries loads the country reference dataset.
package countries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/pkg/logger"
	"github.com/questline/pricing-planner/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

const (
	defaultURL             = "https://cdn.jsdelivr.net/npm/world-countries@5/countries.json"
	defaultTimeout         = 10 * time.Second
	defaultRetryMaxElapsed = 15 * time.Second
	defaultRetryMaxWait    = 3 * time.Second
	maxBodyBytes           = 16 << 20
)

// Source loads the full country list.
type Source interface {
	Countries(ctx context.Context) ([]model.CountryProfile, error)
}

// Client is an HTTP Source that retries transient failures.
type Client struct {
	url             string
	http            *http.Client
	log             logger.Logger
	retryMaxElapsed time.Duration
	retryMaxWait    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the dataset URL.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetry bounds the retry loop. A zero maxElapsed disables retries.
func WithRetry(maxElapsed, maxWait time.Duration) Option {
	return func(c *Client) {
		c.retryMaxElapsed = maxElapsed
		if maxWait > 0 {
			c.retryMaxWait = maxWait
		}
	}
}

// NewClient builds a Client. Without WithLogger it uses logger.Named("countries").
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:             defaultURL,
		http:            &http.Client{Timeout: defaultTimeout},
		retryMaxElapsed: defaultRetryMaxElapsed,
		retryMaxWait:    defaultRetryMaxWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("countries")
	}
	return c
}

// Countries fetches and parses the dataset, retrying transport errors and
// 5xx responses with exponential backoff. Decode errors and 4xx responses
// are not retried.
func (c *Client) Countries(ctx context.Context) ([]model.CountryProfile, error) {
	if c.retryMaxElapsed <= 0 {
		out, err := c.fetch(ctx)
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return out, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.retryMaxElapsed
	policy.MaxInterval = c.retryMaxWait

	var out []model.CountryProfile
	err := backoff.RetryNotify(
		func() error {
			var err error
			out, err = c.fetch(ctx)
			return err
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			metrics.RecordCountryLoadRetry()
			c.log.Warn(ctx, "country dataset fetch failed, retrying",
				logger.Error(err),
				logger.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context) ([]model.CountryProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: build request: %w", ErrUnavailable, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %w: %d", ErrUnavailable, ErrStatus, resp.StatusCode)
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	out, err := Parse(body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return out, nil
}

// IsUnavailable reports whether err came from this package's source.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
