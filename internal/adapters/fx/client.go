// Package fx fetches USD based exchange rates from the public FX source.
package fx

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

const (
	defaultURL     = "https://open.er-api.com/v6/latest/USD"
	defaultTimeout = 8 * time.Second
	resultSuccess  = "success"
	maxBodyBytes   = 1 << 20
)

// Source fetches the latest rate table.
type Source interface {
	Latest(ctx context.Context) (model.FxRateTable, error)
}

// Client is an HTTP Source.
type Client struct {
	url  string
	http *http.Client
	log  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the endpoint.
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

// NewClient builds a Client. Without WithLogger it uses logger.Named("fx").
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:  defaultURL,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("fx")
	}
	return c
}

type latestResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Rates     map[string]float64 `json:"rates"`
}

// Latest fetches the current table. Errors always wrap ErrUnavailable.
func (c *Client) Latest(ctx context.Context) (model.FxRateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: %d", ErrUnavailable, ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrUnavailable, ErrDecode, err)
	}
	if payload.Result != resultSuccess {
		return nil, fmt.Errorf("%w: %w: %q %s", ErrUnavailable, ErrResult, payload.Result, payload.ErrorType)
	}

	table := make(model.FxRateTable, len(payload.Rates))
	for code, rate := range payload.Rates {
		if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
			continue
		}
		table[strings.ToUpper(code)] = rate
	}

	c.log.Debug(ctx, "fx rates fetched", logger.Int("rates", len(table)))
	return table, nil
}
