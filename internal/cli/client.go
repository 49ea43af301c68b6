// Package cli implements pricectl, a command line client for a running
// planner.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/questline/pricing-planner/internal/domain/types"
	"github.com/questline/pricing-planner/pkg/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

// Sentinel kinds for client errors.
var (
	ErrRequest  = errors.New("planner request failed")
	ErrResponse = errors.New("planner returned an error")
)

// Client calls the planner HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the planner at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpx.NewClient(timeout),
	}
}

// Quote posts a regional price request.
func (c *Client) Quote(ctx context.Context, req types.QuoteRequest) (types.Quote, error) {
	var q types.Quote
	err := c.do(ctx, http.MethodPost, "/api/v1/prices/regional", req, &q)
	return q, err
}

// Genres fetches the genre table.
func (c *Client) Genres(ctx context.Context) ([]types.Genre, error) {
	var out []types.Genre
	err := c.do(ctx, http.MethodGet, "/api/v1/genres", nil, &out)
	return out, err
}

// Tiers fetches the PPP tiers.
func (c *Client) Tiers(ctx context.Context) ([]types.Tier, error) {
	var out []types.Tier
	err := c.do(ctx, http.MethodGet, "/api/v1/ppp-tiers", nil, &out)
	return out, err
}

// Fx fetches the FX snapshot status.
func (c *Client) Fx(ctx context.Context) (types.FxInfo, error) {
	var out types.FxInfo
	err := c.do(ctx, http.MethodGet, "/api/v1/fx", nil, &out)
	return out, err
}

// RefreshFx asks the planner to fetch fresh FX rates.
func (c *Client) RefreshFx(ctx context.Context) (types.FxInfo, error) {
	var out types.FxInfo
	err := c.do(ctx, http.MethodPost, "/api/v1/fx/refresh", nil, &out)
	return out, err
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request body: %w", ErrRequest, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Code != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrResponse, resp.StatusCode, ae.Code, ae.Message)
		}
		return fmt.Errorf("%w: status %d", ErrResponse, resp.StatusCode)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrResponse, err)
	}
	return nil
}
