// Package httpx holds HTTP client helpers shared by the upstream adapters.
package httpx

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/questline/pricing-planner/pkg/logger"
	"github.com/questline/pricing-planner/pkg/metrics"
)

// Log field keys.
const (
	FieldRequestID    = "request_id"
	FieldRequestBody  = "request_body"
	FieldResponseBody = "response_body"
	FieldDurationMs   = "duration_ms"
	FieldStatus       = "status"
)

// LoggingRoundTripper implements http.RoundTripper and logs every outbound
// request and response.
type LoggingRoundTripper struct {
	next           http.RoundTripper
	masker         SensitiveDataMasker
	log            logger.Logger
	logFieldMaxLen int
}

// NewLoggingRoundTripper wraps next. A nil next means http.DefaultTransport.
func NewLoggingRoundTripper(next http.RoundTripper, opts ...Option) *LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	rt := &LoggingRoundTripper{
		next:   next,
		masker: NopMasker{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		rt.log = logger.Named("httpx")
	}
	return rt
}

// NewClient returns an http.Client using a LoggingRoundTripper over the
// default transport.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingRoundTripper(http.DefaultTransport, opts...),
	}
}

func (rt *LoggingRoundTripper) truncate(b []byte) []byte {
	if rt.logFieldMaxLen > 0 && len(b) > rt.logFieldMaxLen {
		return b[:rt.logFieldMaxLen]
	}
	return b
}

// RoundTrip implements http.RoundTripper.
func (rt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := rt.log
	requestID := xid.New().String()

	reqBytes, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		log.Error(ctx, "httputil.DumpRequestOut", logger.String(FieldRequestID, requestID), logger.Error(err))
	}
	log.Debug(ctx, "http request",
		logger.String(FieldRequestID, requestID),
		logger.String(FieldRequestBody, string(rt.masker.Mask(rt.truncate(reqBytes)))),
	)

	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		metrics.RecordOutboundRequest(req.URL.Host, "error")
		log.Warn(ctx, "http request failed",
			logger.String(FieldRequestID, requestID),
			logger.Int64(FieldDurationMs, time.Since(start).Milliseconds()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	respBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		log.Error(ctx, "httputil.DumpResponse", logger.String(FieldRequestID, requestID), logger.Error(err))
	}

	metrics.RecordOutboundRequest(req.URL.Host, strconv.Itoa(resp.StatusCode))
	log.Debug(ctx, "http response",
		logger.String(FieldRequestID, requestID),
		logger.Int(FieldStatus, resp.StatusCode),
		logger.String(FieldResponseBody, string(rt.masker.Mask(rt.truncate(respBytes)))),
		logger.Int64(FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return resp, nil
}
