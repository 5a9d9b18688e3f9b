// Package geocode resolves real street addresses from the OpenStreetMap
// Nominatim search API through a cascade of progressively broader queries.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/metrics"

	"github.com/tidwall/gjson"
)

const (
	searchPath   = "/search"
	resultLimit  = 10
	maxBodyBytes = 4 << 20
)

// ErrUpstreamStatus is returned for any non-200 provider response.
var ErrUpstreamStatus = errors.New("nominatim: unexpected status")

// Client is the Nominatim search client. All queries go through one shared
// Throttle, so a single Client must be shared process-wide.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	throttle   *Throttle
	log        *logger.Logger
	metrics    *metrics.Collector
}

// NewClient creates a Nominatim client from configuration.
func NewClient(cfg config.GeocodeConfig, log *logger.Logger, m *metrics.Collector) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetNominatimTimeout()},
		baseURL:    cfg.GetNominatimURL(),
		userAgent:  cfg.GetNominatimUserAgent(),
		throttle:   NewThrottle(cfg.GetNominatimMinInterval()),
		log:        log,
		metrics:    m,
	}
}

// Search runs one free-text query scoped to countryCode. It waits on the
// shared throttle first. Non-200 responses, transport failures and
// undecodable bodies are returned as errors.
func (c *Client) Search(ctx context.Context, text, countryCode string) ([]gjson.Result, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("countrycodes", countryCode)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("accept-language", "native")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	waited, err := c.throttle.Wait(ctx)
	c.metrics.ObserveThrottleWait(waited)
	if err != nil {
		return nil, fmt.Errorf("throttle: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).UpstreamError("nominatim", 0, err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.WithContext(ctx).UpstreamError("nominatim", resp.StatusCode, nil)
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("nominatim: invalid JSON payload")
	}

	payload := gjson.ParseBytes(body)
	if !payload.IsArray() {
		return nil, errors.New("nominatim: expected a JSON array")
	}
	return payload.Array(), nil
}

// Interval exposes the throttle spacing, mostly for startup logging.
func (c *Client) Interval() time.Duration {
	return c.throttle.Interval()
}
