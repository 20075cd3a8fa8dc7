// Package ergast reads drivers and driver standings from an Ergast-compatible
// racing-statistics API (for example the Jolpica mirror).
package ergast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/ports"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultBaseURL points at the current season of the public Ergast mirror.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1/current/"

const (
	driversPath   = "drivers/"
	standingsPath = "driverstandings/"

	// maxErrorBody bounds how much of a failed response is read for a detail.
	maxErrorBody = 64 << 10
	// maxBody bounds a successful response.
	maxBody = 8 << 20
)

var _ ports.DriverSource = (*Client)(nil)

// Client implements ports.DriverSource over HTTP.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger

	// flight collapses concurrent requests for the same path into one.
	flight singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLimiter paces outbound requests. Requests wait for a token; they are
// never retried.
func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a client for baseURL. A trailing slash is added when missing.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		userAgent: "paddock",
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type driversEnvelope struct {
	MRData struct {
		DriverTable struct {
			Drivers []domain.Driver `json:"Drivers"`
		} `json:"DriverTable"`
	} `json:"MRData"`
}

type standingsEnvelope struct {
	MRData struct {
		StandingsTable struct {
			StandingsLists []struct {
				DriverStandings []domain.DriverStanding `json:"DriverStandings"`
			} `json:"StandingsLists"`
		} `json:"StandingsTable"`
	} `json:"MRData"`
}

// FetchDriversList returns the drivers of the configured season.
func (c *Client) FetchDriversList(ctx context.Context) ([]domain.Driver, error) {
	var env driversEnvelope
	if err := c.get(ctx, driversPath, &env); err != nil {
		return nil, err
	}
	drivers := env.MRData.DriverTable.Drivers
	if drivers == nil {
		drivers = []domain.Driver{}
	}
	return drivers, nil
}

// FetchDriverStandingsList returns the first standings list, or an empty
// slice when the API has none yet (e.g. before the first race).
func (c *Client) FetchDriverStandingsList(ctx context.Context) ([]domain.DriverStanding, error) {
	var env standingsEnvelope
	if err := c.get(ctx, standingsPath, &env); err != nil {
		return nil, err
	}
	lists := env.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 || lists[0].DriverStandings == nil {
		return []domain.DriverStanding{}, nil
	}
	return lists[0].DriverStandings, nil
}

// get fetches path and decodes it into out. Concurrent callers asking for the
// same path share one request; each decodes its own copy of the body.
// The shared request is detached from every caller's cancellation and bounded
// by the HTTP client's timeout; a caller that goes away only stops waiting.
func (c *Client) get(ctx context.Context, path string, out any) error {
	ch := c.flight.DoChan(path, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if c.http.Timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, c.http.Timeout)
			defer cancel()
		}
		return c.fetch(fetchCtx, path)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return &APIError{URL: c.baseURL + path, Message: domain.FallbackErrorMessage, Err: ctx.Err()}
	}
	if res.Err != nil {
		return res.Err
	}
	if res.Shared {
		c.logger.Debug("request shared", "path", path)
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return &APIError{
			URL:     c.baseURL + path,
			Status:  http.StatusOK,
			Message: domain.FallbackErrorMessage,
			Err:     fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{URL: url, Message: domain.FallbackErrorMessage, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{URL: url, Message: domain.FallbackErrorMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "url", url, "err", err)
		return nil, &APIError{URL: url, Message: domain.FallbackErrorMessage, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("request done", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			URL:     url,
			Status:  resp.StatusCode,
			Message: detailOrFallback(body),
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &APIError{
			URL:     url,
			Status:  resp.StatusCode,
			Message: domain.FallbackErrorMessage,
			Err:     fmt.Errorf("failed to read response: %w", err),
		}
	}
	return body, nil
}
