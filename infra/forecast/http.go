// Package forecast contains the forecast providers that depend on external
// systems.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/prediction"
)

// HTTPConfig configures a remote forecasting service.
type HTTPConfig struct {
	URL        string        `json:"url"`
	Token      string        `json:"token"`
	Timeout    time.Duration `json:"timeout"`
	RetryCount int           `json:"retry_count"`
}

// SetDefaults fills unset fields.
func (c *HTTPConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate checks the configuration.
func (c HTTPConfig) Validate() error {
	if c.URL == "" {
		return errors.New("forecast url required")
	}
	if c.RetryCount < 0 {
		return errors.New("retry_count must be non-negative")
	}
	return nil
}

// versionHeader is read when the service does not send an ETag.
const versionHeader = "X-Data-Version"

type forecastResponse struct {
	Version string                `json:"version"`
	Points  []model.ForecastPoint `json:"points"`
}

// HTTPProvider fetches forecasts from a remote service exposing
// GET {url}?horizon_hours=N.
type HTTPProvider struct {
	client *resty.Client
	url    string
}

// NewHTTPProvider returns a provider for cfg.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &HTTPProvider{client: client, url: cfg.URL}, nil
}

// Predict requests horizonHours points.
func (p *HTTPProvider) Predict(ctx context.Context, horizonHours int) ([]model.ForecastPoint, error) {
	if horizonHours <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonHours)
	}
	var out forecastResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("horizon_hours", strconv.Itoa(horizonHours)).
		SetResult(&out).
		Get(p.url)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	if len(out.Points) > horizonHours {
		out.Points = out.Points[:horizonHours]
	}
	return out.Points, nil
}

// DataVersion issues a HEAD request and reports the ETag or X-Data-Version
// header. An empty version disables caching upstream.
func (p *HTTPProvider) DataVersion(ctx context.Context) (string, error) {
	resp, err := p.client.R().SetContext(ctx).Head(p.url)
	if err != nil {
		return "", fmt.Errorf("forecast version: %w", err)
	}
	if err := statusError(resp); err != nil {
		return "", err
	}
	if v := strings.Trim(resp.Header().Get("ETag"), `"`); v != "" {
		return v, nil
	}
	return resp.Header().Get(versionHeader), nil
}

func statusError(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound || code == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: remote status %d", prediction.ErrModelUnavailable, code)
	case code >= 300:
		return fmt.Errorf("forecast service returned %d: %s", code, strings.TrimSpace(resp.String()))
	}
	return nil
}
