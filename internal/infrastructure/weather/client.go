// Package weather implements the getWeather tool backend against the
// open-meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"chat-server/internal/domain/tool"
)

// Client implements tool.WeatherService.
type Client struct {
	httpClient *resty.Client
}

// NewClient constructs the weather client.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
}

// CurrentWeather fetches current conditions plus the hourly temperature and
// daily sunrise/sunset series for the coordinate.
func (c *Client) CurrentWeather(ctx context.Context, latitude, longitude float64) (json.RawMessage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  fmt.Sprintf("%.4f", latitude),
			"longitude": fmt.Sprintf("%.4f", longitude),
			"current":   "temperature_2m",
			"hourly":    "temperature_2m",
			"daily":     "sunrise,sunset",
			"timezone":  "auto",
		}).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather api status %d: %s", resp.StatusCode(), resp.String())
	}

	if !json.Valid(resp.Body()) {
		return nil, fmt.Errorf("weather api returned invalid json")
	}
	return json.RawMessage(resp.Body()), nil
}

var _ tool.WeatherService = (*Client)(nil)
