// Package openmeteo implements the weather capability against the
// Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
)

// Client implements domain.WeatherProvider using the Open-Meteo hourly
// forecast endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. Open-Meteo needs no API key.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		logger:  logger,
	}
}

// Forecast returns the one-day hourly maxima for precipitation and wind at
// a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (domain.WeatherSample, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"hourly":        {"precipitation,wind_speed_10m"},
		"forecast_days": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherSample{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSample{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("open-meteo API error", "status", resp.StatusCode, "lat", lat, "lon", lon)
		return domain.WeatherSample{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var fc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return domain.WeatherSample{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.WeatherSample{
		RainMM:  maxOf(fc.Hourly.Precipitation),
		WindKPH: maxOf(fc.Hourly.WindSpeed10M),
	}, nil
}

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		m = max(m, v)
	}
	return m
}

type forecastResponse struct {
	Hourly struct {
		Precipitation []float64 `json:"precipitation"`
		WindSpeed10M  []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}
