// Package tomtom implements the geocoding, routing, and traffic-flow
// capabilities against the TomTom APIs.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
	"github.com/couchcryptid/cargosense-risk/internal/observability"
)

// Client implements domain.Geocoder, domain.Router, and
// domain.TrafficProvider using the TomTom Search, Routing, and Traffic APIs.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a TomTom client with a shared per-request timeout.
func NewClient(key string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.tomtom.com",
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode resolves a place name to coordinates. An empty result set is
// reported via the found flag, not as an error.
func (c *Client) Geocode(ctx context.Context, name string) (domain.Coordinate, bool, error) {
	u := fmt.Sprintf("%s/search/2/geocode/%s.json", c.baseURL, url.PathEscape(name))
	params := url.Values{
		"key":   {c.key},
		"limit": {"1"},
	}

	var resp geocodeResponse
	if err := c.get(ctx, u+"?"+params.Encode(), "geocode", &resp); err != nil {
		return domain.Coordinate{}, false, err
	}
	if len(resp.Results) == 0 {
		c.metrics.CapabilityRequests.WithLabelValues("geocode", "empty").Inc()
		return domain.Coordinate{}, false, nil
	}

	pos := resp.Results[0].Position
	return domain.Coordinate{Lat: pos.Lat, Lon: pos.Lon}, true, nil
}

// Route resolves a route between two coordinate pairs, returning total
// distance, total travel time, and the polyline of the first leg.
func (c *Client) Route(ctx context.Context, origin, dest domain.Coordinate) (domain.Route, error) {
	u := fmt.Sprintf("%s/routing/1/calculateRoute/%f,%f:%f,%f/json",
		c.baseURL, origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	params := url.Values{
		"key":                 {c.key},
		"routeRepresentation": {"polyline"},
	}

	var resp routeResponse
	if err := c.get(ctx, u+"?"+params.Encode(), "route", &resp); err != nil {
		return domain.Route{}, err
	}
	if len(resp.Routes) == 0 {
		return domain.Route{}, fmt.Errorf("no route between (%f,%f) and (%f,%f)",
			origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	}

	r := resp.Routes[0]
	route := domain.Route{
		DistanceMeters:  r.Summary.LengthInMeters,
		DurationSeconds: r.Summary.TravelTimeInSeconds,
	}
	if len(r.Legs) > 0 {
		route.Points = make([]domain.RoutePoint, 0, len(r.Legs[0].Points))
		for _, pt := range r.Legs[0].Points {
			route.Points = append(route.Points, domain.RoutePoint{Lat: pt.Latitude, Lon: pt.Longitude})
		}
	}
	return route, nil
}

// Flow samples current versus free-flow speed at a coordinate.
func (c *Client) Flow(ctx context.Context, lat, lon float64) (domain.TrafficFlow, error) {
	u := fmt.Sprintf("%s/traffic/services/4/flowSegmentData/absolute/10/json", c.baseURL)
	params := url.Values{
		"key":   {c.key},
		"point": {fmt.Sprintf("%f,%f", lat, lon)},
	}

	var resp flowResponse
	if err := c.get(ctx, u+"?"+params.Encode(), "traffic", &resp); err != nil {
		return domain.TrafficFlow{}, err
	}
	return domain.TrafficFlow{
		CurrentSpeedKPH:  resp.FlowSegmentData.CurrentSpeed,
		FreeFlowSpeedKPH: resp.FlowSegmentData.FreeFlowSpeed,
	}, nil
}

func (c *Client) get(ctx context.Context, fullURL, capability string, v any) error {
	start := time.Now()
	err := c.doGet(ctx, fullURL, v)
	c.metrics.CapabilityDuration.WithLabelValues(capability).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CapabilityRequests.WithLabelValues(capability, "error").Inc()
		c.logger.Warn("tomtom request failed", "capability", capability, "error", err)
		return err
	}
	c.metrics.CapabilityRequests.WithLabelValues(capability, "success").Inc()
	return nil
}

func (c *Client) doGet(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tomtom request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tomtom API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TomTom API response types.

type geocodeResponse struct {
	Results []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

type routeResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters      float64 `json:"lengthInMeters"`
			TravelTimeInSeconds float64 `json:"travelTimeInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

type flowResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
	} `json:"flowSegmentData"`
}
