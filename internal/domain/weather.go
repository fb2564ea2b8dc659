package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang/geo/s2"
)

const (
	// DefaultWeatherSamples is the number of route points sampled for weather.
	DefaultWeatherSamples = 5

	// DefaultWeatherTimeout bounds each per-point forecast call.
	DefaultWeatherTimeout = 5 * time.Second

	// Storm requires both extremes to co-occur: rain AND wind past threshold.
	stormRainThresholdMM  = 15.0
	stormWindThresholdKPH = 35.0
)

// EnrichWithWeather samples precipitation and wind along the route and
// records the maxima. Resolved route points are preferred; without them the
// stage interpolates points on the great-circle segment between origin and
// destination. A failed sample contributes neutral values (0 rain, 0 wind)
// rather than aborting the set — a deliberate low-risk-on-failure bias.
func EnrichWithWeather(ctx context.Context, s Shipment, provider WeatherProvider, samples int, timeout time.Duration, logger *slog.Logger) Shipment {
	if samples <= 0 {
		samples = DefaultWeatherSamples
	}
	if timeout <= 0 {
		timeout = DefaultWeatherTimeout
	}

	points := weatherSamplePoints(s, samples)
	if len(points) == 0 {
		// No route and no coordinates (geocoding failed upstream): neutral values.
		logger.Warn("no sample points for weather, using neutral values", "shipment_id", s.ShipmentID)
		s.RouteMaxRainMM = 0
		s.RouteMaxWindKPH = 0
		s.RouteStorm = 0
		return s
	}

	var maxRain, maxWind float64
	for _, p := range points {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		sample, err := provider.Forecast(callCtx, p.Lat, p.Lon)
		cancel()
		if err != nil {
			logger.Warn("weather sample failed, counting as neutral",
				"shipment_id", s.ShipmentID, "lat", p.Lat, "lon", p.Lon, "error", err)
			continue
		}
		maxRain = max(maxRain, sample.RainMM)
		maxWind = max(maxWind, sample.WindKPH)
	}

	s.RouteMaxRainMM = maxRain
	s.RouteMaxWindKPH = maxWind
	s.RouteStorm = 0
	if maxRain > stormRainThresholdMM && maxWind > stormWindThresholdKPH {
		s.RouteStorm = 1
	}
	return s
}

// weatherSamplePoints picks the coordinates to query: a stride sample of
// the route polyline when one exists, otherwise points interpolated between
// origin and destination.
func weatherSamplePoints(s Shipment, n int) []RoutePoint {
	if len(s.RoutePoints) > 0 {
		return strideSample(s.RoutePoints, n)
	}
	if s.GeocodeOK {
		return interpolatePoints(
			Coordinate{Lat: s.OriginLat, Lon: s.OriginLon},
			Coordinate{Lat: s.DestLat, Lon: s.DestLon},
			n,
		)
	}
	return nil
}

// strideSample down-samples to at most n points with stride max(1, len/n),
// preserving original order.
func strideSample(points []RoutePoint, n int) []RoutePoint {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	stride := max(1, len(points)/n)
	out := make([]RoutePoint, 0, n)
	for i := 0; i < len(points) && len(out) < n; i += stride {
		out = append(out, points[i])
	}
	return out
}

// interpolatePoints generates n evenly spaced points on the great-circle
// segment between origin and dest, endpoints included.
func interpolatePoints(origin, dest Coordinate, n int) []RoutePoint {
	if n <= 0 {
		return nil
	}
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(origin.Lat, origin.Lon))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(dest.Lat, dest.Lon))

	out := make([]RoutePoint, 0, n)
	for i := 0; i < n; i++ {
		f := 0.0
		if n > 1 {
			f = float64(i) / float64(n-1)
		}
		ll := s2.LatLngFromPoint(s2.Interpolate(f, a, b))
		out = append(out, RoutePoint{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()})
	}
	return out
}
