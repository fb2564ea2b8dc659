package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// EnrichWithRoute resolves origin and destination names to coordinates and
// a route between them. A failed geocode lookup (not found or provider
// error) is non-fatal: the record continues with GeocodeOK=false and an
// error string, and routing is skipped. A routing failure after both
// geocodes succeeded returns a *RouteError — there is no partial-route
// fallback because the weather and traffic samplers need route points.
func EnrichWithRoute(ctx context.Context, s Shipment, geocoder Geocoder, router Router, logger *slog.Logger) (Shipment, error) {
	origin, ok, err := resolveCoordinate(ctx, geocoder, s.Origin)
	if err != nil || !ok {
		return geocodeFailed(s, s.Origin, err, logger), nil
	}
	dest, ok, err := resolveCoordinate(ctx, geocoder, s.Destination)
	if err != nil || !ok {
		return geocodeFailed(s, s.Destination, err, logger), nil
	}

	route, err := router.Route(ctx, origin, dest)
	if err != nil {
		return s, &RouteError{ShipmentID: s.ShipmentID, Err: err}
	}

	s.GeocodeOK = true
	s.OriginLat = origin.Lat
	s.OriginLon = origin.Lon
	s.DestLat = dest.Lat
	s.DestLon = dest.Lon
	s.DistanceKM = round2(route.DistanceMeters / 1000)
	s.DurationHR = round2(route.DurationSeconds / 3600)

	points := route.Points
	if len(points) > MaxRoutePoints {
		points = points[:MaxRoutePoints]
	}
	s.RoutePoints = points
	return s, nil
}

func resolveCoordinate(ctx context.Context, geocoder Geocoder, name string) (Coordinate, bool, error) {
	coord, found, err := geocoder.Geocode(ctx, name)
	if err != nil {
		return Coordinate{}, false, err
	}
	return coord, found, nil
}

func geocodeFailed(s Shipment, name string, err error, logger *slog.Logger) Shipment {
	s.GeocodeOK = false
	if err != nil {
		s.Error = fmt.Sprintf("geocode %s: %v", name, err)
	} else {
		s.Error = fmt.Sprintf("no coordinates found for %s", name)
	}
	logger.Warn("geocoding failed, skipping route resolution",
		"shipment_id", s.ShipmentID,
		"location", name,
		"error", s.Error,
	)
	return s
}
