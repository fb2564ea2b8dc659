package domain

import "context"

// Geocoder resolves a place name to coordinates. A name that cannot be
// resolved is reported via the found flag, not as an error: not-found is an
// expected outcome for free-text origins.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (coord Coordinate, found bool, err error)
}

// Route is a resolved path between two coordinates.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	Points          []RoutePoint
}

// Router resolves a route between two coordinate pairs.
type Router interface {
	Route(ctx context.Context, origin, dest Coordinate) (Route, error)
}

// WeatherSample holds the short-horizon precipitation and wind maxima at
// one point.
type WeatherSample struct {
	RainMM  float64
	WindKPH float64
}

// WeatherProvider samples forecast conditions at a coordinate.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (WeatherSample, error)
}

// TrafficFlow holds current versus free-flow speed at one point.
type TrafficFlow struct {
	CurrentSpeedKPH  float64
	FreeFlowSpeedKPH float64
}

// TrafficProvider samples road congestion at a coordinate.
type TrafficProvider interface {
	Flow(ctx context.Context, lat, lon float64) (TrafficFlow, error)
}

// RiskModel scores a feature vector with a learned model. Absence of a
// model is a valid configuration (a nil RiskModel), not a startup failure;
// a call error means the score is null for that record.
type RiskModel interface {
	Score(ctx context.Context, features FeatureVector) (float64, error)
}

// Explanation is the structured response of a generative explanation model.
type Explanation struct {
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

// ExplanationModel generates a human-readable rationale for a scored
// shipment. May be nil when no generative capability is configured.
type ExplanationModel interface {
	Explain(ctx context.Context, shipment Shipment) (Explanation, error)
}
