package domain

import (
	"math"
	"strings"
	"time"
)

// RiskLevel classifies a delay probability into one of three bands.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Score source attribution.
const (
	SourceBaseline = "baseline"
	SourceML       = "ML"
)

// ExplainedBy values. "default" means no generative model was configured,
// "default_fallback" means the configured model failed at runtime.
const (
	ExplainedDefault  = "default"
	ExplainedLLM      = "llm"
	ExplainedFallback = "default_fallback"
)

// MaxRoutePoints caps the stored route polyline.
const MaxRoutePoints = 10

// ShipmentInput is the raw ingestion payload. All six fields are required
// and must be non-empty.
type ShipmentInput struct {
	ShipmentID  string `json:"shipment_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Carrier     string `json:"carrier"`
	DispatchTS  string `json:"dispatch_ts"`
	ExpectedTS  string `json:"expected_ts"`
}

// RoutePoint is one (lat, lon) sample along a resolved route.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FeatureVector is the fixed six-field numeric projection consumed by the
// risk scorers.
type FeatureVector struct {
	DistanceKM         float64 `json:"distance_km"`
	HoursToDeadline    float64 `json:"hours_to_deadline"`
	OriginRainMM       float64 `json:"origin_rain_mm"`
	OriginStorm        int     `json:"origin_storm"`
	CongestionIndex    float64 `json:"congestion_index"`
	CarrierReliability float64 `json:"carrier_reliability"`
}

// Shipment is the record threaded through every enrichment stage. Stages
// add fields additively; a later stage may read but never erase an earlier
// stage's output.
type Shipment struct {
	ShipmentID  string `json:"shipment_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Carrier     string `json:"carrier"`
	DispatchTS  string `json:"dispatch_ts"`
	ExpectedTS  string `json:"expected_ts"`

	// Geo-route enrichment.
	GeocodeOK   bool         `json:"geocode_ok"`
	Error       string       `json:"error,omitempty"`
	OriginLat   float64      `json:"origin_lat,omitempty"`
	OriginLon   float64      `json:"origin_lon,omitempty"`
	DestLat     float64      `json:"dest_lat,omitempty"`
	DestLon     float64      `json:"dest_lon,omitempty"`
	DistanceKM  float64      `json:"distance_km,omitempty"`
	DurationHR  float64      `json:"duration_hr,omitempty"`
	RoutePoints []RoutePoint `json:"route_points,omitempty"`

	// Weather enrichment.
	RouteMaxRainMM  float64 `json:"route_max_rain_mm"`
	RouteMaxWindKPH float64 `json:"route_max_wind_kph"`
	RouteStorm      int     `json:"route_storm"`

	// Traffic enrichment. Nil means the stage was a no-op (no route points);
	// the measured-but-unavailable case is the 0.3 prior, never nil.
	CongestionIndex *float64 `json:"congestion_index,omitempty"`

	Features *FeatureVector `json:"features,omitempty"`

	// Risk fusion.
	BaselineDelayProb float64   `json:"baseline_delay_prob"`
	MLDelayProb       *float64  `json:"ml_delay_prob"`
	DelayProb         float64   `json:"delay_prob"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Source            string    `json:"source"`

	// Explanation.
	Summary     string   `json:"summary"`
	Actions     []string `json:"actions"`
	ExplainedBy string   `json:"explained_by"`

	Notification string    `json:"notification,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// NewShipment applies ingestion normalization to a validated input:
// origin and destination are uppercased, everything else carries over.
func NewShipment(in ShipmentInput) Shipment {
	return Shipment{
		ShipmentID:  in.ShipmentID,
		Origin:      strings.ToUpper(in.Origin),
		Destination: strings.ToUpper(in.Destination),
		Carrier:     in.Carrier,
		DispatchTS:  in.DispatchTS,
		ExpectedTS:  in.ExpectedTS,
	}
}

// RiskLevelFor maps a delay probability to its risk band. Always recomputed
// from the probability, never hand-set.
func RiskLevelFor(p float64) RiskLevel {
	switch {
	case p >= 0.6:
		return RiskHigh
	case p >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClampProbability bounds a delay probability to [0, 0.99].
func ClampProbability(p float64) float64 {
	return math.Max(0.0, math.Min(p, 0.99))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
