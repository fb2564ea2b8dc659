package domain

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	// defaultHoursToDeadline substitutes for unparsable timestamps.
	defaultHoursToDeadline = 24.0

	// defaultCarrierReliability applies to carriers not in the table.
	defaultCarrierReliability = 0.70

	// noopCongestionIndex substitutes when the traffic stage never ran
	// (no route points). Distinct from the 0.3 sampled-but-unavailable prior.
	noopCongestionIndex = 0.2

	// reliabilityJitter bounds the simulated live fluctuation.
	reliabilityJitter = 0.03
)

var carrierReliability = map[string]float64{
	"DHL":   0.82,
	"UPS":   0.78,
	"FedEx": 0.75,
	"Posta": 0.65,
}

// FeatureBuilder projects an enriched shipment into the fixed FeatureVector.
// The carrier-reliability jitter comes from the injected random source so
// tests can seed it for deterministic output.
type FeatureBuilder struct {
	mu  sync.Mutex // rand.Rand is not safe for concurrent workers
	rng *rand.Rand
}

// NewFeatureBuilder creates a builder. A nil rng falls back to a
// time-seeded source.
func NewFeatureBuilder(rng *rand.Rand) *FeatureBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FeatureBuilder{rng: rng}
}

// Build computes the feature vector from the accumulated stage fields. It
// is a pure projection apart from the reliability jitter and does not
// mutate upstream fields.
func (b *FeatureBuilder) Build(s Shipment) Shipment {
	congestion := noopCongestionIndex
	if s.CongestionIndex != nil {
		congestion = *s.CongestionIndex
	}

	s.Features = &FeatureVector{
		DistanceKM:         s.DistanceKM,
		HoursToDeadline:    round2(hoursBetween(s.DispatchTS, s.ExpectedTS)),
		OriginRainMM:       s.RouteMaxRainMM,
		OriginStorm:        s.RouteStorm,
		CongestionIndex:    congestion,
		CarrierReliability: b.reliability(s.Carrier),
	}
	return s
}

// reliability looks up the carrier's base reliability and perturbs it by a
// bounded jitter in [−0.03, +0.03], clamped to [0, 1].
func (b *FeatureBuilder) reliability(carrier string) float64 {
	base, ok := carrierReliability[carrier]
	if !ok {
		base = defaultCarrierReliability
	}
	b.mu.Lock()
	jitter := (b.rng.Float64()*2 - 1) * reliabilityJitter
	b.mu.Unlock()
	return round2(math.Max(0.0, math.Min(1.0, base+jitter)))
}

// hoursBetween returns the absolute elapsed hours between two timestamps.
// Any parse failure yields the 24-hour default, never an error.
func hoursBetween(dispatchTS, expectedTS string) float64 {
	a, errA := parseTimestamp(dispatchTS)
	b, errB := parseTimestamp(expectedTS)
	if errA != nil || errB != nil {
		return defaultHoursToDeadline
	}
	return math.Abs(b.Sub(a).Hours())
}

// parseTimestamp accepts RFC 3339 ("Z" or numeric offset) and the naive
// form without an offset, which is read as UTC.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
}
