package domain

import (
	"context"
	"log/slog"
)

const (
	// DefaultTrafficSamples is the number of route points sampled for congestion.
	DefaultTrafficSamples = 3

	// defaultCongestionIndex is the moderate prior used when congestion was
	// sampled but no point yielded a valid measurement. Absence of
	// measurement must not read as zero congestion.
	defaultCongestionIndex = 0.3
)

// EnrichWithTraffic samples road congestion along the route. Without route
// points the record passes through unchanged (a no-op, distinct from the
// measured-but-unavailable case). Per-point congestion is 1 − current/free
// when free-flow speed is positive; points without a positive free-flow
// speed are dropped from the average, not zeroed.
func EnrichWithTraffic(ctx context.Context, s Shipment, provider TrafficProvider, samples int, logger *slog.Logger) Shipment {
	if len(s.RoutePoints) == 0 {
		return s
	}
	if samples <= 0 {
		samples = DefaultTrafficSamples
	}

	var sum float64
	var valid int
	for _, p := range strideSample(s.RoutePoints, samples) {
		flow, err := provider.Flow(ctx, p.Lat, p.Lon)
		if err != nil {
			logger.Warn("traffic sample failed, dropping point",
				"shipment_id", s.ShipmentID, "lat", p.Lat, "lon", p.Lon, "error", err)
			continue
		}
		if flow.FreeFlowSpeedKPH <= 0 {
			continue
		}
		sum += 1.0 - flow.CurrentSpeedKPH/flow.FreeFlowSpeedKPH
		valid++
	}

	index := defaultCongestionIndex
	if valid > 0 {
		index = round2(sum / float64(valid))
	}
	s.CongestionIndex = &index
	return s
}
