package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureBuilder_Build(t *testing.T) {
	t.Run("projects enrichment fields", func(t *testing.T) {
		s := testShipment()
		s.DistanceKM = 243.57
		s.RouteMaxRainMM = 12.5
		s.RouteStorm = 1
		congestion := 0.45
		s.CongestionIndex = &congestion

		out := NewFeatureBuilder(rand.New(rand.NewSource(1))).Build(s)
		require.NotNil(t, out.Features)
		f := out.Features

		assert.Equal(t, 243.57, f.DistanceKM)
		assert.Equal(t, 24.0, f.HoursToDeadline)
		assert.Equal(t, 12.5, f.OriginRainMM)
		assert.Equal(t, 1, f.OriginStorm)
		assert.Equal(t, 0.45, f.CongestionIndex)
	})

	t.Run("missing congestion defaults to the no-op value", func(t *testing.T) {
		out := NewFeatureBuilder(rand.New(rand.NewSource(1))).Build(testShipment())
		require.NotNil(t, out.Features)
		assert.Equal(t, 0.2, out.Features.CongestionIndex)
	})

	t.Run("same seed gives identical vectors", func(t *testing.T) {
		a := NewFeatureBuilder(rand.New(rand.NewSource(7))).Build(testShipment())
		b := NewFeatureBuilder(rand.New(rand.NewSource(7))).Build(testShipment())
		assert.Equal(t, a.Features, b.Features)
	})
}

func TestFeatureBuilder_Reliability(t *testing.T) {
	b := NewFeatureBuilder(rand.New(rand.NewSource(1)))

	t.Run("known carriers jitter around the table value", func(t *testing.T) {
		for carrier, base := range map[string]float64{
			"DHL": 0.82, "UPS": 0.78, "FedEx": 0.75, "Posta": 0.65,
		} {
			got := b.reliability(carrier)
			assert.InDelta(t, base, got, reliabilityJitter+0.005, "carrier=%s", carrier)
		}
	})

	t.Run("unknown carrier uses the default", func(t *testing.T) {
		got := b.reliability("NoSuchCarrier")
		assert.InDelta(t, defaultCarrierReliability, got, reliabilityJitter+0.005)
	})

	t.Run("result stays in unit range", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			got := b.reliability("DHL")
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	})
}

func TestHoursBetween(t *testing.T) {
	tests := []struct {
		name     string
		dispatch string
		expected string
		want     float64
	}{
		{"RFC3339", "2025-03-10T08:00:00Z", "2025-03-11T20:00:00Z", 36},
		{"naive timestamps read as UTC", "2025-03-10T08:00:00", "2025-03-10T14:30:00", 6.5},
		{"reversed order is absolute", "2025-03-11T08:00:00Z", "2025-03-10T08:00:00Z", 24},
		{"unparsable dispatch defaults", "yesterday", "2025-03-11T08:00:00Z", 24},
		{"unparsable expected defaults", "2025-03-10T08:00:00Z", "", 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hoursBetween(tt.dispatch, tt.expected))
		})
	}
}
