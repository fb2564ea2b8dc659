package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTraffic struct {
	flows []TrafficFlow
	err   error
	calls int
}

func (tr *stubTraffic) Flow(_ context.Context, _, _ float64) (TrafficFlow, error) {
	tr.calls++
	if tr.err != nil {
		return TrafficFlow{}, tr.err
	}
	f := tr.flows[(tr.calls-1)%len(tr.flows)]
	return f, nil
}

func TestEnrichWithTraffic(t *testing.T) {
	t.Run("averages congestion over sampled points", func(t *testing.T) {
		provider := &stubTraffic{flows: []TrafficFlow{
			{CurrentSpeedKPH: 50, FreeFlowSpeedKPH: 100}, // 0.5
			{CurrentSpeedKPH: 80, FreeFlowSpeedKPH: 100}, // 0.2
			{CurrentSpeedKPH: 90, FreeFlowSpeedKPH: 100}, // 0.1
		}}

		s := EnrichWithTraffic(context.Background(), routedShipment(3), provider, 3, testLogger)
		require.NotNil(t, s.CongestionIndex)
		assert.InDelta(t, 0.27, *s.CongestionIndex, 1e-9) // round2((0.5+0.2+0.1)/3)
	})

	t.Run("no route points is a no-op", func(t *testing.T) {
		provider := &stubTraffic{flows: []TrafficFlow{{CurrentSpeedKPH: 10, FreeFlowSpeedKPH: 100}}}

		s := EnrichWithTraffic(context.Background(), testShipment(), provider, 3, testLogger)
		assert.Nil(t, s.CongestionIndex)
		assert.Zero(t, provider.calls)
	})

	t.Run("all samples failing yields the moderate prior", func(t *testing.T) {
		provider := &stubTraffic{err: errors.New("flow unavailable")}

		s := EnrichWithTraffic(context.Background(), routedShipment(3), provider, 3, testLogger)
		require.NotNil(t, s.CongestionIndex)
		assert.Equal(t, 0.3, *s.CongestionIndex)
	})

	t.Run("non-positive free-flow speed is dropped, not zeroed", func(t *testing.T) {
		provider := &stubTraffic{flows: []TrafficFlow{
			{CurrentSpeedKPH: 50, FreeFlowSpeedKPH: 100}, // 0.5
			{CurrentSpeedKPH: 30, FreeFlowSpeedKPH: 0},   // dropped
			{CurrentSpeedKPH: 50, FreeFlowSpeedKPH: 100}, // 0.5
		}}

		s := EnrichWithTraffic(context.Background(), routedShipment(3), provider, 3, testLogger)
		require.NotNil(t, s.CongestionIndex)
		assert.Equal(t, 0.5, *s.CongestionIndex)
	})

	t.Run("only dropped samples also yields the prior", func(t *testing.T) {
		provider := &stubTraffic{flows: []TrafficFlow{{CurrentSpeedKPH: 30, FreeFlowSpeedKPH: 0}}}

		s := EnrichWithTraffic(context.Background(), routedShipment(2), provider, 2, testLogger)
		require.NotNil(t, s.CongestionIndex)
		assert.Equal(t, 0.3, *s.CongestionIndex)
	})
}
