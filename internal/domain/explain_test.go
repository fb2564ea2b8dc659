package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExplanationModel struct {
	exp Explanation
	err error
}

func (m *stubExplanationModel) Explain(_ context.Context, _ Shipment) (Explanation, error) {
	return m.exp, m.err
}

func scoredShipment(p float64) Shipment {
	s := testShipment()
	s.DelayProb = p
	s.RiskLevel = RiskLevelFor(p)
	return s
}

func TestExplainer_Explain(t *testing.T) {
	ctx := context.Background()

	t.Run("nil model uses the deterministic default", func(t *testing.T) {
		e := NewExplainer(nil, 0, testLogger)
		s := e.Explain(ctx, scoredShipment(0.25))

		assert.Equal(t, ExplainedDefault, s.ExplainedBy)
		assert.Equal(t, "Order SHP-1 risk 25% due to minor traffic and weather factors.", s.Summary)
		assert.Equal(t, []string{"No action needed"}, s.Actions)
	})

	t.Run("model success is tagged llm", func(t *testing.T) {
		model := &stubExplanationModel{exp: Explanation{
			Summary: "Storm front over the corridor.",
			Actions: []string{"Reroute via the southern corridor"},
		}}
		e := NewExplainer(model, 0, testLogger)
		s := e.Explain(ctx, scoredShipment(0.7))

		assert.Equal(t, ExplainedLLM, s.ExplainedBy)
		assert.Equal(t, "Storm front over the corridor.", s.Summary)
		assert.Equal(t, []string{"Reroute via the southern corridor"}, s.Actions)
	})

	t.Run("model failure falls back", func(t *testing.T) {
		model := &stubExplanationModel{err: errors.New("rate limited")}
		e := NewExplainer(model, 0, testLogger)
		s := e.Explain(ctx, scoredShipment(0.7))

		assert.Equal(t, ExplainedFallback, s.ExplainedBy)
		assert.NotEmpty(t, s.Summary)
		assert.NotEmpty(t, s.Actions)
	})

	t.Run("empty summary counts as failure", func(t *testing.T) {
		model := &stubExplanationModel{exp: Explanation{Actions: []string{"x"}}}
		e := NewExplainer(model, 0, testLogger)
		s := e.Explain(ctx, scoredShipment(0.1))
		assert.Equal(t, ExplainedFallback, s.ExplainedBy)
	})

	t.Run("empty actions count as failure", func(t *testing.T) {
		model := &stubExplanationModel{exp: Explanation{Summary: "ok"}}
		e := NewExplainer(model, 0, testLogger)
		s := e.Explain(ctx, scoredShipment(0.1))
		assert.Equal(t, ExplainedFallback, s.ExplainedBy)
	})
}

func TestFallbackExplanation(t *testing.T) {
	t.Run("lists each triggered reason in order", func(t *testing.T) {
		s := scoredShipment(0.72)
		s.Features = &FeatureVector{
			DistanceKM:      450,
			OriginRainMM:    12,
			OriginStorm:     1,
			CongestionIndex: 0.6,
		}

		summary, actions := fallbackExplanation(s)
		assert.Equal(t,
			"Order SHP-1 risk 72% due to heavy storm at origin, significant rainfall, peak-hour congestion, long route distance.",
			summary)
		require.Len(t, actions, 2)
		assert.Equal(t, "Notify customer of possible delay", actions[0])
	})

	t.Run("medium risk actions", func(t *testing.T) {
		s := scoredShipment(0.45)
		s.Features = &FeatureVector{CongestionIndex: 0.5}

		summary, actions := fallbackExplanation(s)
		assert.Contains(t, summary, "peak-hour congestion")
		assert.Equal(t, []string{"Monitor closely", "Pre-position resources for potential delay"}, actions)
	})

	t.Run("boundary predicates", func(t *testing.T) {
		s := scoredShipment(0.2)
		s.Features = &FeatureVector{OriginRainMM: 10, CongestionIndex: 0.49, DistanceKM: 400}

		summary, _ := fallbackExplanation(s)
		// rain > 10, congestion >= 0.5, distance > 400 all miss.
		assert.Contains(t, summary, "minor traffic and weather factors")
	})
}
