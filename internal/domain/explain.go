package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultExplainTimeout bounds the generative explanation call.
const DefaultExplainTimeout = 10 * time.Second

// Fallback predicate thresholds.
const (
	significantRainMM   = 10.0
	peakCongestionIndex = 0.5
	longRouteKM         = 400.0
)

// Explainer produces the human-readable rationale for a scored shipment.
// It is a two-state machine: the primary state calls the generative model,
// and any primary-path error — transport failure, malformed or empty
// response — transitions unconditionally to the deterministic fallback.
// A nil model means the primary state was never configured, which is
// tagged "default" rather than "default_fallback".
type Explainer struct {
	model   ExplanationModel
	timeout time.Duration
	logger  *slog.Logger
}

// NewExplainer creates an Explainer. Pass a nil model to run fallback-only.
func NewExplainer(model ExplanationModel, timeout time.Duration, logger *slog.Logger) *Explainer {
	if timeout <= 0 {
		timeout = DefaultExplainTimeout
	}
	return &Explainer{model: model, timeout: timeout, logger: logger}
}

// Explain fills Summary, Actions, and ExplainedBy.
func (e *Explainer) Explain(ctx context.Context, s Shipment) Shipment {
	if e.model == nil {
		s.Summary, s.Actions = fallbackExplanation(s)
		s.ExplainedBy = ExplainedDefault
		return s
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	exp, err := e.model.Explain(callCtx, s)
	cancel()
	if err != nil || exp.Summary == "" || len(exp.Actions) == 0 {
		e.logger.Warn("generative explanation failed, using fallback",
			"shipment_id", s.ShipmentID, "error", err)
		s.Summary, s.Actions = fallbackExplanation(s)
		s.ExplainedBy = ExplainedFallback
		return s
	}

	s.Summary = exp.Summary
	s.Actions = exp.Actions
	s.ExplainedBy = ExplainedLLM
	return s
}

// fallbackExplanation builds the deterministic, dependency-free rationale
// from fixed predicates over the feature vector, and the action list from
// the same thresholds as the risk level.
func fallbackExplanation(s Shipment) (string, []string) {
	var f FeatureVector
	if s.Features != nil {
		f = *s.Features
	}

	var reasons []string
	if f.OriginStorm != 0 {
		reasons = append(reasons, "heavy storm at origin")
	}
	if f.OriginRainMM > significantRainMM {
		reasons = append(reasons, "significant rainfall")
	}
	if f.CongestionIndex >= peakCongestionIndex {
		reasons = append(reasons, "peak-hour congestion")
	}
	if f.DistanceKM > longRouteKM {
		reasons = append(reasons, "long route distance")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "minor traffic and weather factors")
	}

	var actions []string
	switch {
	case s.DelayProb >= 0.6:
		actions = []string{
			"Notify customer of possible delay",
			"Consider alternate route or dispatch offset",
		}
	case s.DelayProb >= 0.3:
		actions = []string{
			"Monitor closely",
			"Pre-position resources for potential delay",
		}
	default:
		actions = []string{"No action needed"}
	}

	summary := fmt.Sprintf("Order %s risk %d%% due to %s.",
		s.ShipmentID, int(s.DelayProb*100), strings.Join(reasons, ", "))
	return summary, actions
}
