package domain

import (
	"context"
	"log/slog"
	"math"
)

// BaselineScore is the closed-form rule-based delay model. Each term and
// its cap must be preserved exactly to keep scores comparable with
// historical data.
func BaselineScore(f FeatureVector) float64 {
	p := 0.15
	p += math.Min(f.DistanceKM/1000.0, 0.15)
	if f.OriginStorm != 0 {
		p += 0.25
	}
	p += math.Min(f.OriginRainMM/50.0, 0.15)
	p += math.Min(f.CongestionIndex*0.3, 0.30)
	p -= math.Max(0.0, f.CarrierReliability-0.70) // better carrier reduces risk
	return ClampProbability(p)
}

// FuseRisk runs the baseline and, when configured, the learned model over
// the feature vector and takes the worse case: delay_prob is the max of the
// two, attributed to ML only when the learned score is strictly greater.
// A nil model or a failed call leaves the learned score null — it is never
// substituted.
func FuseRisk(ctx context.Context, s Shipment, model RiskModel, logger *slog.Logger) Shipment {
	var f FeatureVector
	if s.Features != nil {
		f = *s.Features
	}

	base := round3(BaselineScore(f))
	s.BaselineDelayProb = base

	var ml *float64
	if model != nil {
		p, err := model.Score(ctx, f)
		if err != nil {
			logger.Warn("learned risk model unavailable, using baseline only",
				"shipment_id", s.ShipmentID, "error", err)
		} else {
			v := round3(ClampProbability(p))
			ml = &v
		}
	}
	s.MLDelayProb = ml

	if ml != nil && *ml > base {
		s.DelayProb = *ml
		s.Source = SourceML
	} else {
		s.DelayProb = base
		s.Source = SourceBaseline
	}
	s.RiskLevel = RiskLevelFor(s.DelayProb)
	return s
}
