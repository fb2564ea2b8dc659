// Package domain models freight shipments and the enrichment stages that
// estimate their delay risk.
//
// # Record Lifecycle
//
// A shipment enters as six raw string fields (id, origin, destination,
// carrier, dispatch and expected timestamps). Ingestion uppercases the
// origin and destination names. The record then passes once through each
// enrichment stage in fixed order:
//
//	geo-route → weather → traffic → features → risk fusion → explanation
//
// Each stage adds fields and never erases what an earlier stage wrote.
// When a stage's external capability fails, the stage substitutes a default
// instead of dropping the field, with one exception: a routing failure after
// successful geocoding is fatal for the record, because the weather and
// traffic samplers depend on route points.
//
// # Failure Defaults
//
// The defaults encode different risk philosophies and are kept exactly as
// the historical scoring system used them:
//
//	Weather:  unreachable sample point contributes 0 mm rain, 0 kph wind
//	          (a no-risk prior — weather failures bias risk downward).
//	Traffic:  zero measurable points → congestion index 0.3
//	          (a moderate prior — absence of measurement is not zero congestion).
//	Traffic:  no route points at all → stage is a no-op; the feature builder
//	          later substitutes 0.2, distinct from the 0.3 measured-but-unavailable prior.
//	Features: unparsable timestamps → 24.0 hours to deadline.
//	          Unknown carrier → 0.70 reliability.
//	Risk:     learned model absent or unreachable → score is null, never defaulted.
//	Explain:  generative model error → deterministic fallback explanation.
//
// # Thresholds
//
// A storm is flagged only when extremes co-occur: max rain > 15 mm AND max
// wind > 35 kph. Risk levels are a pure function of delay probability:
// HIGH at ≥ 0.6, MEDIUM at ≥ 0.3, LOW below. Delay probabilities are
// clamped to [0, 0.99] before storage.
//
// # Baseline Risk Formula
//
// The rule-based baseline is a fixed additive model; every term and cap
// must stay bit-compatible with historical scores:
//
//	p = 0.15
//	  + min(distance_km/1000, 0.15)
//	  + 0.25 if storm
//	  + min(rain_mm/50, 0.15)
//	  + min(congestion*0.3, 0.30)
//	  − max(0, reliability−0.70)
//
// The learned model, when configured, competes with the baseline and the
// larger probability wins ("never average away a high signal"). Ties
// attribute the score to the baseline.
package domain
