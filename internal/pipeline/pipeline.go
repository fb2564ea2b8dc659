// Package pipeline orchestrates the per-shipment enrichment chain:
// validation, ingestion normalization, then the six stages in fixed order
// on a bounded worker pool. Records are independent; one record's fatal
// stage error never aborts its siblings, and output order always matches
// input order regardless of completion time.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
	"github.com/couchcryptid/cargosense-risk/internal/observability"
)

// Notifier publishes processed shipments to the notification sink.
type Notifier interface {
	PublishBatch(ctx context.Context, shipments []domain.Shipment) error
}

// Deps wires the pipeline's capabilities. Geocoder, Router, Weather, and
// Traffic are required; RiskModel, ExplanationModel, and Notifier are
// optional (nil disables them).
type Deps struct {
	Geocoder         domain.Geocoder
	Router           domain.Router
	Weather          domain.WeatherProvider
	Traffic          domain.TrafficProvider
	RiskModel        domain.RiskModel
	ExplanationModel domain.ExplanationModel
	Notifier         Notifier
	Features         *domain.FeatureBuilder

	Logger  *slog.Logger
	Metrics *observability.Metrics

	// Workers bounds concurrent per-record pipelines; defaults to 4.
	Workers int
	// WeatherSamples / TrafficSamples / WeatherTimeout default to the
	// domain package defaults when zero.
	WeatherSamples int
	TrafficSamples int
	WeatherTimeout time.Duration
	// ExplainTimeout bounds the generative explanation call.
	ExplainTimeout time.Duration
}

// RecordFailure reports one record excluded from the successful output.
type RecordFailure struct {
	Index      int    `json:"index"`
	ShipmentID string `json:"shipment_id"`
	Error      string `json:"error"`
}

// BatchResult is the outcome of one batch: fully enriched records in input
// order, plus per-record failures.
type BatchResult struct {
	Processed []domain.Shipment `json:"processed"`
	Failures  []RecordFailure   `json:"failures,omitempty"`
}

// Pipeline runs batches of shipments through the enrichment chain.
type Pipeline struct {
	deps      Deps
	explainer *domain.Explainer
	ready     atomic.Bool
}

// New creates a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	if deps.Workers <= 0 {
		deps.Workers = 4
	}
	p := &Pipeline{
		deps:      deps,
		explainer: domain.NewExplainer(deps.ExplanationModel, deps.ExplainTimeout, deps.Logger),
	}
	p.ready.Store(deps.Geocoder != nil && deps.Router != nil &&
		deps.Weather != nil && deps.Traffic != nil && deps.Features != nil)
	return p
}

// CheckReadiness returns nil when all required capabilities are wired.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline is missing a required capability")
	}
	return nil
}

// Process validates, normalizes, and enriches a batch. A validation
// failure rejects the whole batch before any stage executes. Otherwise
// every record runs its own pipeline; fatal per-record errors land in
// BatchResult.Failures without failing siblings. Cancelling ctx stops
// records cooperatively at the next stage boundary.
func (p *Pipeline) Process(ctx context.Context, batch []domain.ShipmentInput) (BatchResult, error) {
	if err := domain.ValidateBatch(batch); err != nil {
		p.deps.Metrics.ValidationFailures.Inc()
		return BatchResult{}, err
	}

	start := time.Now()
	p.deps.Metrics.InFlightBatches.Inc()
	defer p.deps.Metrics.InFlightBatches.Dec()
	p.deps.Metrics.BatchSize.Observe(float64(len(batch)))

	// Ingestion normalization for every record before any enrichment runs.
	records := make([]domain.Shipment, len(batch))
	for i, in := range batch {
		records[i] = domain.NewShipment(in)
	}

	results := make([]domain.Shipment, len(records))
	recordErrs := make([]error, len(records))

	// The group never returns an error: per-record failures are collected
	// by index so the output keeps input ordering and siblings keep running.
	var g errgroup.Group
	g.SetLimit(p.deps.Workers)
	for i := range records {
		g.Go(func() error {
			out, err := p.runRecord(ctx, records[i])
			if err != nil {
				recordErrs[i] = err
				return nil
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Processed: make([]domain.Shipment, 0, len(records))}
	for i := range records {
		if err := recordErrs[i]; err != nil {
			p.deps.Metrics.ShipmentsFailed.Inc()
			p.deps.Logger.Error("shipment pipeline failed",
				"shipment_id", batch[i].ShipmentID, "index", i, "error", err)
			result.Failures = append(result.Failures, RecordFailure{
				Index:      i,
				ShipmentID: batch[i].ShipmentID,
				Error:      err.Error(),
			})
			continue
		}
		p.deps.Metrics.ShipmentsProcessed.Inc()
		result.Processed = append(result.Processed, results[i])
	}

	p.notify(ctx, result.Processed)
	p.deps.Metrics.BatchDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// runRecord executes the six stages sequentially for one shipment,
// checking for cancellation at each stage boundary — never mid-call.
func (p *Pipeline) runRecord(ctx context.Context, s domain.Shipment) (domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return s, err
	}
	s, err := domain.EnrichWithRoute(ctx, s, p.deps.Geocoder, p.deps.Router, p.deps.Logger)
	if err != nil {
		p.deps.Metrics.StageErrors.WithLabelValues("georoute").Inc()
		return s, err
	}

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s = domain.EnrichWithWeather(ctx, s, p.deps.Weather, p.deps.WeatherSamples, p.deps.WeatherTimeout, p.deps.Logger)

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s = domain.EnrichWithTraffic(ctx, s, p.deps.Traffic, p.deps.TrafficSamples, p.deps.Logger)

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s = p.deps.Features.Build(s)

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s = domain.FuseRisk(ctx, s, p.deps.RiskModel, p.deps.Logger)

	if err := ctx.Err(); err != nil {
		return s, err
	}
	s = p.explainer.Explain(ctx, s)

	return domain.Finalize(s), nil
}

// notify publishes processed records to the sink. Delivery failure is
// logged, never surfaced: notification is best-effort and the batch result
// is already complete.
func (p *Pipeline) notify(ctx context.Context, processed []domain.Shipment) {
	if p.deps.Notifier == nil || len(processed) == 0 {
		return
	}
	if err := p.deps.Notifier.PublishBatch(ctx, processed); err != nil {
		p.deps.Logger.Error("notification publish failed", "error", err, "count", len(processed))
	}
}
