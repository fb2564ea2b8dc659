// Command genmock generates deterministic shipment fixtures for the test
// suites. It synthesizes raw shipment batches from a fixed city and carrier
// table, then runs them through the actual pipeline with stubbed external
// capabilities so scored fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -count 50 \
//	  -raw-out data/mock/shipments_raw.json \
//	  -scored-out data/mock/shipments_scored.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/geo/s2"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
	"github.com/couchcryptid/cargosense-risk/internal/observability"
	"github.com/couchcryptid/cargosense-risk/internal/pipeline"
)

const earthRadiusMeters = 6371000.0

var baseDispatch = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

type city struct {
	name string
	lat  float64
	lon  float64
}

var cities = []city{
	{"Budapest", 47.4979, 19.0402},
	{"Vienna", 48.2082, 16.3738},
	{"Prague", 50.0755, 14.4378},
	{"Berlin", 52.5200, 13.4050},
	{"Warsaw", 52.2297, 21.0122},
	{"Munich", 48.1351, 11.5820},
	{"Zagreb", 45.8150, 15.9819},
	{"Bratislava", 48.1486, 17.1077},
}

var carriers = []string{"DHL", "UPS", "FedEx", "Posta", "RegioCargo"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 50, "number of shipments to generate")
	seed := flag.Int64("seed", 42, "random seed for reproducible output")
	rawOut := flag.String("raw-out", "", "output path for raw shipment inputs")
	scoredOut := flag.String("scored-out", "", "output path for scored shipment fixtures")
	flag.Parse()

	if *rawOut == "" || *scoredOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -scored-out")
	}

	// Fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	batch := generateBatch(rng, *count)

	if err := writeJSON(*rawOut, batch); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s (%d shipments)", *rawOut, len(batch))

	stub := &stubCapabilities{rng: rand.New(rand.NewSource(*seed + 1))}
	p := pipeline.New(pipeline.Deps{
		Geocoder: stub,
		Router:   stub,
		Weather:  stub,
		Traffic:  stub,
		Features: domain.NewFeatureBuilder(rand.New(rand.NewSource(*seed + 2))),
		Logger:   observability.NewLogger("error", "text"),
		Metrics:  observability.NewMetricsForTesting(),
		Workers:  1, // sequential keeps the stub rng draws deterministic
	})

	result, err := p.Process(context.Background(), batch)
	if err != nil {
		return fmt.Errorf("scoring batch: %w", err)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("unexpected record failures: %d", len(result.Failures))
	}

	if err := writeJSON(*scoredOut, result.Processed); err != nil {
		return fmt.Errorf("writing scored fixture: %w", err)
	}
	log.Printf("wrote scored fixture: %s", *scoredOut)

	printStats(result.Processed)
	return nil
}

func generateBatch(rng *rand.Rand, count int) []domain.ShipmentInput {
	batch := make([]domain.ShipmentInput, count)
	for i := range batch {
		origin := cities[rng.Intn(len(cities))]
		dest := cities[rng.Intn(len(cities))]
		for dest.name == origin.name {
			dest = cities[rng.Intn(len(cities))]
		}
		dispatch := baseDispatch.Add(time.Duration(rng.Intn(72)) * time.Hour)
		expected := dispatch.Add(time.Duration(12+rng.Intn(60)) * time.Hour)
		batch[i] = domain.ShipmentInput{
			ShipmentID:  fmt.Sprintf("SHP-%04d", i+1),
			Origin:      origin.name,
			Destination: dest.name,
			Carrier:     carriers[rng.Intn(len(carriers))],
			DispatchTS:  dispatch.Format(time.RFC3339),
			ExpectedTS:  expected.Format(time.RFC3339),
		}
	}
	return batch
}

// stubCapabilities replaces the external providers with deterministic
// synthetic data derived from the city table and a seeded rng.
type stubCapabilities struct {
	rng *rand.Rand
}

func (s *stubCapabilities) Geocode(_ context.Context, name string) (domain.Coordinate, bool, error) {
	for _, c := range cities {
		if strings.EqualFold(name, c.name) {
			return domain.Coordinate{Lat: c.lat, Lon: c.lon}, true, nil
		}
	}
	return domain.Coordinate{}, false, nil
}

func (s *stubCapabilities) Route(_ context.Context, origin, dest domain.Coordinate) (domain.Route, error) {
	a := s2.LatLngFromDegrees(origin.Lat, origin.Lon)
	b := s2.LatLngFromDegrees(dest.Lat, dest.Lon)
	meters := a.Distance(b).Radians() * earthRadiusMeters * 1.25 // road factor

	points := make([]domain.RoutePoint, 12)
	pa, pb := s2.PointFromLatLng(a), s2.PointFromLatLng(b)
	for i := range points {
		frac := float64(i) / float64(len(points)-1)
		ll := s2.LatLngFromPoint(s2.Interpolate(frac, pa, pb))
		points[i] = domain.RoutePoint{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
	}
	return domain.Route{
		DistanceMeters:  meters,
		DurationSeconds: meters / 1000 / 72 * 3600, // 72 km/h average
		Points:          points,
	}, nil
}

func (s *stubCapabilities) Forecast(_ context.Context, lat, _ float64) (domain.WeatherSample, error) {
	// Rain scales with latitude noise so some shipments cross the storm
	// thresholds and some stay clear.
	rain := math.Abs(lat-49) * 4 * s.rng.Float64() * 2
	wind := 10 + s.rng.Float64()*40
	return domain.WeatherSample{RainMM: rain, WindKPH: wind}, nil
}

func (s *stubCapabilities) Flow(_ context.Context, _, _ float64) (domain.TrafficFlow, error) {
	free := 60 + s.rng.Float64()*40
	current := free * (0.4 + s.rng.Float64()*0.6)
	return domain.TrafficFlow{CurrentSpeedKPH: current, FreeFlowSpeedKPH: free}, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(shipments []domain.Shipment) {
	counts := map[domain.RiskLevel]int{}
	for _, s := range shipments {
		counts[s.RiskLevel]++
	}
	log.Printf("risk levels: HIGH=%d MEDIUM=%d LOW=%d",
		counts[domain.RiskHigh], counts[domain.RiskMedium], counts[domain.RiskLow])
}
