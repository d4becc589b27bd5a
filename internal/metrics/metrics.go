package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/go-sod/kdspace/internal/logging"
)

const (
	OpByValue  = "by_value"
	OpByCoords = "by_coords"
	OpByID     = "by_id"
)

var (
	MInserts       = stats.Int64("kdspace/index/inserts", "Number of inserted points", stats.UnitDimensionless)
	MRemovals      = stats.Int64("kdspace/index/removals", "Number of removed points", stats.UnitDimensionless)
	MSize          = stats.Int64("kdspace/index/size", "Number of stored points", stats.UnitDimensionless)
	MRegionLatency = stats.Float64("kdspace/index/region_latency", "Region query latency", stats.UnitMilliseconds)
	MRegionMatches = stats.Int64("kdspace/index/region_matches", "Points reported by one region query", stats.UnitDimensionless)

	KeyOp = mustNewKey("op")
)

var Views = []*view.View{
	{
		Name:        "kdspace/index/inserts",
		Description: "Number of inserted points",
		Measure:     MInserts,
		Aggregation: view.Count(),
	},
	{
		Name:        "kdspace/index/removals",
		Description: "Number of removed points by lookup kind",
		Measure:     MRemovals,
		TagKeys:     []tag.Key{KeyOp},
		Aggregation: view.Count(),
	},
	{
		Name:        "kdspace/index/size",
		Description: "Number of stored points",
		Measure:     MSize,
		Aggregation: view.LastValue(),
	},
	{
		Name:        "kdspace/index/region_latency",
		Description: "Region query latency distribution",
		Measure:     MRegionLatency,
		Aggregation: view.Distribution(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	},
	{
		Name:        "kdspace/index/region_matches",
		Description: "Distribution of points reported per region query",
		Measure:     MRegionMatches,
		Aggregation: view.Distribution(0, 1, 5, 10, 50, 100, 500, 1000, 5000),
	},
}

func mustNewKey(name string) tag.Key {
	k, err := tag.NewKey(name)
	if err != nil {
		panic(fmt.Sprintf("metrics: tag key %q: %v", name, err))
	}
	return k
}

// Register registers the index views with the opencensus view worker.
func Register() error {
	if err := view.Register(Views...); err != nil {
		return fmt.Errorf("view.Register: %w", err)
	}
	return nil
}

// NewHandler registers the views and returns a prometheus handler serving
// them.
func NewHandler(ctx context.Context, cfg *Config) (http.Handler, error) {
	logger := logging.FromContext(ctx)
	if err := Register(); err != nil {
		return nil, err
	}
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: cfg.Namespace,
		OnError: func(err error) {
			logger.Errorf("prometheus exporter: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("prometheus.NewExporter: %w", err)
	}
	return pe, nil
}

// Record records measurements tagged with op. An empty op records untagged.
func Record(ctx context.Context, op string, ms ...stats.Measurement) {
	if op != "" {
		if tagged, err := tag.New(ctx, tag.Upsert(KeyOp, op)); err == nil {
			ctx = tagged
		}
	}
	stats.Record(ctx, ms...)
}

func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
