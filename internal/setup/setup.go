// Package setup turns an environment-populated config into a srvenv.SrvEnv.
package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/kdspace/internal/dataset"
	"github.com/go-sod/kdspace/internal/index"
	"github.com/go-sod/kdspace/internal/logging"
	"github.com/go-sod/kdspace/internal/metrics"
	"github.com/go-sod/kdspace/internal/srvenv"
)

type IndexConfigProvider interface {
	IndexConfig() *index.Config
}

type MetricsConfigProvider interface {
	MetricsConfig() *metrics.Config
}

// Setup fills config from the environment and builds the server components
// for every provider interface config implements.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if indexConfigProvider, ok := config.(IndexConfigProvider); ok {
		logger.Info("Configuring index")
		provideFn, err := ProvideIndexFor(indexConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create index provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithIndex(provideFn))
	}

	if metricsConfigProvider, ok := config.(MetricsConfigProvider); ok {
		cfg := metricsConfigProvider.MetricsConfig()
		if cfg.Enabled {
			logger.Info("Configuring metrics")
			h, err := metrics.NewHandler(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("unable create metrics handler: %w", err)
			}
			serverEnvOpts = append(serverEnvOpts, srvenv.WithMetrics(h))
		}
	}

	return srvenv.New(serverEnvOpts...), nil
}

// ProvideIndexFor validates the index config and returns a function building
// the index, seeded from the configured dataset file if any.
func ProvideIndexFor(provider IndexConfigProvider) (index.ProvideFn, error) {
	cfg := provider.IndexConfig()
	if cfg.Dimensions < 1 {
		return nil, fmt.Errorf("KDSPACE_DIMENSIONS must be positive, got %d", cfg.Dimensions)
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("KDSPACE_TOLERANCE must not be negative, got %v", cfg.Tolerance)
	}
	return func(ctx context.Context) (*index.Index, error) {
		idx, err := index.New(cfg.Dimensions, index.WithTolerance(cfg.Tolerance))
		if err != nil {
			return nil, fmt.Errorf("index.New: %w", err)
		}
		if cfg.Dataset == "" {
			return idx, nil
		}
		d, err := dataset.Load(cfg.Dataset)
		if err != nil {
			return nil, fmt.Errorf("dataset.Load: %w", err)
		}
		if err := idx.Load(ctx, d); err != nil {
			return nil, err
		}
		return idx, nil
	}, nil
}
