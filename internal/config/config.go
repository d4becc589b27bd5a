package config

import (
	"github.com/go-sod/kdspace/internal/index"
	"github.com/go-sod/kdspace/internal/metrics"
	"github.com/go-sod/kdspace/internal/query"
	"github.com/go-sod/kdspace/internal/setup"
)

var (
	_ setup.IndexConfigProvider   = (*Config)(nil)
	_ setup.MetricsConfigProvider = (*Config)(nil)
)

// Config is the environment of kdspace-srv.
type Config struct {
	SrvAddr  string `envconfig:"KDSPACE_ADDR" default:":8787"`
	GRPCAddr string `envconfig:"KDSPACE_GRPC_ADDR" default:":8788"`
	Index    index.Config
	Query    query.Config
	Metrics  metrics.Config
}

func (c *Config) IndexConfig() *index.Config {
	return &c.Index
}

func (c *Config) MetricsConfig() *metrics.Config {
	return &c.Metrics
}
