package srvenv

import (
	"net/http"

	"github.com/go-sod/kdspace/internal/index"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// SrvEnv holds the components setup built for the server.
type SrvEnv struct {
	index   index.ProvideFn
	metrics http.Handler
}

func (s *SrvEnv) ProvideIndex() index.ProvideFn {
	return s.index
}

// MetricsHandler is nil when metrics are disabled.
func (s *SrvEnv) MetricsHandler() http.Handler {
	return s.metrics
}

func WithIndex(fn index.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.index = fn
		return s
	}
}

func WithMetrics(h http.Handler) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.metrics = h
		return s
	}
}
