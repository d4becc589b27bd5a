package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/kdspace/internal/buildinfo"
	"github.com/go-sod/kdspace/internal/config"
	"github.com/go-sod/kdspace/internal/logging"
	"github.com/go-sod/kdspace/internal/query"
	"github.com/go-sod/kdspace/internal/server"
	"github.com/go-sod/kdspace/internal/setup"
	"github.com/go-sod/kdspace/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintln(os.Stdout, buildinfo.Info.String())

	ctx, done := shutdown.New()
	defer done()

	logger := logging.NewLoggerFromEnv()
	ctx = logging.WithLogger(ctx, logger)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	cfg := config.Config{}
	env, err := setup.Setup(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	idx, err := env.ProvideIndex()(ctx)
	if err != nil {
		return fmt.Errorf("index provider function error: %w", err)
	}

	queryHandler, err := query.NewHandler(&cfg.Query, idx)
	if err != nil {
		return fmt.Errorf("query.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	queryHandler.Register(mux)
	mux.Handle("/health", server.HandleHealth(ctx))
	if h := env.MetricsHandler(); h != nil {
		mux.Handle("/metrics", h)
	}

	httpSrv, err := server.New(cfg.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcSrv, err := server.New(cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcServer, _ := server.NewGRPCServer("kdspace")

	logger.Infof("serving http on %s, grpc on %s, %d points loaded",
		httpSrv.Addr(), grpcSrv.Addr(), idx.Len())

	errGrp, grpCtx := errgroup.WithContext(ctx)
	errGrp.Go(func() error {
		return httpSrv.ServeHTTPHandler(grpCtx, mux)
	})
	errGrp.Go(func() error {
		return grpcSrv.ServeGRPC(grpCtx, grpcServer)
	})
	return errGrp.Wait()
}
