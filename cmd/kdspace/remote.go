package main

import (
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/urfave/cli/v2"

	"github.com/go-sod/kdspace/internal/httputil"
	"github.com/go-sod/kdspace/internal/integration"
	"github.com/go-sod/kdspace/pkg/container/kdtree"
)

type remoteConfig struct {
	URL      string `env:"KDSPACE_REMOTE_URL,default=http://localhost:8787"`
	Token    string `env:"KDSPACE_REMOTE_TOKEN"`
	User     string `env:"KDSPACE_REMOTE_USER"`
	Password string `env:"KDSPACE_REMOTE_PASSWORD"`
}

// clientConfig picks bearer or basic auth; setting both is rejected by the
// client config validation.
func (c remoteConfig) clientConfig() httputil.HTTPClientConfig {
	cfg := httputil.HTTPClientConfig{BearerToken: c.Token}
	if c.User != "" || c.Password != "" {
		cfg.BasicAuth = &httputil.BasicAuth{Username: c.User, Password: c.Password}
	}
	return cfg
}

func remoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "talk to a running kdspace-srv (KDSPACE_REMOTE_URL, KDSPACE_REMOTE_TOKEN or KDSPACE_REMOTE_USER/PASSWORD)",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "check that the server is up",
				Action: runRemoteHealth,
			},
			{
				Name:   "region",
				Usage:  "print the points within a radius of an origin",
				Flags:  []cli.Flag{radiusFlag(), originFlag()},
				Action: runRemoteRegion,
			},
		},
	}
}

func newRemoteClient(cctx *cli.Context) (*integration.Client, error) {
	var cfg remoteConfig
	if err := envconfig.Process(cctx.Context, &cfg); err != nil {
		return nil, fmt.Errorf("envconfig.Process: %w", err)
	}
	return integration.NewClient(cfg.URL, cfg.clientConfig())
}

func runRemoteHealth(cctx *cli.Context) error {
	c, err := newRemoteClient(cctx)
	if err != nil {
		return err
	}
	if err := c.Health(cctx.Context); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cctx.App.Writer, "ok")
	return nil
}

func runRemoteRegion(cctx *cli.Context) error {
	origin, err := parseCoords(cctx.String("origin"))
	if err != nil {
		return err
	}
	c, err := newRemoteClient(cctx)
	if err != nil {
		return err
	}
	results, err := c.Region(cctx.Context, integration.RegionQuery{Radius: cctx.Float64("radius"), Origin: origin})
	if err != nil {
		return err
	}
	for _, entries := range results {
		for _, e := range entries {
			_, _ = fmt.Fprintf(cctx.App.Writer, "%s: %s\n", e.Name, kdtree.FormatCoords(e.Coords))
		}
	}
	return nil
}
