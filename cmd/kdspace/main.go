package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/go-sod/kdspace/internal/buildinfo"
	"github.com/go-sod/kdspace/internal/dataset"
	"github.com/go-sod/kdspace/internal/logging"
	"github.com/go-sod/kdspace/pkg/container/kdtree"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.DefaultLogger().Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "kdspace"
	app.Usage = "build and query k-d trees of named points"
	app.Version = buildinfo.Info.Tag()
	app.Commands = []*cli.Command{
		{
			Name:   "demo",
			Usage:  "run the city scenario: dump, query, remove, query again, search",
			Action: runDemo,
		},
		{
			Name:  "query",
			Usage: "load a TOML dataset and print the points within a radius of an origin",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "dataset",
					Usage:    "path to the TOML dataset",
					Required: true,
				},
				radiusFlag(),
				originFlag(),
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "print the matches with their full structure",
				},
			},
			Action: runQuery,
		},
		{
			Name:  "random",
			Usage: "fill a tree with random points and query around the origin",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "count",
					Usage: "number of points",
					Value: 1000,
				},
				&cli.IntFlag{
					Name:  "dims",
					Usage: "dimensionality",
					Value: 3,
				},
				&cli.Float64Flag{
					Name:  "span",
					Usage: "coordinates are drawn from [0, span)",
					Value: 100,
				},
				&cli.Float64Flag{
					Name:  "radius",
					Usage: "query radius",
					Value: 10,
				},
			},
			Action: runRandom,
		},
		remoteCommand(),
	}
	return app
}

func radiusFlag() cli.Flag {
	return &cli.Float64Flag{
		Name:     "radius",
		Usage:    "query radius",
		Required: true,
	}
}

func originFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "origin",
		Usage:    "comma separated coordinates, e.g. 1.5,2,7.9",
		Required: true,
	}
}

func parseCoords(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	coords := make([]float64, len(parts))
	for i, p := range parts {
		c, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		coords[i] = c
	}
	return coords, nil
}

func newTree(d *dataset.Dataset) (*kdtree.Tree[string], error) {
	tree := kdtree.New[string](d.Dimensions)
	for _, p := range d.Points {
		if err := tree.Insert(p.Coords, p.Name); err != nil {
			return nil, fmt.Errorf("insert %q: %w", p.Name, err)
		}
	}
	return tree, nil
}

func printRegion(w io.Writer, tree *kdtree.Tree[string], radius float64, origin []float64) error {
	seq, err := tree.RegionQuery(radius, origin)
	if err != nil {
		return err
	}
	for v := range seq {
		if _, err := fmt.Fprintf(w, "%s: %s\n", v.Value, kdtree.FormatCoords(v.Coords)); err != nil {
			return err
		}
	}
	return nil
}

func printView(w io.Writer, v kdtree.View[string], ok bool) {
	if !ok {
		_, _ = fmt.Fprintln(w, "not found")
		return
	}
	_, _ = fmt.Fprintf(w, "%s\n%s\n", v.Value, kdtree.FormatCoords(v.Coords))
}

func runDemo(cctx *cli.Context) error {
	w := cctx.App.Writer
	tree, err := newTree(dataset.Cities())
	if err != nil {
		return err
	}
	origin := []float64{1.5, 2.0, 7.9}

	if err := tree.Dump(w); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	if err := printRegion(w, tree, 50, origin); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)

	tree.RemoveByValue("Detroit")
	if err := tree.Dump(w); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	if err := printRegion(w, tree, 50, origin); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)

	v, ok, err := tree.SearchByCoords(origin)
	if err != nil {
		return err
	}
	printView(w, v, ok)
	v, ok = tree.SearchByValue("St. Orleans")
	printView(w, v, ok)
	return nil
}

func runQuery(cctx *cli.Context) error {
	d, err := dataset.Load(cctx.String("dataset"))
	if err != nil {
		return err
	}
	origin, err := parseCoords(cctx.String("origin"))
	if err != nil {
		return err
	}
	tree, err := newTree(d)
	if err != nil {
		return err
	}
	if !cctx.Bool("verbose") {
		return printRegion(cctx.App.Writer, tree, cctx.Float64("radius"), origin)
	}
	views, err := tree.Region(cctx.Float64("radius"), origin)
	if err != nil {
		return err
	}
	spew.Fdump(cctx.App.Writer, views)
	return nil
}

func runRandom(cctx *cli.Context) error {
	count, dims := cctx.Int("count"), cctx.Int("dims")
	if count < 0 || dims < 1 {
		return fmt.Errorf("count must not be negative and dims must be positive, got %d and %d", count, dims)
	}
	tree, err := newTree(dataset.Random(count, dims, cctx.Float64("span")))
	if err != nil {
		return err
	}
	views, err := tree.Region(cctx.Float64("radius"), make([]float64, dims))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cctx.App.Writer, "%d of %d points within %v of the origin\n",
		len(views), tree.Len(), cctx.Float64("radius"))
	return nil
}
