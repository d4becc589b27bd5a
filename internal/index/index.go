// Package index serves one k-d tree of places to concurrent callers.
package index

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/kdspace/internal/dataset"
	"github.com/go-sod/kdspace/internal/logging"
	"github.com/go-sod/kdspace/internal/metrics"
	"github.com/go-sod/kdspace/internal/place"
	"github.com/go-sod/kdspace/pkg/container/kdtree"
)

// Contract for returning the Index instance
type ProvideFn func(ctx context.Context) (*Index, error)

// Entry is the caller-facing copy of a stored place.
type Entry struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Coords []float64 `json:"coords"`
}

func entryOf(v kdtree.View[place.Place]) Entry {
	return Entry{ID: v.Value.ID, Name: v.Value.Name, Coords: v.Coords}
}

type Options struct {
	tolerance float64
}

type Option func(*Index)

func WithTolerance(eps float64) Option {
	return func(i *Index) {
		i.opts.tolerance = eps
	}
}

func New(dims int, opts ...Option) (*Index, error) {
	if dims < 1 {
		return nil, fmt.Errorf("index dimensions must be positive, got %d", dims)
	}
	idx := &Index{opts: Options{tolerance: kdtree.DefaultTolerance}}
	for _, f := range opts {
		f(idx)
	}
	idx.tree = kdtree.New[place.Place](dims, kdtree.WithTolerance(idx.opts.tolerance))
	return idx, nil
}

// Index guards a kdtree.Tree with a RWMutex. Queries copy their results out
// under the read lock, so returned entries never alias the tree.
type Index struct {
	mtx  sync.RWMutex
	opts Options
	tree *kdtree.Tree[place.Place]
}

func (i *Index) Dimensions() int {
	return i.tree.Dimensions()
}

func (i *Index) Len() int {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	return i.tree.Len()
}

// Insert stores a new place named name at coords.
func (i *Index) Insert(ctx context.Context, name string, coords []float64) (Entry, error) {
	p := place.New(name)
	i.mtx.Lock()
	err := i.tree.Insert(coords, p)
	size := i.tree.Len()
	i.mtx.Unlock()
	if err != nil {
		return Entry{}, fmt.Errorf("index.Insert: %w", err)
	}
	metrics.Record(ctx, "", metrics.MInserts.M(1), metrics.MSize.M(int64(size)))
	logging.FromContext(ctx).Debugf("inserted %s (%s) at %v", name, p.ID, coords)
	return Entry{ID: p.ID, Name: name, Coords: append([]float64(nil), coords...)}, nil
}

// Load inserts every point of d.
func (i *Index) Load(ctx context.Context, d *dataset.Dataset) error {
	if d.Dimensions != i.Dimensions() {
		return fmt.Errorf("index.Load: %w: dataset has %d dimensions, index %d",
			kdtree.ErrDimensionMismatch, d.Dimensions, i.Dimensions())
	}
	for _, p := range d.Points {
		if _, err := i.Insert(ctx, p.Name, p.Coords); err != nil {
			return fmt.Errorf("index.Load %q: %w", p.Name, err)
		}
	}
	logging.FromContext(ctx).Infof("loaded %d points", len(d.Points))
	return nil
}

func (i *Index) findFirst(match func(place.Place) bool) (kdtree.View[place.Place], bool) {
	for v := range i.tree.All() {
		if match(v.Value) {
			return v, true
		}
	}
	return kdtree.View[place.Place]{}, false
}

func (i *Index) FindByID(_ context.Context, id uuid.UUID) (Entry, bool) {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	v, ok := i.findFirst(func(p place.Place) bool { return p.ID == id })
	if !ok {
		return Entry{}, false
	}
	return entryOf(v), true
}

// FindByName returns the first place named name in preorder.
func (i *Index) FindByName(_ context.Context, name string) (Entry, bool) {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	v, ok := i.findFirst(func(p place.Place) bool { return p.Name == name })
	if !ok {
		return Entry{}, false
	}
	return entryOf(v), true
}

func (i *Index) FindByCoords(_ context.Context, coords []float64) (Entry, bool, error) {
	i.mtx.RLock()
	v, ok, err := i.tree.SearchByCoords(coords)
	i.mtx.RUnlock()
	if err != nil {
		return Entry{}, false, fmt.Errorf("index.FindByCoords: %w", err)
	}
	if !ok {
		return Entry{}, false, nil
	}
	return entryOf(v), true, nil
}

func (i *Index) removeMatching(ctx context.Context, op string, match func(place.Place) bool) bool {
	i.mtx.Lock()
	v, ok := i.findFirst(match)
	if ok {
		ok = i.tree.RemoveByValue(v.Value)
	}
	size := i.tree.Len()
	i.mtx.Unlock()
	if ok {
		metrics.Record(ctx, op, metrics.MRemovals.M(1), metrics.MSize.M(int64(size)))
		logging.FromContext(ctx).Debugf("removed %s (%s)", v.Value.Name, v.Value.ID)
	}
	return ok
}

func (i *Index) RemoveByID(ctx context.Context, id uuid.UUID) bool {
	return i.removeMatching(ctx, metrics.OpByID, func(p place.Place) bool { return p.ID == id })
}

// RemoveByName removes the first place named name in preorder.
func (i *Index) RemoveByName(ctx context.Context, name string) bool {
	return i.removeMatching(ctx, metrics.OpByValue, func(p place.Place) bool { return p.Name == name })
}

func (i *Index) RemoveByCoords(ctx context.Context, coords []float64) (bool, error) {
	i.mtx.Lock()
	ok, err := i.tree.RemoveByCoords(coords)
	size := i.tree.Len()
	i.mtx.Unlock()
	if err != nil {
		return false, fmt.Errorf("index.RemoveByCoords: %w", err)
	}
	if ok {
		metrics.Record(ctx, metrics.OpByCoords, metrics.MRemovals.M(1), metrics.MSize.M(int64(size)))
		logging.FromContext(ctx).Debugf("removed point near %v", coords)
	}
	return ok, nil
}

// Region returns every place within dist of origin, in traversal order.
func (i *Index) Region(ctx context.Context, dist float64, origin []float64) ([]Entry, error) {
	start := time.Now()
	i.mtx.RLock()
	seq, err := i.tree.RegionQuery(dist, origin)
	if err != nil {
		i.mtx.RUnlock()
		return nil, fmt.Errorf("index.Region: %w", err)
	}
	entries := []Entry{}
	for v := range seq {
		entries = append(entries, entryOf(v))
	}
	i.mtx.RUnlock()
	metrics.Record(ctx, "",
		metrics.MRegionLatency.M(metrics.SinceMillis(start)),
		metrics.MRegionMatches.M(int64(len(entries))),
	)
	return entries, nil
}

// Entries returns every stored place in preorder.
func (i *Index) Entries(_ context.Context) []Entry {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	entries := make([]Entry, 0, i.tree.Len())
	for v := range i.tree.All() {
		entries = append(entries, entryOf(v))
	}
	return entries
}

func (i *Index) Dump(_ context.Context, w io.Writer) error {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	if err := i.tree.Dump(w); err != nil {
		return fmt.Errorf("index.Dump: %w", err)
	}
	return nil
}
