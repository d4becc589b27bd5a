package index

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/kdspace/internal/dataset"
	"github.com/go-sod/kdspace/pkg/container/kdtree"
)

func newCityIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Load(context.Background(), dataset.Cities()))
	return idx
}

func entryNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)

	idx, err := New(2, WithTolerance(0.1))
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Dimensions())
	assert.Equal(t, 0.1, idx.tree.Tolerance())
}

func TestIndex_Load(t *testing.T) {
	idx := newCityIndex(t)
	assert.Equal(t, 7, idx.Len())

	other, err := New(2)
	require.NoError(t, err)
	err = other.Load(context.Background(), dataset.Cities())
	assert.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
	assert.Equal(t, 0, other.Len())
}

func TestIndex_Insert(t *testing.T) {
	ctx := context.Background()
	idx, err := New(3)
	require.NoError(t, err)

	coords := []float64{1, 2, 3}
	e, err := idx.Insert(ctx, "a", coords)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "a", e.Name)
	coords[0] = 10
	assert.Equal(t, []float64{1, 2, 3}, e.Coords)

	_, err = idx.Insert(ctx, "b", []float64{1, 2})
	assert.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Find(t *testing.T) {
	ctx := context.Background()
	idx := newCityIndex(t)

	byName, ok := idx.FindByName(ctx, "Paris")
	require.True(t, ok)
	assert.Equal(t, []float64{1.5, 3.14, 5}, byName.Coords)

	byID, ok := idx.FindByID(ctx, byName.ID)
	require.True(t, ok)
	assert.Equal(t, byName, byID)

	byCoords, ok, err := idx.FindByCoords(ctx, []float64{1.5, 3.14, 5})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byName, byCoords)

	_, ok = idx.FindByName(ctx, "Atlantis")
	assert.False(t, ok)
	_, ok = idx.FindByID(ctx, uuid.New())
	assert.False(t, ok)
	_, ok, err = idx.FindByCoords(ctx, []float64{0, 0, 0})
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, err = idx.FindByCoords(ctx, []float64{0})
	assert.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
}

func TestIndex_Remove(t *testing.T) {
	ctx := context.Background()
	idx := newCityIndex(t)

	assert.True(t, idx.RemoveByName(ctx, "Detroit"))
	assert.False(t, idx.RemoveByName(ctx, "Detroit"))
	assert.Equal(t, 6, idx.Len())

	paris, ok := idx.FindByName(ctx, "Paris")
	require.True(t, ok)
	assert.True(t, idx.RemoveByID(ctx, paris.ID))
	assert.False(t, idx.RemoveByID(ctx, paris.ID))

	removed, err := idx.RemoveByCoords(ctx, []float64{70.200001, 2.1, 8.3})
	require.NoError(t, err)
	assert.True(t, removed)
	_, ok = idx.FindByName(ctx, "St. Orleans")
	assert.False(t, ok)

	_, err = idx.RemoveByCoords(ctx, []float64{1})
	assert.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
	assert.Equal(t, 4, idx.Len())
}

func TestIndex_Region(t *testing.T) {
	ctx := context.Background()
	idx := newCityIndex(t)
	origin := []float64{1.5, 2.0, 7.9}

	got, err := idx.Region(ctx, 50, origin)
	require.NoError(t, err)
	assert.Contains(t, entryNames(got), "Seattle")
	assert.Contains(t, entryNames(got), "Detroit")
	assert.NotContains(t, entryNames(got), "St. Orleans")

	require.True(t, idx.RemoveByName(ctx, "Detroit"))
	got, err = idx.Region(ctx, 50, origin)
	require.NoError(t, err)
	assert.NotContains(t, entryNames(got), "Detroit")
	assert.Contains(t, entryNames(got), "Seattle")

	got, err = idx.Region(ctx, 1, []float64{500, 500, 500})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = idx.Region(ctx, -1, origin)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, err = idx.Region(ctx, 1, []float64{1})
	assert.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
}

func TestIndex_Dump(t *testing.T) {
	ctx := context.Background()
	idx := newCityIndex(t)

	var buf bytes.Buffer
	require.NoError(t, idx.Dump(ctx, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, "Seattle", lines[0])
	assert.Equal(t, "1.03 2.5 10.11", lines[1])

	entries := idx.Entries(ctx)
	require.Len(t, entries, 7)
	assert.Equal(t, "Seattle", entries[0].Name)
}

func TestIndex_Concurrent(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_, err := idx.Insert(ctx, "p", []float64{float64(w), float64(n)})
				assert.NoError(t, err)
				_, err = idx.Region(ctx, 2, []float64{float64(w), float64(n)})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, idx.Len())
}
