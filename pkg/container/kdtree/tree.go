/*
 * Copyright 2020 Dennis Kuhnert
 * Copyright 2020 Ivanov Nikita
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package kdtree implements an unbalanced k-d tree whose nodes carry a
// comparable payload next to a fixed-length coordinate vector. The splitting
// dimension of a node is its depth modulo the dimensionality of the tree.
//
// A Tree is not safe for concurrent use. Every method, and every sequence
// returned by RegionQuery or All while it is being ranged over, needs
// exclusive access to the tree; callers sharing a tree between goroutines
// must serialize access themselves. Views returned by the tree are copies and
// stay valid after the tree changes.
package kdtree

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/go-sod/kdspace/internal/geom"
)

// DefaultTolerance is the per-component slack RemoveByCoords accepts when
// matching a stored coordinate vector.
const DefaultTolerance = 0.00001

var ErrDimensionMismatch = fmt.Errorf("incorrect number of coordinates given")

// View is a snapshot of a stored point.
type View[V comparable] struct {
	Value  V
	Coords []float64
}

type Options struct {
	tolerance float64
}

type Option func(*Options)

// WithTolerance sets the tolerance used by RemoveByCoords. Insertion and
// search always compare exactly.
func WithTolerance(eps float64) Option {
	return func(o *Options) {
		o.tolerance = eps
	}
}

// New returns an empty tree over dims-dimensional coordinates. dims must be
// positive.
func New[V comparable](dims int, opts ...Option) *Tree[V] {
	if dims < 1 {
		panic("kdtree: dimensions must be positive, got " + strconv.Itoa(dims))
	}
	t := &Tree[V]{
		dims: dims,
		opts: Options{tolerance: DefaultTolerance},
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	return t
}

type Tree[V comparable] struct {
	root *node[V]
	len  int
	dims int
	opts Options
}

func (t *Tree[V]) Dimensions() int {
	return t.dims
}

func (t *Tree[V]) Len() int {
	return t.len
}

func (t *Tree[V]) Tolerance() float64 {
	return t.opts.tolerance
}

func (t *Tree[V]) next(dim int) int {
	return (dim + 1) % t.dims
}

func (t *Tree[V]) checkDims(coords []float64) error {
	if p := geom.NewPoint(coords); p.Dimensions() != t.dims {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, p.Dimensions(), t.dims)
	}
	return nil
}

// Insert stores value at coords. Equal coordinates are not merged: a second
// insert of the same vector creates another node on the right.
func (t *Tree[V]) Insert(coords []float64, value V) error {
	if err := t.checkDims(coords); err != nil {
		return err
	}
	p := geom.NewPoint(coords).Copy()
	if t.root == nil {
		t.root = &node[V]{Value: value, Coords: p}
	} else {
		t.root.Insert(p, value, 0, t.dims)
	}
	t.len += 1
	return nil
}

// SearchByValue scans the whole tree in preorder and returns the first node
// holding value.
func (t *Tree[V]) SearchByValue(value V) (View[V], bool) {
	if n := t.root.searchByValue(value); n != nil {
		return n.view(), true
	}
	return View[V]{}, false
}

// SearchByCoords descends by discriminator and returns the first node whose
// coordinates equal coords exactly.
func (t *Tree[V]) SearchByCoords(coords []float64) (View[V], bool, error) {
	if err := t.checkDims(coords); err != nil {
		return View[V]{}, false, err
	}
	p := geom.NewPoint(coords)
	for n, dim := t.root, 0; n != nil; dim = t.next(dim) {
		switch {
		case p.Dim(dim) < n.Coords.Dim(dim):
			n = n.Left
		case p.Dim(dim) > n.Coords.Dim(dim):
			n = n.Right
		default:
			if n.Coords.Equal(p) {
				return n.view(), true, nil
			}
			n = n.Right
		}
	}
	return View[V]{}, false, nil
}

// RemoveByValue removes every node holding value. A matching node is
// replaced in place and then checked again, so occurrences below it are
// removed as well. It reports whether any node was removed.
func (t *Tree[V]) RemoveByValue(value V) bool {
	root, removed := t.removeByValue(t.root, value, 0)
	t.root = root
	t.len -= removed
	return removed > 0
}

func (t *Tree[V]) removeByValue(n *node[V], value V, dim int) (*node[V], int) {
	if n == nil {
		return nil, 0
	}
	if n.Value == value {
		n, removed := t.removeByValue(t.removeNode(n, dim), value, dim)
		return n, removed + 1
	}
	var left, right int
	n.Left, left = t.removeByValue(n.Left, value, t.next(dim))
	n.Right, right = t.removeByValue(n.Right, value, t.next(dim))
	return n, left + right
}

// RemoveByCoords removes one node whose coordinates all lie within the
// tree tolerance of coords. It reports whether a node was removed.
func (t *Tree[V]) RemoveByCoords(coords []float64) (bool, error) {
	if err := t.checkDims(coords); err != nil {
		return false, err
	}
	root, ok := t.removeByCoords(t.root, geom.NewPoint(coords), 0)
	t.root = root
	if ok {
		t.len -= 1
	}
	return ok, nil
}

func (t *Tree[V]) removeByCoords(n *node[V], p geom.Point, dim int) (*node[V], bool) {
	if n == nil {
		return nil, false
	}
	var ok bool
	switch {
	case geom.Near(p.Dim(dim), n.Coords.Dim(dim), t.opts.tolerance):
		if n.Coords.ApproxEqual(p, t.opts.tolerance) {
			return t.removeNode(n, dim), true
		}
		n.Right, ok = t.removeByCoords(n.Right, p, t.next(dim))
	case p.Dim(dim) < n.Coords.Dim(dim):
		n.Left, ok = t.removeByCoords(n.Left, p, t.next(dim))
	default:
		n.Right, ok = t.removeByCoords(n.Right, p, t.next(dim))
	}
	return n, ok
}

// removeNode deletes n, whose discriminator is dim, from its subtree and
// returns the new subtree root. An inner node takes over the payload and
// coordinates of the minimum along dim of its right subtree; a lone left
// subtree is moved to the right first.
func (t *Tree[V]) removeNode(n *node[V], dim int) *node[V] {
	if n.isLeaf() {
		return nil
	}
	if n.Right == nil {
		n.Left, n.Right = nil, n.Left
	}
	repl, replDim := n.Right.findMin(dim, t.next(dim), t.dims)
	n.Value, n.Coords = repl.Value, repl.Coords
	n.Right, _ = t.unlink(n.Right, repl, t.next(dim), replDim)
	return n
}

// unlink removes target, known to have discriminator targetDim, from the
// subtree rooted at n. The descent follows target's coordinates exactly and
// falls back to the other branch if the expected one does not hold it.
func (t *Tree[V]) unlink(n, target *node[V], dim, targetDim int) (*node[V], bool) {
	if n == nil {
		return nil, false
	}
	if n == target {
		return t.removeNode(n, targetDim), true
	}
	var ok bool
	if target.Coords.Dim(dim) < n.Coords.Dim(dim) {
		if n.Left, ok = t.unlink(n.Left, target, t.next(dim), targetDim); !ok {
			n.Right, ok = t.unlink(n.Right, target, t.next(dim), targetDim)
		}
		return n, ok
	}
	if n.Right, ok = t.unlink(n.Right, target, t.next(dim), targetDim); !ok {
		n.Left, ok = t.unlink(n.Left, target, t.next(dim), targetDim)
	}
	return n, ok
}

// RegionQuery returns the points whose Euclidean distance to origin is at
// most dist. A negative or NaN dist matches nothing. The traversal runs
// lazily while the sequence is ranged over and the sequence can be consumed
// once; later ranges yield nothing. Mutating the tree invalidates the
// sequence.
func (t *Tree[V]) RegionQuery(dist float64, origin []float64) (iter.Seq[View[V]], error) {
	if err := t.checkDims(origin); err != nil {
		return nil, err
	}
	o := geom.NewPoint(origin).Copy()
	var consumed bool
	return func(yield func(View[V]) bool) {
		if consumed {
			return
		}
		consumed = true
		if dist < 0 || math.IsNaN(dist) {
			return
		}
		t.region(t.root, o, dist, 0, yield)
	}, nil
}

// Region collects RegionQuery.
func (t *Tree[V]) Region(dist float64, origin []float64) ([]View[V], error) {
	seq, err := t.RegionQuery(dist, origin)
	if err != nil {
		return nil, err
	}
	var views []View[V]
	for v := range seq {
		views = append(views, v)
	}
	return views, nil
}

func (t *Tree[V]) region(n *node[V], o geom.Point, dist float64, dim int, yield func(View[V]) bool) bool {
	if n == nil {
		return true
	}
	if d, err := geom.EuclideanDistance(n.Coords, o); err == nil && d <= dist {
		if !yield(n.view()) {
			return false
		}
	}
	next := t.next(dim)
	switch {
	case o.Dim(dim)-n.Coords.Dim(dim) > dist:
		return t.region(n.Right, o, dist, next, yield)
	case n.Coords.Dim(dim)-o.Dim(dim) > dist:
		return t.region(n.Left, o, dist, next, yield)
	default:
		return t.region(n.Left, o, dist, next, yield) && t.region(n.Right, o, dist, next, yield)
	}
}

// All walks the tree in preorder: node, left subtree, right subtree.
func (t *Tree[V]) All() iter.Seq[View[V]] {
	return func(yield func(View[V]) bool) {
		t.root.walk(yield)
	}
}

func (t *Tree[V]) Points() []View[V] {
	points := make([]View[V], 0, t.len)
	for v := range t.All() {
		points = append(points, v)
	}
	return points
}

// Dump writes every node in preorder: the value on one line, the
// space-separated coordinates on the next.
func (t *Tree[V]) Dump(w io.Writer) error {
	for v := range t.All() {
		if _, err := fmt.Fprintf(w, "%v\n%s\n", v.Value, FormatCoords(v.Coords)); err != nil {
			return fmt.Errorf("dump node %v: %w", v.Value, err)
		}
	}
	return nil
}

func FormatCoords(coords []float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
