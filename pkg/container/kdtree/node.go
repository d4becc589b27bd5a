package kdtree

import "github.com/go-sod/kdspace/internal/geom"

type node[V comparable] struct {
	Value  V
	Coords geom.Point
	Left   *node[V]
	Right  *node[V]
}

func (n *node[V]) view() View[V] {
	return View[V]{Value: n.Value, Coords: n.Coords.Copy()}
}

func (n *node[V]) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

func (n *node[V]) insertLeft(p geom.Point, v V, dim, dims int) {
	if n.Left == nil {
		n.Left = &node[V]{Value: v, Coords: p}
	} else {
		n.Left.Insert(p, v, (dim+1)%dims, dims)
	}
}

func (n *node[V]) insertRight(p geom.Point, v V, dim, dims int) {
	if n.Right == nil {
		n.Right = &node[V]{Value: v, Coords: p}
	} else {
		n.Right.Insert(p, v, (dim+1)%dims, dims)
	}
}

// Insert places p below n. Ties on the discriminator go right.
func (n *node[V]) Insert(p geom.Point, v V, dim, dims int) {
	if p.Dim(dim) < n.Coords.Dim(dim) {
		n.insertLeft(p, v, dim, dims)
	} else {
		n.insertRight(p, v, dim, dims)
	}
}

func (n *node[V]) walk(yield func(View[V]) bool) bool {
	if n == nil {
		return true
	}
	if !yield(n.view()) {
		return false
	}
	return n.Left.walk(yield) && n.Right.walk(yield)
}

func (n *node[V]) searchByValue(v V) *node[V] {
	if n == nil {
		return nil
	}
	if n.Value == v {
		return n
	}
	if found := n.Left.searchByValue(v); found != nil {
		return found
	}
	return n.Right.searchByValue(v)
}

// findMin returns the node of the subtree rooted at n holding the smallest
// coordinate along dim, together with that node's own discriminator. cur is
// the discriminator of n. Every node of the subtree is compared; on equal
// coordinates the right subtree wins over the left, and the left over n.
func (n *node[V]) findMin(dim, cur, dims int) (*node[V], int) {
	best, bestDim := n, cur
	next := (cur + 1) % dims
	if n.Left != nil {
		if l, lDim := n.Left.findMin(dim, next, dims); l.Coords[dim] <= best.Coords[dim] {
			best, bestDim = l, lDim
		}
	}
	if n.Right != nil {
		if r, rDim := n.Right.findMin(dim, next, dims); r.Coords[dim] <= best.Coords[dim] {
			best, bestDim = r, rDim
		}
	}
	return best, bestDim
}
