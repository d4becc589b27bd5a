package geom

import "math"

// Point is a coordinate vector in K-dimensional space.
type Point []float64

func NewPoint(vec []float64) Point {
	return vec
}

func (v Point) Dimensions() int {
	return len(v)
}

func (v Point) Dim(idx int) float64 {
	return v[idx]
}

func (v Point) Copy() Point {
	var v1 = make(Point, len(v))
	copy(v1, v)
	return v1
}

func (v Point) SizeEqual(vec Point) bool {
	return len(v) == len(vec)
}

func (v Point) Equal(vec Point) bool {
	if !v.SizeEqual(vec) {
		return false
	}
	for i, value := range v {
		if vec[i] != value {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether every component of vec lies strictly within
// eps of the matching component of v.
func (v Point) ApproxEqual(vec Point, eps float64) bool {
	if !v.SizeEqual(vec) {
		return false
	}
	for i, value := range v {
		if !Near(value, vec[i], eps) {
			return false
		}
	}
	return true
}

// Near reports whether |a-b| < eps.
func Near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
