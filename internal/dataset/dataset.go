package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/valyala/fastrand"
)

var ErrInvalidDataset = fmt.Errorf("invalid dataset")

// Point is one named entry of a dataset file:
//
//	[[point]]
//	name = "Seattle"
//	coords = [1.03, 2.5, 10.11]
type Point struct {
	Name   string    `toml:"name"`
	Coords []float64 `toml:"coords"`
}

type Dataset struct {
	Dimensions int     `toml:"dimensions"`
	Points     []Point `toml:"point"`
}

// Validate checks that the dimensionality is positive and every point
// carries exactly that many coordinates.
func (d *Dataset) Validate() error {
	if d.Dimensions < 1 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDataset, d.Dimensions)
	}
	for i, p := range d.Points {
		if len(p.Coords) != d.Dimensions {
			return fmt.Errorf("%w: point %d (%q) has %d coordinates, expected %d",
				ErrInvalidDataset, i, p.Name, len(p.Coords), d.Dimensions)
		}
	}
	return nil
}

func Load(path string) (*Dataset, error) {
	var d Dataset
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func Decode(r io.Reader) (*Dataset, error) {
	var d Dataset
	if _, err := toml.DecodeReader(r, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Cities is the seven-city demonstration dataset.
func Cities() *Dataset {
	return &Dataset{
		Dimensions: 3,
		Points: []Point{
			{Name: "Seattle", Coords: []float64{1.03, 2.5, 10.11}},
			{Name: "Detroit", Coords: []float64{1.5, 2.0, 7.9}},
			{Name: "St. Orleans", Coords: []float64{70.2, 2.1, 8.3}},
			{Name: "Noob York", Coords: []float64{1.01, 31, 23}},
			{Name: "Washington", Coords: []float64{0.993, 33.2, 0.12}},
			{Name: "Dallas", Coords: []float64{1, 20, 3}},
			{Name: "Paris", Coords: []float64{1.5, 3.14, 5}},
		},
	}
}

const randomResolution = 1 << 24

// Random returns n points named p0..pn-1 with coordinates uniform in
// [0, span).
func Random(n, dims int, span float64) *Dataset {
	d := &Dataset{Dimensions: dims, Points: make([]Point, n)}
	for i := range d.Points {
		coords := make([]float64, dims)
		for j := range coords {
			coords[j] = float64(fastrand.Uint32n(randomResolution)) / randomResolution * span
		}
		d.Points[i] = Point{Name: "p" + strconv.Itoa(i), Coords: coords}
	}
	return d
}
