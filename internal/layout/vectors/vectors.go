// Package vectors holds matrix helpers shared by the layout algorithms.
package vectors

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// Matrix copies data into an n×d matrix after checking that it is
// non-empty, rectangular and finite.
func Matrix(data [][]float64) (*mat.Dense, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	n, d := len(data), len(data[0])
	x := mat.NewDense(n, d, nil)
	for i, row := range data {
		x.SetRow(i, row)
	}
	return x, nil
}

// Validate checks that data is non-empty, rectangular and finite.
func Validate(data [][]float64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no vectors", domain.ErrInvalidInput)
	}
	d := len(data[0])
	if d == 0 {
		return fmt.Errorf("%w: zero-length vectors", domain.ErrInvalidInput)
	}
	for i, row := range data {
		if len(row) != d {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(row), d)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: vector %d", domain.ErrNonFiniteValue, i)
			}
		}
	}
	return nil
}

// Centre returns a copy of x with each column's mean subtracted.
func Centre(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		floats.AddConst(-stat.Mean(col, nil), col)
		out.SetCol(j, col)
	}
	return out
}

// MeanVariance returns the mean over columns of the population variance
// of each column.
func MeanVariance(x *mat.Dense) float64 {
	n, d := x.Dims()
	col := make([]float64, n)
	total := 0.0
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		total += stat.PopVariance(col, nil)
	}
	return total / float64(d)
}

// SquaredDistance returns the squared Euclidean distance between a and b.
func SquaredDistance(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		diff := a[i] - b[i]
		s += diff * diff
	}
	return s
}

// PairwiseSquaredDistances returns the symmetric n×n matrix of squared
// Euclidean distances between the rows of x.
func PairwiseSquaredDistances(x *mat.Dense) *mat.SymDense {
	n, _ := x.Dims()
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		ri := x.RawRowView(i)
		for j := i + 1; j < n; j++ {
			dist.SetSym(i, j, SquaredDistance(ri, x.RawRowView(j)))
		}
	}
	return dist
}

// DegenerateLayout returns the fixed layout for corpora too small to
// project: one post sits at the origin, two posts sit at (-1, 0) and (1, 0).
func DegenerateLayout(n int) ([]domain.Coordinate, bool) {
	switch n {
	case 1:
		return []domain.Coordinate{{X: 0, Y: 0}}, true
	case 2:
		return []domain.Coordinate{{X: -1, Y: 0}, {X: 1, Y: 0}}, true
	default:
		return nil, false
	}
}

// Coordinates converts the first two columns of y to coordinates.
func Coordinates(y *mat.Dense) []domain.Coordinate {
	n, _ := y.Dims()
	coords := make([]domain.Coordinate, n)
	for i := 0; i < n; i++ {
		coords[i] = domain.Coordinate{X: y.At(i, 0), Y: y.At(i, 1)}
	}
	return coords
}
