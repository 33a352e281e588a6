// Package pca projects vectors onto their leading principal components.
package pca

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/layout/vectors"
)

// Ensure Projector implements the interface.
var _ driven.Projector = (*Projector)(nil)

// Transform returns the centred data projected onto the first components
// principal axes, one row per input vector.
//
// Each axis is signed so that its largest-magnitude loading is positive,
// which makes the result independent of the decomposition's sign choice.
// When the data has fewer axes than requested, the missing columns are zero.
func Transform(data [][]float64, components int) (*mat.Dense, error) {
	if components <= 0 {
		return nil, fmt.Errorf("%w: components must be positive", domain.ErrInvalidInput)
	}
	x, err := vectors.Matrix(data)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	out := mat.NewDense(n, components, nil)
	if n < 2 {
		return out, nil
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}

	var axes mat.Dense
	pc.VectorsTo(&axes)
	_, available := axes.Dims()
	use := min(components, available, d)

	centred := vectors.Centre(x)
	for c := 0; c < use; c++ {
		axis := mat.Col(nil, c, &axes)
		flipSign(axis)
		proj := mat.NewVecDense(n, nil)
		proj.MulVec(centred, mat.NewVecDense(d, axis))
		out.SetCol(c, proj.RawVector().Data)
	}
	return out, nil
}

// flipSign negates axis when its largest-magnitude entry is negative.
func flipSign(axis []float64) {
	best := 0
	for i, v := range axis {
		if math.Abs(v) > math.Abs(axis[best]) {
			best = i
		}
	}
	if axis[best] < 0 {
		for i := range axis {
			axis[i] = -axis[i]
		}
	}
}

// Projector is a deterministic 2D layout using the first two principal
// components. It is much faster than t-SNE and keeps global structure,
// at the cost of weaker local grouping.
type Projector struct{}

// New creates a PCA projector.
func New() *Projector {
	return &Projector{}
}

// Name returns the algorithm name.
func (p *Projector) Name() string {
	return "pca"
}

// Project maps vectors to the first two principal components.
// The seed is unused since PCA is deterministic.
func (p *Projector) Project(ctx context.Context, data [][]float64, _ uint64) ([]domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fixed, ok := vectors.DegenerateLayout(len(data)); ok {
		return fixed, nil
	}

	y, err := Transform(data, 2)
	if err != nil {
		return nil, err
	}
	return vectors.Coordinates(y), nil
}
