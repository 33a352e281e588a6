// Package kmeans clusters embeddings with Lloyd's algorithm and k-means++
// seeding.
package kmeans

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/layout/vectors"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// Ensure Clusterer implements the interface.
var _ driven.Clusterer = (*Clusterer)(nil)

// Defaults.
const (
	DefaultRestarts      = 1
	DefaultMaxIterations = 300
	DefaultTolerance     = 1e-4
)

// Clusterer partitions vectors into k groups minimising within-cluster
// squared distance.
type Clusterer struct {
	restarts  int
	maxIter   int
	tolerance float64
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithRestarts runs the algorithm n times from different seeds and keeps
// the partition with the lowest inertia.
func WithRestarts(n int) Option {
	return func(c *Clusterer) {
		if n > 0 {
			c.restarts = n
		}
	}
}

// WithMaxIterations caps the Lloyd iterations per run.
func WithMaxIterations(n int) Option {
	return func(c *Clusterer) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithTolerance sets the relative centre-shift tolerance. It is scaled by
// the mean per-dimension variance of the data.
func WithTolerance(tol float64) Option {
	return func(c *Clusterer) {
		if tol >= 0 {
			c.tolerance = tol
		}
	}
}

// New creates a k-means clusterer.
func New(opts ...Option) *Clusterer {
	c := &Clusterer{
		restarts:  DefaultRestarts,
		maxIter:   DefaultMaxIterations,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the algorithm name.
func (c *Clusterer) Name() string {
	return "kmeans"
}

// Result is the outcome of a single run.
type Result struct {
	Labels     []int
	Centers    *mat.Dense
	Inertia    float64
	Iterations int
}

// Cluster assigns each vector a cluster id in [0, min(k, n)).
func (c *Clusterer) Cluster(ctx context.Context, data [][]float64, k int, seed uint64) ([]int, error) {
	res, err := c.Fit(ctx, data, k, seed)
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// Fit runs k-means and returns the best of the configured restarts.
func (c *Clusterer) Fit(ctx context.Context, data [][]float64, k int, seed uint64) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: cluster count must be positive, got %d", domain.ErrInvalidInput, k)
	}
	x, err := vectors.Matrix(data)
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	k = min(k, n)

	tol := c.tolerance * vectors.MeanVariance(x)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var best *Result
	for run := 0; run < c.restarts; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		centers := seedCenters(x, k, rng)
		res, err := c.lloyd(ctx, x, centers, tol)
		if err != nil {
			return nil, err
		}
		logger.Debug("kmeans run %d: inertia %.6g after %d iterations", run+1, res.Inertia, res.Iterations)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedCenters picks k initial centres with greedy k-means++: each new
// centre is the best of several candidates sampled proportionally to their
// squared distance from the nearest existing centre.
func seedCenters(x *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := x.Dims()
	centers := mat.NewDense(k, d, nil)
	trials := 2 + int(math.Log(float64(k)))

	first := rng.IntN(n)
	centers.SetRow(0, x.RawRowView(first))

	closest := make([]float64, n)
	for i := 0; i < n; i++ {
		closest[i] = vectors.SquaredDistance(x.RawRowView(i), x.RawRowView(first))
	}
	potential := floats.Sum(closest)

	cumulative := make([]float64, n)
	candidateDist := make([]float64, n)
	bestDist := make([]float64, n)

	for c := 1; c < k; c++ {
		floats.CumSum(cumulative, closest)

		bestCandidate := -1
		bestPotential := math.Inf(1)
		for t := 0; t < trials; t++ {
			target := rng.Float64() * potential
			candidate := min(sort.SearchFloat64s(cumulative, target), n-1)

			row := x.RawRowView(candidate)
			for i := 0; i < n; i++ {
				candidateDist[i] = min(closest[i], vectors.SquaredDistance(x.RawRowView(i), row))
			}
			if pot := floats.Sum(candidateDist); pot < bestPotential {
				bestPotential = pot
				bestCandidate = candidate
				copy(bestDist, candidateDist)
			}
		}

		centers.SetRow(c, x.RawRowView(bestCandidate))
		copy(closest, bestDist)
		potential = bestPotential
	}
	return centers
}

// lloyd alternates assignment and centre updates until labels stop
// changing, the total squared centre shift drops to tol, or the iteration
// cap is reached.
func (c *Clusterer) lloyd(ctx context.Context, x, centers *mat.Dense, tol float64) (*Result, error) {
	n, _ := x.Dims()
	labels := make([]int, n)
	prev := make([]int, n)
	for i := range prev {
		prev[i] = -1
	}

	strict := false
	iter := 0
	for ; iter < c.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		assign(x, centers, labels)
		next := updateCenters(x, centers, labels)
		shift := centerShift(centers, next)
		centers = next

		if equal(labels, prev) {
			strict = true
			break
		}
		if shift <= tol {
			break
		}
		copy(prev, labels)
	}

	// Labels must match the final centres.
	if !strict {
		assign(x, centers, labels)
	}

	return &Result{
		Labels:     labels,
		Centers:    centers,
		Inertia:    inertia(x, centers, labels),
		Iterations: min(iter+1, c.maxIter),
	}, nil
}

// assign sets each label to its nearest centre. Ties go to the lowest index.
func assign(x, centers *mat.Dense, labels []int) {
	n, _ := x.Dims()
	k, _ := centers.Dims()
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		best, bestDist := 0, math.Inf(1)
		for c := 0; c < k; c++ {
			if d := vectors.SquaredDistance(row, centers.RawRowView(c)); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// updateCenters returns the mean of each cluster. Empty clusters are moved
// onto the points farthest from their current centre, and those points are
// removed from their old cluster.
func updateCenters(x, old *mat.Dense, labels []int) *mat.Dense {
	n, d := x.Dims()
	k, _ := old.Dims()
	sums := mat.NewDense(k, d, nil)
	counts := make([]float64, k)
	for i := 0; i < n; i++ {
		floats.Add(sums.RawRowView(labels[i]), x.RawRowView(i))
		counts[labels[i]]++
	}

	var empty []int
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			empty = append(empty, c)
		}
	}

	if len(empty) > 0 {
		far := farthestPoints(x, old, labels, len(empty))
		for j, c := range empty {
			p := far[j]
			from := labels[p]
			floats.Sub(sums.RawRowView(from), x.RawRowView(p))
			counts[from]--
			sums.SetRow(c, x.RawRowView(p))
			counts[c] = 1
		}
	}

	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			floats.Scale(1/counts[c], sums.RawRowView(c))
		}
	}
	return sums
}

// farthestPoints returns the m points farthest from their assigned centre,
// farthest first. Ties keep the lower index first.
func farthestPoints(x, centers *mat.Dense, labels []int, m int) []int {
	n, _ := x.Dims()
	dist := make([]float64, n)
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		dist[i] = vectors.SquaredDistance(x.RawRowView(i), centers.RawRowView(labels[i]))
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dist[idx[a]] > dist[idx[b]]
	})
	return idx[:m]
}

func centerShift(a, b *mat.Dense) float64 {
	var diff mat.Dense
	diff.Sub(a, b)
	norm := mat.Norm(&diff, 2)
	return norm * norm
}

func inertia(x, centers *mat.Dense, labels []int) float64 {
	n, _ := x.Dims()
	total := 0.0
	for i := 0; i < n; i++ {
		total += vectors.SquaredDistance(x.RawRowView(i), centers.RawRowView(labels[i]))
	}
	return total
}

func equal(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
