// Package tsne implements exact t-distributed stochastic neighbour
// embedding for small corpora.
//
// The optimiser follows the usual two-stage schedule: an early
// exaggeration phase with low momentum, then a longer phase with the
// affinities restored and higher momentum. Both stages use per-parameter
// adaptive gains and stop early when the KL divergence stops improving.
package tsne

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/layout/pca"
	"github.com/custodia-labs/galaxy-cli/internal/layout/vectors"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// Ensure Projector implements the interface.
var _ driven.Projector = (*Projector)(nil)

const (
	// DefaultIterations is the total number of optimisation steps.
	DefaultIterations = 1000

	exaggeration        = 12.0
	exploratoryIters    = 250
	checkEvery          = 50
	minGradNorm         = 1e-7
	minGain             = 0.01
	machineEpsilon      = 2.220446049250313e-16
	searchEpsilon       = 1e-8
	searchSteps         = 100
	perplexityTolerance = 1e-5
	initScale           = 1e-4
)

// Perplexity returns the perplexity used for a corpus of n points:
// (n-1)/3, rounded down and clamped to [5, 30].
func Perplexity(n int) float64 {
	return float64(min(30, max(5, (n-1)/3)))
}

// LearningRate returns the automatic learning rate for n points.
func LearningRate(n int) float64 {
	return max(float64(n)/exaggeration/4, 50)
}

// Projector lays vectors out in two dimensions with t-SNE.
type Projector struct {
	iterations int
}

// Option configures a Projector.
type Option func(*Projector)

// WithIterations sets the total optimisation steps. Values at or below the
// exaggeration phase length leave only that phase.
func WithIterations(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.iterations = n
		}
	}
}

// New creates a t-SNE projector.
func New(opts ...Option) *Projector {
	p := &Projector{iterations: DefaultIterations}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the algorithm name.
func (p *Projector) Name() string {
	return "tsne"
}

// Project maps vectors to 2D coordinates. Output is deterministic for a
// given input and seed.
func (p *Projector) Project(ctx context.Context, data [][]float64, seed uint64) ([]domain.Coordinate, error) {
	if err := vectors.Validate(data); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(data)
	if fixed, ok := vectors.DegenerateLayout(n); ok {
		return fixed, nil
	}

	x, err := vectors.Matrix(data)
	if err != nil {
		return nil, err
	}

	perplexity := Perplexity(n)
	if perplexity >= float64(n) {
		logger.Debug("tsne: perplexity %.1f saturates with %d points", perplexity, n)
	}

	cond := conditionalAffinities(vectors.PairwiseSquaredDistances(x), perplexity)
	pm := jointAffinities(cond)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := initialLayout(data, rng)

	opt := &optimiser{
		n:     n,
		p:     pm,
		y:     y,
		lr:    LearningRate(n),
		total: p.iterations,
	}
	if err := opt.run(ctx); err != nil {
		return nil, err
	}
	return vectors.Coordinates(opt.y), nil
}

// initialLayout returns the PCA projection scaled so the first axis has
// standard deviation 1e-4. It falls back to small Gaussian noise when PCA
// fails or the first axis has no spread.
func initialLayout(data [][]float64, rng *rand.Rand) *mat.Dense {
	n := len(data)
	if y, err := pca.Transform(data, 2); err == nil {
		col := mat.Col(nil, 0, y)
		if std := math.Sqrt(stat.PopVariance(col, nil)); std > 0 {
			y.Scale(initScale/std, y)
			return y
		}
	} else {
		logger.Debug("tsne: pca init failed: %v", err)
	}

	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, initScale*rng.NormFloat64())
		y.Set(i, 1, initScale*rng.NormFloat64())
	}
	return y
}

// conditionalAffinities binary-searches a Gaussian precision per point so
// that its conditional distribution has the target perplexity.
func conditionalAffinities(dist *mat.SymDense, perplexity float64) *mat.Dense {
	n := dist.SymmetricDim()
	target := math.Log(perplexity)
	cond := mat.NewDense(n, n, nil)
	row := make([]float64, n)

	for i := 0; i < n; i++ {
		beta, betaMin, betaMax := 1.0, math.Inf(-1), math.Inf(1)

		for step := 0; step < searchSteps; step++ {
			sumP := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-dist.At(i, j) * beta)
				sumP += row[j]
			}
			if sumP == 0 {
				sumP = searchEpsilon
			}

			weighted := 0.0
			for j := 0; j < n; j++ {
				row[j] /= sumP
				weighted += dist.At(i, j) * row[j]
			}
			entropy := math.Log(sumP) + beta*weighted
			diff := entropy - target

			if math.Abs(diff) <= perplexityTolerance {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}
		cond.SetRow(i, row)
	}
	return cond
}

// jointAffinities symmetrises conditional affinities into a joint
// distribution summing to one, floored at machine epsilon.
func jointAffinities(cond *mat.Dense) *mat.SymDense {
	n, _ := cond.Dims()
	p := mat.NewSymDense(n, nil)
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := cond.At(i, j) + cond.At(j, i)
			p.SetSym(i, j, v)
			sum += 2 * v
		}
	}
	sum = max(sum, machineEpsilon)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p.SetSym(i, j, max(p.At(i, j)/sum, machineEpsilon))
		}
	}
	return p
}

type optimiser struct {
	n     int
	p     *mat.SymDense
	y     *mat.Dense
	lr    float64
	total int

	// scratch
	w    *mat.SymDense
	grad []float64
}

type stage struct {
	from, to      int
	momentum      float64
	withoutChange int
}

func (o *optimiser) run(ctx context.Context) error {
	o.w = mat.NewSymDense(o.n, nil)
	o.grad = make([]float64, o.n*2)

	o.scaleP(exaggeration)
	last, err := o.descend(ctx, stage{
		from:          0,
		to:            min(exploratoryIters, o.total),
		momentum:      0.5,
		withoutChange: exploratoryIters,
	})
	if err != nil {
		return err
	}
	o.scaleP(1 / exaggeration)

	if o.total > exploratoryIters {
		_, err = o.descend(ctx, stage{
			from:          last + 1,
			to:            o.total,
			momentum:      0.8,
			withoutChange: 300,
		})
	}
	return err
}

func (o *optimiser) scaleP(f float64) {
	for i := 0; i < o.n; i++ {
		for j := i + 1; j < o.n; j++ {
			o.p.SetSym(i, j, o.p.At(i, j)*f)
		}
	}
}

// descend runs gradient descent with momentum and adaptive gains over
// iterations [from, to) and returns the last iteration performed.
func (o *optimiser) descend(ctx context.Context, s stage) (int, error) {
	params := o.y.RawMatrix().Data
	update := make([]float64, len(params))
	gains := make([]float64, len(params))
	for i := range gains {
		gains[i] = 1
	}

	bestErr := math.Inf(1)
	bestIter := s.from
	i := s.from
	for ; i < s.to; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		check := (i+1)%checkEvery == 0
		kl := o.gradient(check)
		gradNorm := floats.Norm(o.grad, 2)

		for k := range params {
			if update[k]*o.grad[k] < 0 {
				gains[k] += 0.2
			} else {
				gains[k] *= 0.8
			}
			gains[k] = max(gains[k], minGain)
			update[k] = s.momentum*update[k] - o.lr*gains[k]*o.grad[k]
			params[k] += update[k]
		}

		if check {
			logger.Debug("tsne: iteration %d, KL %.6f, gradient norm %.7f", i+1, kl, gradNorm)
			if kl < bestErr {
				bestErr = kl
				bestIter = i
			} else if i-bestIter > s.withoutChange {
				logger.Debug("tsne: no progress for %d iterations at %d", s.withoutChange, i+1)
				break
			}
			if gradNorm <= minGradNorm {
				logger.Debug("tsne: gradient norm %.7f at %d", gradNorm, i+1)
				break
			}
		}
	}
	if i == s.to {
		i--
	}
	return i, nil
}

// gradient fills o.grad with the KL gradient for the current layout and,
// when withError is set, returns the KL divergence.
func (o *optimiser) gradient(withError bool) float64 {
	n := o.n
	sumW := 0.0
	for i := 0; i < n; i++ {
		yi := o.y.RawRowView(i)
		for j := i + 1; j < n; j++ {
			w := 1 / (1 + vectors.SquaredDistance(yi, o.y.RawRowView(j)))
			o.w.SetSym(i, j, w)
			sumW += 2 * w
		}
	}

	for k := range o.grad {
		o.grad[k] = 0
	}
	kl := 0.0
	for i := 0; i < n; i++ {
		yi := o.y.RawRowView(i)
		for j := i + 1; j < n; j++ {
			w := o.w.At(i, j)
			pij := o.p.At(i, j)
			qij := max(w/sumW, machineEpsilon)
			if withError {
				kl += 2 * pij * math.Log(max(pij, machineEpsilon)/qij)
			}

			f := 4 * (pij - qij) * w
			yj := o.y.RawRowView(j)
			for c := 0; c < 2; c++ {
				g := f * (yi[c] - yj[c])
				o.grad[i*2+c] += g
				o.grad[j*2+c] -= g
			}
		}
	}
	return kl
}
