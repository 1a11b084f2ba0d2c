package cost

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/dynamo"
)

// Quadratic is the standard tracking cost
//
//	l(x, u)  = 1/2 (x-goal)' Q (x-goal) + 1/2 u' R u
//	lf(x)    = 1/2 (x-goal)' Qf (x-goal)
//
// Q, R, Qf are assumed symmetric.
type Quadratic struct {
	Q, R, Qf *mat.Dense
	Goal     dynamo.State
}

func NewQuadratic(Q, R, Qf *mat.Dense, goal dynamo.State) (*Quadratic, error) {
	n, nc := Q.Dims()
	m, mc := R.Dims()
	fn, fc := Qf.Dims()
	if n != nc || m != mc || fn != n || fc != n {
		return nil, fmt.Errorf("%w: Q %dx%d R %dx%d Qf %dx%d", dynamo.ErrDimensionMismatch, n, nc, m, mc, fn, fc)
	}
	if len(goal) != n {
		return nil, fmt.Errorf("%w: goal has %d entries for %d states", dynamo.ErrDimensionMismatch, len(goal), n)
	}
	return &Quadratic{Q: Q, R: R, Qf: Qf, Goal: goal.Clone()}, nil
}

// NewDiagonal builds a quadratic cost from diagonal weights.
func NewDiagonal(q, r, qf []float64, goal dynamo.State) (*Quadratic, error) {
	return NewQuadratic(diag(q), diag(r), diag(qf), goal)
}

func diag(w []float64) *mat.Dense {
	m := mat.NewDense(len(w), len(w), nil)
	for i, v := range w {
		m.Set(i, i, v)
	}
	return m
}

func (c *Quadratic) Stage(x dynamo.State, u dynamo.Control, t float64) float64 {
	dx := x.Sub(c.Goal)
	return 0.5*quadForm(c.Q, dx) + 0.5*quadForm(c.R, []float64(u))
}

func (c *Quadratic) Terminal(x dynamo.State) float64 {
	dx := x.Sub(c.Goal)
	return 0.5 * quadForm(c.Qf, dx)
}

func (c *Quadratic) Quadratize(x dynamo.State, u dynamo.Control, t float64) (*mat.VecDense, *mat.VecDense, *mat.Dense, *mat.Dense, *mat.Dense) {
	n := len(x)
	m := len(u)

	dx := mat.NewVecDense(n, x.Sub(c.Goal))
	lx := mat.NewVecDense(n, nil)
	lx.MulVec(c.Q, dx)

	uv := mat.NewVecDense(m, append([]float64(nil), u...))
	lu := mat.NewVecDense(m, nil)
	lu.MulVec(c.R, uv)

	lxx := mat.DenseCopyOf(c.Q)
	luu := mat.DenseCopyOf(c.R)
	lux := mat.NewDense(m, n, nil)
	return lx, lu, lxx, luu, lux
}

func (c *Quadratic) QuadratizeTerminal(x dynamo.State) (*mat.VecDense, *mat.Dense) {
	n := len(x)
	dx := mat.NewVecDense(n, x.Sub(c.Goal))
	lx := mat.NewVecDense(n, nil)
	lx.MulVec(c.Qf, dx)
	return lx, mat.DenseCopyOf(c.Qf)
}

func quadForm(M *mat.Dense, v []float64) float64 {
	n := len(v)
	sum := 0.0
	for i := 0; i < n; i++ {
		row := 0.0
		for j := 0; j < n; j++ {
			row += M.At(i, j) * v[j]
		}
		sum += v[i] * row
	}
	return sum
}
