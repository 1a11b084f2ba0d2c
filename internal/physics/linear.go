package physics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/dynamo"
)

// Linear is a time-invariant linear system dx/dt = A x + B u. Its Jacobians
// are exact, which makes it the reference model for discretization tests.
type Linear struct {
	A, B *mat.Dense
	n, m int
}

func NewLinear(A, B *mat.Dense) (*Linear, error) {
	n, nc := A.Dims()
	bn, m := B.Dims()
	if n != nc || bn != n {
		return nil, fmt.Errorf("%w: A %dx%d, B %dx%d", dynamo.ErrDimensionMismatch, n, nc, bn, m)
	}
	return &Linear{A: A, B: B, n: n, m: m}, nil
}

// NewScalarLinear is the one-dimensional system x' = a x + b u.
func NewScalarLinear(a, b float64) *Linear {
	l, _ := NewLinear(mat.NewDense(1, 1, []float64{a}), mat.NewDense(1, 1, []float64{b}))
	return l
}

// NewDoubleIntegrator is p'' = u.
func NewDoubleIntegrator() *Linear {
	l, _ := NewLinear(
		mat.NewDense(2, 2, []float64{0, 1, 0, 0}),
		mat.NewDense(2, 1, []float64{0, 1}),
	)
	return l
}

func (l *Linear) StateDim() int {
	return l.n
}

func (l *Linear) ControlDim() int {
	return l.m
}

func (l *Linear) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	out := make(dynamo.State, l.n)
	for i := 0; i < l.n; i++ {
		v := 0.0
		for j := 0; j < l.n; j++ {
			v += l.A.At(i, j) * x[j]
		}
		for j := 0; j < l.m && j < len(u); j++ {
			v += l.B.At(i, j) * u[j]
		}
		out[i] = v
	}
	return out
}

func (l *Linear) Jacobians(x dynamo.State, u dynamo.Control, t float64) (*mat.Dense, *mat.Dense) {
	return mat.DenseCopyOf(l.A), mat.DenseCopyOf(l.B)
}
