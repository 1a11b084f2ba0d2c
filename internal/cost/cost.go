// Package cost defines the cost-functional contract consumed by the solver
// backend, plus a quadratic tracking cost implementation.
package cost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/dynamo"
)

// Function evaluates a finite-horizon cost functional and its local
// quadratic expansion around a trajectory point. Stage terms are rates; the
// backend integrates them with its time step.
type Function interface {
	Stage(x dynamo.State, u dynamo.Control, t float64) float64
	Terminal(x dynamo.State) float64

	// Quadratize returns the first and second derivatives of the stage cost
	// at (x, u, t): lx (n), lu (m), lxx (n x n), luu (m x m), lux (m x n).
	Quadratize(x dynamo.State, u dynamo.Control, t float64) (lx, lu *mat.VecDense, lxx, luu, lux *mat.Dense)

	// QuadratizeTerminal returns the derivatives of the terminal cost at x.
	QuadratizeTerminal(x dynamo.State) (lx *mat.VecDense, lxx *mat.Dense)
}
