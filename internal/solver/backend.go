package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
)

// Backend is the numerical engine behind the iteration control. It owns the
// reference trajectory, the policy, and the convergence tolerance; the
// control owns linearization and the outer loop.
//
// Call order within one iteration: ReferenceTrajectory (and
// SubstepReference) first, then SetLinearization with matrices computed
// along that trajectory, then Iterate.
type Backend interface {
	Configure(s Settings, p *Problem) error

	// SetInitialGuess seeds the policy before the first iteration. Backends
	// that cannot honor a guess return ErrUnsupportedGuess rather than
	// ignoring it.
	SetInitialGuess(p *dynamo.Policy) error

	// ReferenceTrajectory returns the trajectory the next linearization pass
	// must follow, rolling out the current policy if the stored one is stale.
	ReferenceTrajectory() (*dynamo.Trajectory, error)

	// SubstepReference exposes the integrator substeps recorded during the
	// last rollout, indexed [step][substep]. Borrowed by the sensitivity
	// layer for the duration of one prepare pass.
	SubstepReference() ([][]dynamo.State, [][]dynamo.Control)

	// SetLinearization installs the per-step discrete transition matrices
	// for the current reference trajectory.
	SetLinearization(A, B []*mat.Dense) error

	// Iterate runs one numerical pass. done reports convergence under the
	// backend's tolerance; a non-nil error is a non-recoverable numerical
	// failure.
	Iterate() (done bool, err error)

	ChangeTimeHorizon(tf float64) error
	ChangeInitialState(x0 dynamo.State) error
	ChangeCostFunction(c cost.Function) error
	ChangeNonlinearSystem(dyn dynamo.System) error
	ChangeLinearSystem(lin dynamo.Linearizer) error

	Solution() *dynamo.Policy
	StateTrajectory() []dynamo.State
	ControlTrajectory() []dynamo.Control
	TimeArray() []float64
	Cost() float64
	TimeHorizon() float64
}
