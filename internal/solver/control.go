package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/sensitivity"
)

// Status is the iteration control's lifecycle state.
type Status int

const (
	StatusUnconfigured Status = iota
	StatusConfigured
	StatusIterating
	StatusConverged
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnconfigured:
		return "unconfigured"
	case StatusConfigured:
		return "configured"
	case StatusIterating:
		return "iterating"
	case StatusConverged:
		return "converged"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IterationControl alternates a prepare phase (refresh every per-step
// linearization through the sensitivity layer and push it into the backend)
// with a finish phase (one backend numerical pass) until the backend reports
// convergence or the iteration budget runs out.
//
// Not safe for concurrent use: one control drives one backend.
type IterationControl struct {
	backend Backend
	problem *Problem
	sens    *sensitivity.Approximation

	settings   Settings
	status     Status
	iterations int
	prepared   bool
}

// New builds an unconfigured control around an injected backend.
func New(backend Backend, problem *Problem) *IterationControl {
	return &IterationControl{backend: backend, problem: problem}
}

// Configure validates settings and problem, wires the sensitivity layer,
// and configures the backend. Valid from any state; resets iteration
// progress.
func (c *IterationControl) Configure(s Settings) error {
	if c.backend == nil {
		return ErrNoBackend
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if c.problem == nil {
		return fmt.Errorf("solver: no problem attached")
	}
	if err := c.problem.Validate(); err != nil {
		return err
	}

	sens, err := sensitivity.New(c.problem.Linearizer, sensitivity.Settings{Dt: s.Dt, Scheme: s.Scheme})
	if err != nil {
		return err
	}
	if err := c.backend.Configure(s, c.problem); err != nil {
		return fmt.Errorf("solver: backend configure: %w", err)
	}

	c.sens = sens
	c.settings = s
	c.status = StatusConfigured
	c.iterations = 0
	c.prepared = false
	return nil
}

// SetInitialGuess forwards a policy guess to the backend. Only meaningful
// before the first iteration.
func (c *IterationControl) SetInitialGuess(p *dynamo.Policy) error {
	if c.backend == nil {
		return ErrNoBackend
	}
	return c.backend.SetInitialGuess(p)
}

// Prepare refreshes the linearization along the backend's current reference
// trajectory. A linearization failure is fatal to the iteration: the control
// transitions to failed and the backend never observes a partially
// linearized trajectory.
func (c *IterationControl) Prepare() error {
	switch c.status {
	case StatusUnconfigured:
		return ErrNotConfigured
	case StatusFailed:
		return ErrSolveFailed
	}

	traj, err := c.backend.ReferenceTrajectory()
	if err != nil {
		c.status = StatusFailed
		return fmt.Errorf("solver: reference trajectory: %w", err)
	}
	if err := traj.Validate(); err != nil {
		c.status = StatusFailed
		return fmt.Errorf("solver: reference trajectory: %w", err)
	}

	if c.settings.Substeps > 1 {
		xSub, uSub := c.backend.SubstepReference()
		c.sens.SetSubstepTrajectoryReference(xSub, uSub)
	}

	n := c.problem.Dynamics.StateDim()
	m := c.problem.Dynamics.ControlDim()
	steps := traj.Steps()
	A := make([]*mat.Dense, steps)
	B := make([]*mat.Dense, steps)
	for k := 0; k < steps; k++ {
		A[k] = mat.NewDense(n, n, nil)
		B[k] = mat.NewDense(n, m, nil)
		err := c.sens.GetAandB(traj.States[k], traj.Controls[k], traj.States[k+1], k, c.settings.Substeps, A[k], B[k])
		if err != nil {
			c.status = StatusFailed
			return fmt.Errorf("solver: linearization at step %d: %w", k, err)
		}
	}

	if err := c.backend.SetLinearization(A, B); err != nil {
		c.status = StatusFailed
		return fmt.Errorf("solver: push linearization: %w", err)
	}

	c.status = StatusIterating
	c.prepared = true
	return nil
}

// FinishSolve runs one backend numerical pass over the linearization
// installed by the last Prepare. It reports whether the backend considers
// the solve finished.
func (c *IterationControl) FinishSolve() (bool, error) {
	switch c.status {
	case StatusUnconfigured:
		return false, ErrNotConfigured
	case StatusFailed:
		return false, ErrSolveFailed
	}
	if !c.prepared {
		return false, ErrNotPrepared
	}

	done, err := c.backend.Iterate()
	if err != nil {
		c.status = StatusFailed
		return false, fmt.Errorf("solver: backend pass: %w", err)
	}

	c.iterations++
	c.prepared = false
	if done {
		c.status = StatusConverged
	}
	return done, nil
}

// Solve runs the prepare/finish loop until the backend converges, the
// context is cancelled, or MaxIterations passes complete without
// convergence (ErrNoConvergence).
func (c *IterationControl) Solve(ctx context.Context) error {
	for i := 0; i < c.settings.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.Prepare(); err != nil {
			return err
		}
		done, err := c.FinishSolve()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return ErrNoConvergence
}

// RunIteration performs exactly one prepare/finish cycle, for callers that
// impose their own outer loop or budget.
func (c *IterationControl) RunIteration() (bool, error) {
	if err := c.Prepare(); err != nil {
		return false, err
	}
	return c.FinishSolve()
}

// Status returns the current lifecycle state.
func (c *IterationControl) Status() Status {
	return c.status
}

// Iterations returns the number of completed prepare/finish cycles.
func (c *IterationControl) Iterations() int {
	return c.iterations
}

// reopen drops a terminal state back to configured so a fresh Solve can run
// against the mutated problem.
func (c *IterationControl) reopen() {
	if c.status == StatusConverged || c.status == StatusFailed {
		c.status = StatusConfigured
		c.prepared = false
	}
}

// ChangeTimeHorizon atomically replaces the horizon and forwards it to the
// backend; nothing else is reset.
func (c *IterationControl) ChangeTimeHorizon(tf float64) error {
	if tf <= 0 {
		return fmt.Errorf("solver: horizon must be positive, got %g", tf)
	}
	if err := c.backend.ChangeTimeHorizon(tf); err != nil {
		return err
	}
	c.problem.Horizon = tf
	c.reopen()
	return nil
}

func (c *IterationControl) ChangeInitialState(x0 dynamo.State) error {
	if len(x0) != c.problem.Dynamics.StateDim() {
		return fmt.Errorf("%w: x0 has %d entries for %d states", dynamo.ErrDimensionMismatch, len(x0), c.problem.Dynamics.StateDim())
	}
	if err := c.backend.ChangeInitialState(x0); err != nil {
		return err
	}
	c.problem.X0 = x0.Clone()
	c.reopen()
	return nil
}

func (c *IterationControl) ChangeCostFunction(cf cost.Function) error {
	if cf == nil {
		return fmt.Errorf("solver: cost function must not be nil")
	}
	if err := c.backend.ChangeCostFunction(cf); err != nil {
		return err
	}
	c.problem.Cost = cf
	c.reopen()
	return nil
}

func (c *IterationControl) ChangeNonlinearSystem(dyn dynamo.System) error {
	if dyn == nil {
		return fmt.Errorf("solver: dynamics must not be nil")
	}
	if err := c.backend.ChangeNonlinearSystem(dyn); err != nil {
		return err
	}
	c.problem.Dynamics = dyn
	c.reopen()
	return nil
}

func (c *IterationControl) ChangeLinearSystem(lin dynamo.Linearizer) error {
	if lin == nil {
		return fmt.Errorf("solver: linearizer must not be nil")
	}
	if err := c.backend.ChangeLinearSystem(lin); err != nil {
		return err
	}
	if err := c.sens.SetLinearSystem(lin); err != nil {
		return err
	}
	c.problem.Linearizer = lin
	c.reopen()
	return nil
}

func (c *IterationControl) guardResult() error {
	if c.backend == nil {
		return ErrNoBackend
	}
	if c.iterations == 0 {
		return ErrNotSolved
	}
	return nil
}

// GetSolution returns the backend's current policy.
func (c *IterationControl) GetSolution() (*dynamo.Policy, error) {
	if err := c.guardResult(); err != nil {
		return nil, err
	}
	return c.backend.Solution(), nil
}

func (c *IterationControl) GetStateTrajectory() ([]dynamo.State, error) {
	if err := c.guardResult(); err != nil {
		return nil, err
	}
	return c.backend.StateTrajectory(), nil
}

func (c *IterationControl) GetControlTrajectory() ([]dynamo.Control, error) {
	if err := c.guardResult(); err != nil {
		return nil, err
	}
	return c.backend.ControlTrajectory(), nil
}

func (c *IterationControl) GetTimeArray() ([]float64, error) {
	if err := c.guardResult(); err != nil {
		return nil, err
	}
	return c.backend.TimeArray(), nil
}

func (c *IterationControl) GetCost() (float64, error) {
	if err := c.guardResult(); err != nil {
		return 0, err
	}
	return c.backend.Cost(), nil
}

func (c *IterationControl) GetTimeHorizon() (float64, error) {
	if err := c.guardResult(); err != nil {
		return 0, err
	}
	return c.backend.TimeHorizon(), nil
}
