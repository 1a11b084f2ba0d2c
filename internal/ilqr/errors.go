package ilqr

import "errors"

var (
	// ErrNotConfigured indicates use of the backend before Configure.
	ErrNotConfigured = errors.New("ilqr: backend not configured")

	// ErrNoLinearization indicates an Iterate call without a current
	// linearization of the reference trajectory.
	ErrNoLinearization = errors.New("ilqr: no linearization installed")

	// ErrDiverged indicates a rollout that produced NaN/Inf states.
	ErrDiverged = errors.New("ilqr: rollout diverged")

	// ErrNonPositiveDefinite indicates a control Hessian that stayed
	// indefinite through the whole regularization schedule.
	ErrNonPositiveDefinite = errors.New("ilqr: control Hessian not positive definite")

	// ErrGuessShape indicates an initial guess whose horizon or dimensions
	// do not match the configured problem.
	ErrGuessShape = errors.New("ilqr: initial guess does not match problem shape")
)
