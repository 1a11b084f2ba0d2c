package solver

import "errors"

var (
	// ErrNoBackend indicates an iteration control without an attached backend.
	ErrNoBackend = errors.New("solver: no backend attached")

	// ErrNotConfigured indicates Prepare/FinishSolve/Solve before Configure.
	ErrNotConfigured = errors.New("solver: not configured")

	// ErrNotPrepared indicates FinishSolve without a completed Prepare.
	ErrNotPrepared = errors.New("solver: finish without completed prepare")

	// ErrNotSolved indicates a result accessor before any completed iteration.
	ErrNotSolved = errors.New("solver: no completed iteration yet")

	// ErrNoConvergence indicates the iteration budget ran out before the
	// backend reported convergence.
	ErrNoConvergence = errors.New("solver: no convergence within iteration budget")

	// ErrSolveFailed indicates the control is in the failed state after a
	// numerical breakdown; mutate the problem or reconfigure before solving.
	ErrSolveFailed = errors.New("solver: previous solve failed")

	// ErrUnsupportedGuess is returned by backends that cannot honor a
	// non-trivial initial guess.
	ErrUnsupportedGuess = errors.New("solver: backend does not support initial guesses")
)
