package dynamo

import "errors"

// Domain errors shared by the linearization and solver layers.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/control/matrix dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrMisalignedTrajectory indicates state/control/time sequences whose
	// lengths do not line up.
	ErrMisalignedTrajectory = errors.New("dynamo: trajectory sequences misaligned")

	// ErrNonMonotonicTime indicates a trajectory whose time stamps decrease.
	ErrNonMonotonicTime = errors.New("dynamo: trajectory time not monotonically non-decreasing")

	// ErrEmptyTrajectory indicates a trajectory with no states.
	ErrEmptyTrajectory = errors.New("dynamo: empty trajectory")
)
