package sensitivity

import "errors"

var (
	// ErrNilLinearSystem indicates a nil Jacobian provider.
	ErrNilLinearSystem = errors.New("sensitivity: linear system must not be nil")

	// ErrInvalidTimestep indicates a non-positive discretization step.
	ErrInvalidTimestep = errors.New("sensitivity: time step must be positive")

	// ErrNoSubstepReference indicates a substep-aware evaluation without a
	// registered substep trajectory.
	ErrNoSubstepReference = errors.New("sensitivity: no substep trajectory reference registered")

	// ErrSingularDiscretization indicates that an implicit scheme required an
	// inversion that failed.
	ErrSingularDiscretization = errors.New("sensitivity: singular matrix in implicit discretization")

	// ErrOddStateDim indicates a symplectic discretization of a state space
	// that cannot be split into equal position/velocity partitions.
	ErrOddStateDim = errors.New("sensitivity: symplectic scheme requires even state dimension")

	// ErrCloneNotImplemented signals that cloning is the responsibility of
	// concrete scheme variants, not of the generic approximation.
	ErrCloneNotImplemented = errors.New("sensitivity: clone not implemented for Approximation")
)
