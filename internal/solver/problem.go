package solver

import (
	"fmt"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/sensitivity"
)

// Problem is the optimal-control problem definition. Each member is
// independently replaceable mid-solve through the change mutators on
// IterationControl; replacing one never resets the others.
type Problem struct {
	Dynamics   dynamo.System
	Linearizer dynamo.Linearizer
	Cost       cost.Function
	X0         dynamo.State
	Horizon    float64
}

func (p *Problem) Validate() error {
	if p.Dynamics == nil {
		return fmt.Errorf("solver: problem has no dynamics")
	}
	if p.Linearizer == nil {
		return fmt.Errorf("solver: problem has no linearizer")
	}
	if p.Cost == nil {
		return fmt.Errorf("solver: problem has no cost function")
	}
	if p.Horizon <= 0 {
		return fmt.Errorf("solver: horizon must be positive, got %g", p.Horizon)
	}
	if len(p.X0) != p.Dynamics.StateDim() {
		return fmt.Errorf("%w: x0 has %d entries for %d states", dynamo.ErrDimensionMismatch, len(p.X0), p.Dynamics.StateDim())
	}
	return nil
}

// Settings configures one solve. Dt and Scheme feed the sensitivity layer;
// Substeps is the number of integrator substeps per nominal step;
// MaxIterations bounds the prepare/finish loop; Tolerance is forwarded to
// the backend as its convergence threshold.
type Settings struct {
	Dt            float64
	Scheme        sensitivity.Scheme
	Substeps      int
	MaxIterations int
	Tolerance     float64
}

func DefaultSettings() Settings {
	return Settings{
		Dt:            0.01,
		Scheme:        sensitivity.ForwardEuler,
		Substeps:      1,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

func (s Settings) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("solver: dt must be positive, got %g", s.Dt)
	}
	if s.Substeps < 1 {
		return fmt.Errorf("solver: substeps must be >= 1, got %d", s.Substeps)
	}
	if s.MaxIterations < 1 {
		return fmt.Errorf("solver: max iterations must be >= 1, got %d", s.MaxIterations)
	}
	if s.Tolerance <= 0 {
		return fmt.Errorf("solver: tolerance must be positive, got %g", s.Tolerance)
	}
	return sensitivity.Settings{Dt: s.Dt, Scheme: s.Scheme}.Validate()
}
