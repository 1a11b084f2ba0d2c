package physics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a single damped mass on a spring with a force input:
//
//	p' = v
//	v' = (-k p - c v + u) / m
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (s *SpringMass) StateDim() int {
	return 2
}

func (s *SpringMass) ControlDim() int {
	return 1
}

func (s *SpringMass) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}
	acc := (-s.Stiffness*x[0] - s.Damping*x[1] + force) / s.Mass
	return dynamo.State{x[1], acc}
}

func (s *SpringMass) Jacobians(x dynamo.State, u dynamo.Control, t float64) (*mat.Dense, *mat.Dense) {
	A := mat.NewDense(2, 2, []float64{
		0, 1,
		-s.Stiffness / s.Mass, -s.Damping / s.Mass,
	})
	B := mat.NewDense(2, 1, []float64{0, 1 / s.Mass})
	return A, B
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	ke := 0.5 * s.Mass * x[1] * x[1]
	pe := 0.5 * s.Stiffness * x[0] * x[0]
	return ke + pe
}
