package dynamo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// System is a nonlinear dynamical system dX/dt = f(x, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Hamiltonian is implemented by systems with a well-defined total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Linearizer supplies the continuous-time Jacobians of a nonlinear system at
// a point on the reference trajectory:
//
//	Ac = df/dx (StateDim x StateDim)
//	Bc = df/du (StateDim x ControlDim)
//
// Implementations return freshly evaluated matrices on every call; nothing in
// the solver caches them.
type Linearizer interface {
	Jacobians(x State, u Control, t float64) (Ac, Bc *mat.Dense)
}

// DiscreteLinearizer produces the discrete-time transition matrices for the
// step from x (at index step) to xNext. numSubsteps is the number of
// integrator substeps taken across the nominal interval; results are written
// into the caller-provided A and B.
type DiscreteLinearizer interface {
	GetAandB(x State, u Control, xNext State, step, numSubsteps int, A, B *mat.Dense) error
}

// Stepper advances a nonlinear system by one nominal time step. SubStep
// divides the interval into k equal substeps and reports the state and
// control at the start of each, in order, for consumption by a
// substep-aware linearizer.
type Stepper interface {
	Step(dyn System, x State, u Control, t, dt float64) State
	SubStep(dyn System, x State, u Control, t, dt float64, k int) (State, []State, []Control)
}
