package integrators

import "github.com/san-kum/trajopt/internal/dynamo"

// Midpoint is the two-stage explicit midpoint method.
type Midpoint struct {
	scratch dynamo.State
}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) ensureScratch(n int) {
	if len(m.scratch) != n {
		m.scratch = make(dynamo.State, n)
	}
}

func (m *Midpoint) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	m.ensureScratch(n)

	k1 := dyn.Derive(x, u, t)
	for i := 0; i < n; i++ {
		m.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := dyn.Derive(m.scratch, u, t+dt*0.5)

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*k2[i]
	}
	return result
}

func (m *Midpoint) SubStep(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, k int) (dynamo.State, []dynamo.State, []dynamo.Control) {
	return record(func(x dynamo.State, u dynamo.Control, t, h float64) dynamo.State {
		return m.Step(dyn, x, u, t, h)
	}, x, u, t, dt, k)
}
