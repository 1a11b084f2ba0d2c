package integrators

import "github.com/san-kum/trajopt/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

func (e *Euler) SubStep(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, k int) (dynamo.State, []dynamo.State, []dynamo.Control) {
	return record(func(x dynamo.State, u dynamo.Control, t, h float64) dynamo.State {
		return e.Step(dyn, x, u, t, h)
	}, x, u, t, dt, k)
}
