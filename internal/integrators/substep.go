package integrators

import "github.com/san-kum/trajopt/internal/dynamo"

// stepFunc advances one state by h starting at time t.
type stepFunc func(x dynamo.State, u dynamo.Control, t, h float64) dynamo.State

// record divides [t, t+dt] into k equal substeps, advancing with step and
// recording the state and control at the start of each substep. The control
// is held constant across the interval (zero-order hold).
func record(step stepFunc, x dynamo.State, u dynamo.Control, t, dt float64, k int) (dynamo.State, []dynamo.State, []dynamo.Control) {
	if k < 1 {
		k = 1
	}
	h := dt / float64(k)
	states := make([]dynamo.State, 0, k)
	controls := make([]dynamo.Control, 0, k)

	cur := x.Clone()
	for i := 0; i < k; i++ {
		states = append(states, cur.Clone())
		controls = append(controls, u.Clone())
		cur = step(cur, u, t+float64(i)*h, h)
	}
	return cur, states, controls
}
