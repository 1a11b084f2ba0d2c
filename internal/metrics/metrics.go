// Package metrics scores solved trajectories: control effort, goal error,
// energy drift, state bounds. Each metric is a streaming observer so the
// CLI can walk a trajectory once and report all of them.
package metrics

import (
	"github.com/san-kum/trajopt/internal/dynamo"
)

type Metric interface {
	Name() string
	Observe(x dynamo.State, u dynamo.Control, t float64)
	Value() float64
	Reset()
}

// EvaluateTrajectory feeds every step of tr to each metric. The terminal
// state is observed with a zero control.
func EvaluateTrajectory(tr *dynamo.Trajectory, ms ...Metric) {
	if tr == nil || len(tr.States) == 0 {
		return
	}
	for k := 0; k < tr.Steps(); k++ {
		for _, m := range ms {
			m.Observe(tr.States[k], tr.Controls[k], tr.Times[k])
		}
	}
	last := len(tr.States) - 1
	var controlDim int
	if len(tr.Controls) > 0 {
		controlDim = len(tr.Controls[0])
	}
	zero := make(dynamo.Control, controlDim)
	for _, m := range ms {
		m.Observe(tr.States[last], zero, tr.Times[last])
	}
}
