package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/physics"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(dynamo.State{0}, dynamo.Control{2}, 0)
	m.Observe(dynamo.State{0}, dynamo.Control{-4}, 0.01)
	if m.Value() != 3 {
		t.Errorf("effort = %g, want 3", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestEnergyDriftConstant(t *testing.T) {
	pend := physics.NewPendulum()
	m := NewEnergyDrift(pend)

	x := dynamo.State{math.Pi / 4, 0}
	m.Observe(x, dynamo.Control{0}, 0)
	m.Observe(x, dynamo.Control{0}, 0.01)
	if m.Value() != 0 {
		t.Errorf("constant state must show zero drift, got %g", m.Value())
	}
}

func TestEnergyDriftGrows(t *testing.T) {
	pend := physics.NewPendulum()
	m := NewEnergyDrift(pend)

	m.Observe(dynamo.State{0.5, 0}, dynamo.Control{0}, 0)
	m.Observe(dynamo.State{1.0, 0}, dynamo.Control{0}, 0.01)
	if m.Value() <= 0 {
		t.Error("expected positive drift for changed energy")
	}
}

func TestGoalError(t *testing.T) {
	m := NewGoalError(dynamo.State{1, 0})
	m.Observe(dynamo.State{0, 0}, dynamo.Control{0}, 0)
	m.Observe(dynamo.State{1, 0.3}, dynamo.Control{0}, 0.01)
	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("goal error = %g, want 0.3 (last state only)", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1.0)
	m.Observe(dynamo.State{0.5}, dynamo.Control{0}, 0)
	m.Observe(dynamo.State{2.0}, dynamo.Control{0}, 0.01)
	if m.Value() != 0.5 {
		t.Errorf("stability = %g, want 0.5", m.Value())
	}
}

func TestEvaluateTrajectory(t *testing.T) {
	tr := dynamo.NewTrajectory(2, 1, 1, 0.1)
	tr.States[0] = dynamo.State{0}
	tr.States[1] = dynamo.State{1}
	tr.States[2] = dynamo.State{2}
	tr.Controls[0] = dynamo.Control{1}
	tr.Controls[1] = dynamo.Control{1}

	effort := NewControlEffort()
	goal := NewGoalError(dynamo.State{2})
	EvaluateTrajectory(tr, effort, goal)

	// two control samples plus the zero-padded terminal one
	if math.Abs(effort.Value()-2.0/3.0) > 1e-12 {
		t.Errorf("effort = %g, want 2/3", effort.Value())
	}
	if goal.Value() != 0 {
		t.Errorf("goal error = %g, want 0", goal.Value())
	}
}
