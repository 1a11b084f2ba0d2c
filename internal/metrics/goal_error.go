package metrics

import (
	"github.com/san-kum/trajopt/internal/dynamo"
)

// GoalError reports the distance of the last observed state from the goal.
type GoalError struct {
	name string
	goal dynamo.State
	last dynamo.State
	seen bool
}

func NewGoalError(goal dynamo.State) *GoalError {
	return &GoalError{
		name: "goal_error",
		goal: goal.Clone(),
	}
}

func (g *GoalError) Name() string { return g.name }

func (g *GoalError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	g.last = x.Clone()
	g.seen = true
}

func (g *GoalError) Value() float64 {
	if !g.seen || len(g.last) != len(g.goal) {
		return 0
	}
	return g.last.Sub(g.goal).Norm()
}

func (g *GoalError) Reset() {
	g.last = nil
	g.seen = false
}
