package dynamo

// Trajectory holds index-aligned state, control, and time sequences over a
// finite horizon: len(States) == len(Controls)+1 == len(Times).
type Trajectory struct {
	States   []State
	Controls []Control
	Times    []float64
}

// NewTrajectory allocates a trajectory for steps horizon steps with the
// given dimensions, all entries zero and times spaced dt apart.
func NewTrajectory(steps, stateDim, controlDim int, dt float64) *Trajectory {
	tr := &Trajectory{
		States:   make([]State, steps+1),
		Controls: make([]Control, steps),
		Times:    make([]float64, steps+1),
	}
	for i := range tr.States {
		tr.States[i] = make(State, stateDim)
		tr.Times[i] = float64(i) * dt
	}
	for i := range tr.Controls {
		tr.Controls[i] = make(Control, controlDim)
	}
	return tr
}

// Steps returns the number of control intervals.
func (tr *Trajectory) Steps() int {
	return len(tr.Controls)
}

func (tr *Trajectory) Validate() error {
	if len(tr.States) == 0 {
		return ErrEmptyTrajectory
	}
	if len(tr.States) != len(tr.Controls)+1 || len(tr.States) != len(tr.Times) {
		return ErrMisalignedTrajectory
	}
	for i := 1; i < len(tr.Times); i++ {
		if tr.Times[i] < tr.Times[i-1] {
			return ErrNonMonotonicTime
		}
	}
	for _, x := range tr.States {
		if !x.IsValid() {
			return ErrInvalidState
		}
	}
	return nil
}

func (tr *Trajectory) Clone() *Trajectory {
	c := &Trajectory{
		States:   make([]State, len(tr.States)),
		Controls: make([]Control, len(tr.Controls)),
		Times:    make([]float64, len(tr.Times)),
	}
	for i, x := range tr.States {
		c.States[i] = x.Clone()
	}
	for i, u := range tr.Controls {
		c.Controls[i] = u.Clone()
	}
	copy(c.Times, tr.Times)
	return c
}
