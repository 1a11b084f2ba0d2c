package dynamo

import "gonum.org/v1/gonum/mat"

// Policy is a time-varying affine control law around a reference trajectory:
//
//	u(x, k) = Feedforward[k] + Gains[k] * (x - Reference[k])
//
// Gains may be nil for a purely open-loop policy.
type Policy struct {
	Feedforward []Control
	Gains       []*mat.Dense
	Reference   []State
	Dt          float64
}

// NewOpenLoop builds a zero feedforward policy with no feedback, suitable as
// a trivial initial guess.
func NewOpenLoop(steps, stateDim, controlDim int, dt float64) *Policy {
	p := &Policy{
		Feedforward: make([]Control, steps),
		Reference:   make([]State, steps),
		Dt:          dt,
	}
	for i := range p.Feedforward {
		p.Feedforward[i] = make(Control, controlDim)
		p.Reference[i] = make(State, stateDim)
	}
	return p
}

// Steps returns the number of control intervals the policy covers.
func (p *Policy) Steps() int {
	return len(p.Feedforward)
}

// Control evaluates the policy at state x and step index k. Indices outside
// the horizon clamp to the last interval.
func (p *Policy) Control(x State, k int) Control {
	if len(p.Feedforward) == 0 {
		return nil
	}
	if k >= len(p.Feedforward) {
		k = len(p.Feedforward) - 1
	}
	u := p.Feedforward[k].Clone()
	if p.Gains == nil || k >= len(p.Gains) || p.Gains[k] == nil {
		return u
	}
	dx := x.Sub(p.Reference[k])
	K := p.Gains[k]
	rows, cols := K.Dims()
	for i := 0; i < rows && i < len(u); i++ {
		for j := 0; j < cols && j < len(dx); j++ {
			u[i] += K.At(i, j) * dx[j]
		}
	}
	return u
}

func (p *Policy) Clone() *Policy {
	c := &Policy{
		Feedforward: make([]Control, len(p.Feedforward)),
		Reference:   make([]State, len(p.Reference)),
		Dt:          p.Dt,
	}
	for i, u := range p.Feedforward {
		c.Feedforward[i] = u.Clone()
	}
	for i, x := range p.Reference {
		c.Reference[i] = x.Clone()
	}
	if p.Gains != nil {
		c.Gains = make([]*mat.Dense, len(p.Gains))
		for i, K := range p.Gains {
			if K != nil {
				c.Gains[i] = mat.DenseCopyOf(K)
			}
		}
	}
	return c
}
