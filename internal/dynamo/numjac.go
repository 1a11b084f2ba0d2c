package dynamo

import "gonum.org/v1/gonum/mat"

// NumJac approximates continuous-time Jacobians of a System by central
// differences. It serves systems without analytic derivatives.
type NumJac struct {
	dyn System
	eps float64
}

const defaultJacEps = 1e-6

func NewNumJac(dyn System) *NumJac {
	return &NumJac{dyn: dyn, eps: defaultJacEps}
}

// NewNumJacEps uses a caller-chosen perturbation size.
func NewNumJacEps(dyn System, eps float64) *NumJac {
	if eps <= 0 {
		eps = defaultJacEps
	}
	return &NumJac{dyn: dyn, eps: eps}
}

func (j *NumJac) Jacobians(x State, u Control, t float64) (*mat.Dense, *mat.Dense) {
	n := j.dyn.StateDim()
	m := j.dyn.ControlDim()

	Ac := mat.NewDense(n, n, nil)
	for col := 0; col < n; col++ {
		hi := x.Clone()
		lo := x.Clone()
		hi[col] += j.eps
		lo[col] -= j.eps
		fHi := j.dyn.Derive(hi, u, t)
		fLo := j.dyn.Derive(lo, u, t)
		for row := 0; row < n; row++ {
			Ac.Set(row, col, (fHi[row]-fLo[row])/(2*j.eps))
		}
	}

	Bc := mat.NewDense(n, m, nil)
	for col := 0; col < m; col++ {
		hi := u.Clone()
		lo := u.Clone()
		hi[col] += j.eps
		lo[col] -= j.eps
		fHi := j.dyn.Derive(x, hi, t)
		fLo := j.dyn.Derive(x, lo, t)
		for row := 0; row < n; row++ {
			Bc.Set(row, col, (fHi[row]-fLo[row])/(2*j.eps))
		}
	}

	return Ac, Bc
}
