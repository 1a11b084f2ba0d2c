package sensitivity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// discretizer converts one continuous-time linearization (Ac, Bc) into the
// discrete transition pair (A, B) for a step of length dt. Implementations
// write into the caller-provided A (n x n) and B (n x m).
type discretizer interface {
	discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error
}

// forScheme is the single dispatch point from scheme kind to formula.
func forScheme(s Scheme) (discretizer, error) {
	switch s {
	case ForwardEuler:
		return forwardEuler{}, nil
	case BackwardEuler:
		return backwardEuler{}, nil
	case SymplecticEuler:
		return symplecticEuler{}, nil
	case Tustin:
		return tustin{}, nil
	case MatrixExponential:
		return matrixExponential{}, nil
	default:
		return nil, fmt.Errorf("sensitivity: unknown scheme %d", int(s))
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// A = I + dt*Ac, B = dt*Bc
type forwardEuler struct{}

func (forwardEuler) discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error {
	n, _ := Ac.Dims()
	A.Scale(dt, Ac)
	for i := 0; i < n; i++ {
		A.Set(i, i, A.At(i, i)+1)
	}
	B.Scale(dt, Bc)
	return nil
}

// A = (I - dt*Ac)^-1, B = dt*A*Bc
type backwardEuler struct{}

func (backwardEuler) discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error {
	n, _ := Ac.Dims()
	var m mat.Dense
	m.Scale(-dt, Ac)
	m.Add(&m, eye(n))
	var inv mat.Dense
	if err := inv.Inverse(&m); err != nil {
		return fmt.Errorf("%w (backward euler): %v", ErrSingularDiscretization, err)
	}
	A.Copy(&inv)
	B.Mul(&inv, Bc)
	B.Scale(dt, B)
	return nil
}

// A = (I - dt/2*Ac)^-1 (I + dt/2*Ac), B = (I - dt/2*Ac)^-1 * dt * Bc
type tustin struct{}

func (tustin) discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error {
	n, _ := Ac.Dims()
	id := eye(n)

	var minus mat.Dense
	minus.Scale(-dt/2, Ac)
	minus.Add(&minus, id)

	var inv mat.Dense
	if err := inv.Inverse(&minus); err != nil {
		return fmt.Errorf("%w (tustin): %v", ErrSingularDiscretization, err)
	}

	var plus mat.Dense
	plus.Scale(dt/2, Ac)
	plus.Add(&plus, id)

	A.Mul(&inv, &plus)
	B.Mul(&inv, Bc)
	B.Scale(dt, B)
	return nil
}

// Semi-implicit Euler over equal position/velocity partitions of the state:
// the velocity half is stepped explicitly, the position half uses the updated
// velocity. For x = (p, v) and Ac split into n/2 blocks A11..A22:
//
//	A = | I + dt*A11 + dt^2*A12*A21   dt*A12 + dt^2*A12*A22 |
//	    | dt*A21                      I + dt*A22            |
//	B = | dt*B1 + dt^2*A12*B2 |
//	    | dt*B2               |
type symplecticEuler struct{}

func (symplecticEuler) discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error {
	n, _ := Ac.Dims()
	if n%2 != 0 {
		return fmt.Errorf("%w: state dim %d", ErrOddStateDim, n)
	}
	h := n / 2
	_, m := Bc.Dims()

	a11 := Ac.Slice(0, h, 0, h)
	a12 := Ac.Slice(0, h, h, n)
	a21 := Ac.Slice(h, n, 0, h)
	a22 := Ac.Slice(h, n, h, n)
	b1 := Bc.Slice(0, h, 0, m)
	b2 := Bc.Slice(h, n, 0, m)

	dt2 := dt * dt
	idh := eye(h)

	// top-left: I + dt*A11 + dt^2*A12*A21
	var tl, tmp mat.Dense
	tmp.Mul(a12, a21)
	tmp.Scale(dt2, &tmp)
	tl.Scale(dt, a11)
	tl.Add(&tl, idh)
	tl.Add(&tl, &tmp)

	// top-right: dt*A12 + dt^2*A12*A22
	var tr mat.Dense
	tmp.Reset()
	tmp.Mul(a12, a22)
	tmp.Scale(dt2, &tmp)
	tr.Scale(dt, a12)
	tr.Add(&tr, &tmp)

	// bottom-left: dt*A21
	var bl mat.Dense
	bl.Scale(dt, a21)

	// bottom-right: I + dt*A22
	var br mat.Dense
	br.Scale(dt, a22)
	br.Add(&br, idh)

	for i := 0; i < h; i++ {
		for j := 0; j < h; j++ {
			A.Set(i, j, tl.At(i, j))
			A.Set(i, j+h, tr.At(i, j))
			A.Set(i+h, j, bl.At(i, j))
			A.Set(i+h, j+h, br.At(i, j))
		}
	}

	// top: dt*B1 + dt^2*A12*B2, bottom: dt*B2
	var bt mat.Dense
	tmp.Reset()
	tmp.Mul(a12, b2)
	tmp.Scale(dt2, &tmp)
	bt.Scale(dt, b1)
	bt.Add(&bt, &tmp)

	for i := 0; i < h; i++ {
		for j := 0; j < m; j++ {
			B.Set(i, j, bt.At(i, j))
			B.Set(i+h, j, dt*b2.At(i, j))
		}
	}
	return nil
}

// Exact discretization of the frozen linear system via the augmented-matrix
// exponential:
//
//	exp( | Ac Bc | * dt ) = | A  B |
//	     | 0  0  |          | 0  I |
type matrixExponential struct{}

func (matrixExponential) discretize(Ac, Bc *mat.Dense, dt float64, A, B *mat.Dense) error {
	n, _ := Ac.Dims()
	_, m := Bc.Dims()

	aug := mat.NewDense(n+m, n+m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug.Set(i, j, dt*Ac.At(i, j))
		}
		for j := 0; j < m; j++ {
			aug.Set(i, n+j, dt*Bc.At(i, j))
		}
	}

	var e mat.Dense
	e.Exp(aug)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			A.Set(i, j, e.At(i, j))
		}
		for j := 0; j < m; j++ {
			B.Set(i, j, e.At(i, n+j))
		}
	}
	return nil
}
