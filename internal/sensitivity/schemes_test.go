package sensitivity

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func scalarJac(ac, bc float64) (*mat.Dense, *mat.Dense) {
	return mat.NewDense(1, 1, []float64{ac}), mat.NewDense(1, 1, []float64{bc})
}

func discretizeWith(t *testing.T, s Scheme, Ac, Bc *mat.Dense, dt float64) (*mat.Dense, *mat.Dense) {
	t.Helper()
	d, err := forScheme(s)
	if err != nil {
		t.Fatalf("forScheme(%v): %v", s, err)
	}
	n, _ := Ac.Dims()
	_, m := Bc.Dims()
	A := mat.NewDense(n, n, nil)
	B := mat.NewDense(n, m, nil)
	if err := d.discretize(Ac, Bc, dt, A, B); err != nil {
		t.Fatalf("discretize: %v", err)
	}
	return A, B
}

func TestForwardEulerScalar(t *testing.T) {
	Ac, Bc := scalarJac(-1, 1)
	A, B := discretizeWith(t, ForwardEuler, Ac, Bc, 0.01)
	if math.Abs(A.At(0, 0)-0.99) > 1e-12 {
		t.Errorf("A = %g, want 0.99", A.At(0, 0))
	}
	if math.Abs(B.At(0, 0)-0.01) > 1e-12 {
		t.Errorf("B = %g, want 0.01", B.At(0, 0))
	}
}

func TestBackwardEulerFixedPoint(t *testing.T) {
	// (I - dt*Ac) * A_d must be the identity
	Ac := mat.NewDense(2, 2, []float64{0, 1, -4, -0.4})
	Bc := mat.NewDense(2, 1, []float64{0, 1})
	dt := 0.05
	A, B := discretizeWith(t, BackwardEuler, Ac, Bc, dt)

	var m mat.Dense
	m.Scale(-dt, Ac)
	m.Add(&m, eye(2))

	var prod mat.Dense
	prod.Mul(&m, A)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > 1e-12 {
				t.Errorf("(I-dt*Ac)*A at (%d,%d) = %g, want %g", i, j, prod.At(i, j), want)
			}
		}
	}

	// B = dt * A_d * Bc
	var wantB mat.Dense
	wantB.Mul(A, Bc)
	wantB.Scale(dt, &wantB)
	for i := 0; i < 2; i++ {
		if math.Abs(B.At(i, 0)-wantB.At(i, 0)) > 1e-12 {
			t.Errorf("B[%d] = %g, want %g", i, B.At(i, 0), wantB.At(i, 0))
		}
	}
}

func TestTustinDefiningRelation(t *testing.T) {
	// (I - dt/2*Ac) * A_d = (I + dt/2*Ac)
	Ac := mat.NewDense(2, 2, []float64{0, 1, -9, -0.2})
	Bc := mat.NewDense(2, 1, []float64{0, 1})
	dt := 0.02
	A, _ := discretizeWith(t, Tustin, Ac, Bc, dt)

	id := eye(2)
	var minus, plus, prod mat.Dense
	minus.Scale(-dt/2, Ac)
	minus.Add(&minus, id)
	plus.Scale(dt/2, Ac)
	plus.Add(&plus, id)
	prod.Mul(&minus, A)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(prod.At(i, j)-plus.At(i, j)) > 1e-12 {
				t.Errorf("relation violated at (%d,%d): %g vs %g", i, j, prod.At(i, j), plus.At(i, j))
			}
		}
	}
}

func TestMatrixExponentialScalar(t *testing.T) {
	Ac, Bc := scalarJac(-1, 1)
	dt := 0.01
	A, B := discretizeWith(t, MatrixExponential, Ac, Bc, dt)
	if math.Abs(A.At(0, 0)-math.Exp(-dt)) > 1e-12 {
		t.Errorf("A = %g, want exp(-dt) = %g", A.At(0, 0), math.Exp(-dt))
	}
	// integral of exp(-s) over [0,dt] is 1 - exp(-dt)
	if math.Abs(B.At(0, 0)-(1-math.Exp(-dt))) > 1e-12 {
		t.Errorf("B = %g, want %g", B.At(0, 0), 1-math.Exp(-dt))
	}
}

func TestMatrixExponentialFirstOrderLimit(t *testing.T) {
	// A_exp = I + dt*Ac + O(dt^2) as dt -> 0
	Ac := mat.NewDense(2, 2, []float64{0, 1, -2, -0.3})
	Bc := mat.NewDense(2, 1, []float64{0, 1})

	for _, dt := range []float64{1e-2, 1e-3, 1e-4} {
		A, _ := discretizeWith(t, MatrixExponential, Ac, Bc, dt)
		var fo mat.Dense
		fo.Scale(dt, Ac)
		fo.Add(&fo, eye(2))

		var diff mat.Dense
		diff.Sub(A, &fo)
		if n := mat.Norm(&diff, 2); n > 10*dt*dt {
			t.Errorf("dt=%g: |A_exp - (I+dt*Ac)| = %g exceeds O(dt^2) bound %g", dt, n, 10*dt*dt)
		}
	}
}

func TestMatrixExponentialComposition(t *testing.T) {
	// N single steps of dt compose to one step of N*dt
	Ac := mat.NewDense(2, 2, []float64{0, 1, -1, -0.1})
	Bc := mat.NewDense(2, 1, []float64{0, 1})
	dt := 0.05
	const N = 8

	A1, B1 := discretizeWith(t, MatrixExponential, Ac, Bc, dt)

	accA := eye(2)
	accB := mat.NewDense(2, 1, nil)
	var tmp mat.Dense
	for i := 0; i < N; i++ {
		tmp.Mul(A1, accA)
		accA.Copy(&tmp)
		tmp.Reset()
		tmp.Mul(A1, accB)
		tmp.Add(&tmp, B1)
		accB.Copy(&tmp)
		tmp.Reset()
	}

	AN, BN := discretizeWith(t, MatrixExponential, Ac, Bc, float64(N)*dt)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(accA.At(i, j)-AN.At(i, j)) > 1e-10 {
				t.Errorf("A composition (%d,%d): %g vs %g", i, j, accA.At(i, j), AN.At(i, j))
			}
		}
		if math.Abs(accB.At(i, 0)-BN.At(i, 0)) > 1e-10 {
			t.Errorf("B composition [%d]: %g vs %g", i, accB.At(i, 0), BN.At(i, 0))
		}
	}
}

func TestSymplecticEulerMatchesMap(t *testing.T) {
	// spring-damper: p' = v, v' = -k*p - c*v + u
	k, c := 4.0, 0.4
	Ac := mat.NewDense(2, 2, []float64{0, 1, -k, -c})
	Bc := mat.NewDense(2, 1, []float64{0, 1})
	dt := 0.01
	A, B := discretizeWith(t, SymplecticEuler, Ac, Bc, dt)

	p, v, u := 0.7, -0.3, 0.5
	// velocity first, position with updated velocity
	vNext := v + dt*(-k*p-c*v+u)
	pNext := p + dt*vNext

	gotP := A.At(0, 0)*p + A.At(0, 1)*v + B.At(0, 0)*u
	gotV := A.At(1, 0)*p + A.At(1, 1)*v + B.At(1, 0)*u

	if math.Abs(gotP-pNext) > 1e-12 {
		t.Errorf("position map: %g, want %g", gotP, pNext)
	}
	if math.Abs(gotV-vNext) > 1e-12 {
		t.Errorf("velocity map: %g, want %g", gotV, vNext)
	}
}

func TestSymplecticEulerOddDim(t *testing.T) {
	Ac := mat.NewDense(3, 3, nil)
	Bc := mat.NewDense(3, 1, nil)
	d, _ := forScheme(SymplecticEuler)
	err := d.discretize(Ac, Bc, 0.01, mat.NewDense(3, 3, nil), mat.NewDense(3, 1, nil))
	if !errors.Is(err, ErrOddStateDim) {
		t.Errorf("expected ErrOddStateDim, got %v", err)
	}
}

func TestBackwardEulerSingular(t *testing.T) {
	// I - dt*Ac is exactly zero when Ac = I/dt
	dt := 0.1
	Ac := mat.NewDense(2, 2, []float64{1 / dt, 0, 0, 1 / dt})
	Bc := mat.NewDense(2, 1, []float64{0, 1})
	d, _ := forScheme(BackwardEuler)
	err := d.discretize(Ac, Bc, dt, mat.NewDense(2, 2, nil), mat.NewDense(2, 1, nil))
	if !errors.Is(err, ErrSingularDiscretization) {
		t.Errorf("expected ErrSingularDiscretization, got %v", err)
	}
}

func TestParseScheme(t *testing.T) {
	cases := map[string]Scheme{
		"forward_euler":      ForwardEuler,
		"backward_euler":     BackwardEuler,
		"symplectic":         SymplecticEuler,
		"tustin":             Tustin,
		"matrix_exponential": MatrixExponential,
		"exp":                MatrixExponential,
	}
	for name, want := range cases {
		got, err := ParseScheme(name)
		if err != nil || got != want {
			t.Errorf("ParseScheme(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseScheme("rk4"); err == nil {
		t.Error("unknown scheme name should error")
	}
}
