package physics

import (
	"math"
	"testing"

	"github.com/san-kum/trajopt/internal/dynamo"
)

func TestPendulumJacobiansMatchNumeric(t *testing.T) {
	p := NewPendulum()
	num := dynamo.NewNumJac(p)

	x := dynamo.State{0.7, -1.2}
	u := dynamo.Control{0.3}

	A, B := p.Jacobians(x, u, 0)
	An, Bn := num.Jacobians(x, u, 0)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(A.At(i, j)-An.At(i, j)) > 1e-5 {
				t.Errorf("A[%d][%d]: analytic %g vs numeric %g", i, j, A.At(i, j), An.At(i, j))
			}
		}
		if math.Abs(B.At(i, 0)-Bn.At(i, 0)) > 1e-5 {
			t.Errorf("B[%d]: analytic %g vs numeric %g", i, B.At(i, 0), Bn.At(i, 0))
		}
	}
}

func TestSpringMassJacobiansMatchNumeric(t *testing.T) {
	s := NewSpringMass()
	num := dynamo.NewNumJac(s)

	x := dynamo.State{1.5, -0.4}
	u := dynamo.Control{0.2}

	A, B := s.Jacobians(x, u, 0)
	An, Bn := num.Jacobians(x, u, 0)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(A.At(i, j)-An.At(i, j)) > 1e-5 {
				t.Errorf("A[%d][%d]: analytic %g vs numeric %g", i, j, A.At(i, j), An.At(i, j))
			}
		}
	}
	if math.Abs(B.At(1, 0)-Bn.At(1, 0)) > 1e-5 {
		t.Errorf("B[1]: analytic %g vs numeric %g", B.At(1, 0), Bn.At(1, 0))
	}
}

func TestCartPoleDerive(t *testing.T) {
	c := NewCartPole()
	dx := c.Derive(dynamo.State{0, 0, 0.1, 0}, dynamo.Control{0}, 0)
	if len(dx) != 4 {
		t.Fatalf("expected 4 derivatives, got %d", len(dx))
	}
	// gravity pulls the pole further over
	if dx[3] <= 0 {
		t.Errorf("theta acceleration should be positive for positive tilt, got %g", dx[3])
	}
}

func TestCartPoleJacobianShape(t *testing.T) {
	c := NewCartPole()
	A, B := c.Jacobians(dynamo.State{0, 0, 0.1, 0}, dynamo.Control{0}, 0)
	if r, cc := A.Dims(); r != 4 || cc != 4 {
		t.Errorf("A dims %dx%d, want 4x4", r, cc)
	}
	if r, cc := B.Dims(); r != 4 || cc != 1 {
		t.Errorf("B dims %dx%d, want 4x1", r, cc)
	}
	// position rate is velocity exactly
	if math.Abs(A.At(0, 1)-1.0) > 1e-5 {
		t.Errorf("A[0][1] = %g, want 1", A.At(0, 1))
	}
}

func TestLinearSystem(t *testing.T) {
	l := NewScalarLinear(-1, 1)
	dx := l.Derive(dynamo.State{2}, dynamo.Control{0.5}, 0)
	if math.Abs(dx[0]-(-1.5)) > 1e-12 {
		t.Errorf("derivative = %g, want -1.5", dx[0])
	}

	A, B := l.Jacobians(dynamo.State{2}, dynamo.Control{0.5}, 0)
	if A.At(0, 0) != -1 || B.At(0, 0) != 1 {
		t.Error("LTI Jacobians must be the system matrices")
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q): %v", name, err)
			continue
		}
		if m.System == nil || m.Linearizer == nil {
			t.Errorf("model %q incomplete", name)
		}
	}
	if _, err := ByName("nbody"); err == nil {
		t.Error("unknown model should error")
	}
}
