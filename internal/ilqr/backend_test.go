package ilqr

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/integrators"
	"github.com/san-kum/trajopt/internal/physics"
	"github.com/san-kum/trajopt/internal/sensitivity"
	"github.com/san-kum/trajopt/internal/solver"
)

func integratorProblem() *solver.Problem {
	sys := physics.NewDoubleIntegrator()
	q, _ := cost.NewDiagonal(
		[]float64{1, 0.1},
		[]float64{0.01},
		[]float64{100, 10},
		dynamo.State{1, 0},
	)
	return &solver.Problem{
		Dynamics:   sys,
		Linearizer: sys,
		Cost:       q,
		X0:         dynamo.State{0, 0},
		Horizon:    2.0,
	}
}

func integratorSettings() solver.Settings {
	s := solver.DefaultSettings()
	s.Dt = 0.02
	s.Scheme = sensitivity.MatrixExponential
	s.MaxIterations = 50
	s.Tolerance = 1e-8
	return s
}

func TestSolveDoubleIntegrator(t *testing.T) {
	bk := New(integrators.NewRK4())
	p := integratorProblem()
	c := solver.New(bk, p)
	if err := c.Configure(integratorSettings()); err != nil {
		t.Fatal(err)
	}

	if err := c.Solve(context.Background()); err != nil {
		t.Fatalf("solve: %v", err)
	}

	xs, err := c.GetStateTrajectory()
	if err != nil {
		t.Fatal(err)
	}
	final := xs[len(xs)-1]
	if math.Abs(final[0]-1.0) > 0.05 {
		t.Errorf("final position %g, want near 1", final[0])
	}
	if math.Abs(final[1]) > 0.2 {
		t.Errorf("final velocity %g, want near 0", final[1])
	}

	j, err := c.GetCost()
	if err != nil {
		t.Fatal(err)
	}
	if j <= 0 || math.IsNaN(j) {
		t.Errorf("cost = %g, want positive finite", j)
	}
}

func TestIterateReducesCost(t *testing.T) {
	bk := New(integrators.NewRK4())
	c := solver.New(bk, integratorProblem())
	if err := c.Configure(integratorSettings()); err != nil {
		t.Fatal(err)
	}

	if _, err := c.RunIteration(); err != nil {
		t.Fatal(err)
	}
	first, _ := c.GetCost()

	if _, err := c.RunIteration(); err != nil {
		t.Fatal(err)
	}
	second, _ := c.GetCost()

	if second > first {
		t.Errorf("cost rose from %g to %g", first, second)
	}
}

func TestIterateWithoutLinearization(t *testing.T) {
	bk := New(integrators.NewRK4())
	p := integratorProblem()
	if err := bk.Configure(integratorSettings(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := bk.ReferenceTrajectory(); err != nil {
		t.Fatal(err)
	}
	if _, err := bk.Iterate(); !errors.Is(err, ErrNoLinearization) {
		t.Errorf("expected ErrNoLinearization, got %v", err)
	}
}

func TestUnconfiguredBackend(t *testing.T) {
	bk := New(integrators.NewRK4())
	if _, err := bk.ReferenceTrajectory(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := bk.Iterate(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestInitialGuessHonored(t *testing.T) {
	bk := New(integrators.NewRK4())
	p := integratorProblem()
	s := integratorSettings()
	if err := bk.Configure(s, p); err != nil {
		t.Fatal(err)
	}

	steps := int(math.Round(p.Horizon / s.Dt))
	guess := dynamo.NewOpenLoop(steps, 2, 1, s.Dt)
	for k := range guess.Feedforward {
		guess.Feedforward[k][0] = 0.5
	}
	if err := bk.SetInitialGuess(guess); err != nil {
		t.Fatal(err)
	}

	tr, err := bk.ReferenceTrajectory()
	if err != nil {
		t.Fatal(err)
	}
	// constant thrust must move the cart off the origin immediately
	if tr.States[steps/2][0] <= 0 {
		t.Error("initial guess feedforward was not applied to the rollout")
	}
	if tr.Controls[0][0] != 0.5 {
		t.Errorf("rollout control %g, want guess value 0.5", tr.Controls[0][0])
	}
}

func TestInitialGuessShapeChecked(t *testing.T) {
	bk := New(integrators.NewRK4())
	if err := bk.Configure(integratorSettings(), integratorProblem()); err != nil {
		t.Fatal(err)
	}
	wrong := dynamo.NewOpenLoop(3, 2, 1, 0.02)
	if err := bk.SetInitialGuess(wrong); !errors.Is(err, ErrGuessShape) {
		t.Errorf("expected ErrGuessShape, got %v", err)
	}
}

func TestChangeInitialStateRefreshesRollout(t *testing.T) {
	bk := New(integrators.NewRK4())
	c := solver.New(bk, integratorProblem())
	if err := c.Configure(integratorSettings()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RunIteration(); err != nil {
		t.Fatal(err)
	}

	if err := c.ChangeInitialState(dynamo.State{-1, 0}); err != nil {
		t.Fatal(err)
	}
	tr, err := bk.ReferenceTrajectory()
	if err != nil {
		t.Fatal(err)
	}
	if tr.States[0][0] != -1 {
		t.Errorf("rollout starts at %g, want -1", tr.States[0][0])
	}
}

func TestChangeTimeHorizonResizes(t *testing.T) {
	bk := New(integrators.NewRK4())
	s := integratorSettings()
	if err := bk.Configure(s, integratorProblem()); err != nil {
		t.Fatal(err)
	}
	if err := bk.ChangeTimeHorizon(1.0); err != nil {
		t.Fatal(err)
	}
	tr, err := bk.ReferenceTrajectory()
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.Round(1.0 / s.Dt))
	if tr.Steps() != want {
		t.Errorf("trajectory has %d steps, want %d", tr.Steps(), want)
	}
	if bk.TimeHorizon() != 1.0 {
		t.Errorf("horizon = %g, want 1", bk.TimeHorizon())
	}
}

func TestPendulumSwingDown(t *testing.T) {
	// damped pendulum from a small angle to hanging rest
	pend := physics.NewPendulum()
	q, _ := cost.NewDiagonal(
		[]float64{10, 1},
		[]float64{0.1},
		[]float64{100, 10},
		dynamo.State{0, 0},
	)
	p := &solver.Problem{
		Dynamics:   pend,
		Linearizer: pend,
		Cost:       q,
		X0:         dynamo.State{0.6, 0},
		Horizon:    3.0,
	}
	s := solver.DefaultSettings()
	s.Dt = 0.02
	s.Scheme = sensitivity.Tustin
	s.MaxIterations = 80
	s.Tolerance = 1e-7

	bk := New(integrators.NewRK4())
	c := solver.New(bk, p)
	if err := c.Configure(s); err != nil {
		t.Fatal(err)
	}
	if err := c.Solve(context.Background()); err != nil {
		t.Fatalf("solve: %v", err)
	}

	xs, _ := c.GetStateTrajectory()
	final := xs[len(xs)-1]
	if math.Abs(final[0]) > 0.1 {
		t.Errorf("final angle %g, want near 0", final[0])
	}

	// optimized cost must beat the uncontrolled rollout cost
	hist := bk.CostHistory()
	if len(hist) == 0 {
		t.Fatal("no accepted passes recorded")
	}
	for i := 1; i < len(hist); i++ {
		if hist[i] > hist[i-1]+1e-12 {
			t.Errorf("cost history not monotone at %d: %g -> %g", i, hist[i-1], hist[i])
		}
	}
}

func TestSubstepSolve(t *testing.T) {
	bk := New(integrators.NewRK4())
	p := integratorProblem()
	s := integratorSettings()
	s.Substeps = 4
	c := solver.New(bk, p)
	if err := c.Configure(s); err != nil {
		t.Fatal(err)
	}
	if err := c.Solve(context.Background()); err != nil {
		t.Fatalf("substep solve: %v", err)
	}
	xs, _ := c.GetStateTrajectory()
	final := xs[len(xs)-1]
	if math.Abs(final[0]-1.0) > 0.05 {
		t.Errorf("final position %g, want near 1", final[0])
	}
}
