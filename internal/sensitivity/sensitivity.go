// Package sensitivity turns continuous-time linearizations of a nonlinear
// system into discrete-time transition matrices, consistent with the
// discretization scheme and with the substeps the trajectory integrator
// actually took.
package sensitivity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/dynamo"
)

// Approximation computes per-step discrete (A, B) pairs for a nonlinear
// system along a reference trajectory. It implements
// [dynamo.DiscreteLinearizer].
//
// The substep trajectory reference is borrowed: the registering caller owns
// the storage and must refresh it before every linearization pass that uses
// it.
type Approximation struct {
	lin      dynamo.Linearizer
	settings Settings
	disc     discretizer

	xSub [][]dynamo.State
	uSub [][]dynamo.Control
}

// New builds an approximation for the given Jacobian provider and settings.
func New(lin dynamo.Linearizer, settings Settings) (*Approximation, error) {
	if lin == nil {
		return nil, ErrNilLinearSystem
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	disc, err := forScheme(settings.Scheme)
	if err != nil {
		return nil, err
	}
	return &Approximation{lin: lin, settings: settings, disc: disc}, nil
}

// SetLinearSystem installs the continuous-time Jacobian provider.
func (a *Approximation) SetLinearSystem(lin dynamo.Linearizer) error {
	if lin == nil {
		return ErrNilLinearSystem
	}
	a.lin = lin
	return nil
}

// SetTimeDiscretization updates the step size used by subsequent
// discretizations.
func (a *Approximation) SetTimeDiscretization(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: dt = %g", ErrInvalidTimestep, dt)
	}
	a.settings.Dt = dt
	return nil
}

// SetApproximation switches the discretization scheme in place.
func (a *Approximation) SetApproximation(s Scheme) error {
	disc, err := forScheme(s)
	if err != nil {
		return err
	}
	a.settings.Scheme = s
	a.disc = disc
	return nil
}

// Settings returns the current discretization settings.
func (a *Approximation) Settings() Settings {
	return a.settings
}

// SetSubstepTrajectoryReference registers borrowed references to the
// per-step substep sequences recorded by the trajectory integrator, indexed
// [step][substep]. Must precede any GetAandB call with numSubsteps > 1.
func (a *Approximation) SetSubstepTrajectoryReference(x [][]dynamo.State, u [][]dynamo.Control) {
	a.xSub = x
	a.uSub = u
}

// Clone is unsupported on the generic approximation; concrete scheme
// variants carry state the generic layer cannot reproduce.
func (a *Approximation) Clone() (*Approximation, error) {
	return nil, ErrCloneNotImplemented
}

// GetAandB computes the discrete transition pair for the interval from x at
// index step to xNext, writing into the caller-provided A (n x n) and
// B (n x m). With numSubsteps > 1 the configured scheme is applied per
// registered substep and composed across the interval, reproducing the map
// the multi-stage integrator realized.
func (a *Approximation) GetAandB(x dynamo.State, u dynamo.Control, xNext dynamo.State, step, numSubsteps int, A, B *mat.Dense) error {
	if a.lin == nil {
		return ErrNilLinearSystem
	}
	dt := a.settings.Dt
	t := float64(step) * dt

	if numSubsteps <= 1 {
		Ac, Bc := a.lin.Jacobians(x, u, t)
		if err := a.checkDims(Ac, Bc, A, B); err != nil {
			return err
		}
		return a.disc.discretize(Ac, Bc, dt, A, B)
	}

	if a.xSub == nil || a.uSub == nil {
		return fmt.Errorf("%w: step %d needs %d substeps", ErrNoSubstepReference, step, numSubsteps)
	}
	if step >= len(a.xSub) || step >= len(a.uSub) ||
		len(a.xSub[step]) < numSubsteps || len(a.uSub[step]) < numSubsteps {
		return fmt.Errorf("%w: step %d has no record of %d substeps", ErrNoSubstepReference, step, numSubsteps)
	}

	h := dt / float64(numSubsteps)
	n, _ := A.Dims()
	_, m := B.Dims()

	// A <- Ai*A, B <- Ai*B + Bi across substeps
	acc := eye(n)
	bcc := mat.NewDense(n, m, nil)
	Ai := mat.NewDense(n, n, nil)
	Bi := mat.NewDense(n, m, nil)
	var tmpA, tmpB mat.Dense

	for i := 0; i < numSubsteps; i++ {
		xi := a.xSub[step][i]
		ui := a.uSub[step][i]
		Ac, Bc := a.lin.Jacobians(xi, ui, t+float64(i)*h)
		if err := a.checkDims(Ac, Bc, A, B); err != nil {
			return err
		}
		if err := a.disc.discretize(Ac, Bc, h, Ai, Bi); err != nil {
			return fmt.Errorf("step %d substep %d: %w", step, i, err)
		}
		tmpA.Mul(Ai, acc)
		acc.Copy(&tmpA)
		tmpB.Mul(Ai, bcc)
		tmpB.Add(&tmpB, Bi)
		bcc.Copy(&tmpB)
		tmpA.Reset()
		tmpB.Reset()
	}

	A.Copy(acc)
	B.Copy(bcc)
	return nil
}

func (a *Approximation) checkDims(Ac, Bc *mat.Dense, A, B *mat.Dense) error {
	n, nc := Ac.Dims()
	bn, m := Bc.Dims()
	if n != nc || bn != n {
		return fmt.Errorf("%w: jacobians %dx%d and %dx%d", dynamo.ErrDimensionMismatch, n, nc, bn, m)
	}
	ar, ac := A.Dims()
	br, bc := B.Dims()
	if ar != n || ac != n || br != n || bc != m {
		return fmt.Errorf("%w: output A %dx%d B %dx%d for system %dx%d", dynamo.ErrDimensionMismatch, ar, ac, br, bc, n, m)
	}
	return nil
}
