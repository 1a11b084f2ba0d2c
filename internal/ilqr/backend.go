package ilqr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/solver"
)

const (
	regInit  = 1e-6
	regMin   = 1e-9
	regMax   = 1e8
	alphaMin = 1.0 / 64.0
)

// Backend implements solver.Backend with an iLQR pass.
type Backend struct {
	stepper dynamo.Stepper

	dyn     dynamo.System
	lin     dynamo.Linearizer
	costFn  cost.Function
	x0      dynamo.State
	horizon float64

	settings solver.Settings
	steps    int

	policy *dynamo.Policy
	traj   *dynamo.Trajectory
	xSub   [][]dynamo.State
	uSub   [][]dynamo.Control
	a, b   []*mat.Dense

	curCost    float64
	stale      bool
	configured bool
	reg        float64
	history    []float64
}

// New builds a backend that rolls trajectories out with the given stepper.
func New(stepper dynamo.Stepper) *Backend {
	return &Backend{stepper: stepper, reg: regInit}
}

func (bk *Backend) Configure(s solver.Settings, p *solver.Problem) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	steps := int(math.Round(p.Horizon / s.Dt))
	if steps < 1 {
		return fmt.Errorf("ilqr: horizon %g shorter than one step of %g", p.Horizon, s.Dt)
	}

	bk.dyn = p.Dynamics
	bk.lin = p.Linearizer
	bk.costFn = p.Cost
	bk.x0 = p.X0.Clone()
	bk.horizon = p.Horizon
	bk.settings = s
	bk.steps = steps
	bk.reg = regInit
	bk.history = nil
	bk.a, bk.b = nil, nil

	if bk.policy == nil || bk.policy.Steps() != steps ||
		len(bk.policy.Feedforward[0]) != p.Dynamics.ControlDim() {
		bk.policy = dynamo.NewOpenLoop(steps, p.Dynamics.StateDim(), p.Dynamics.ControlDim(), s.Dt)
	}
	bk.stale = true
	bk.configured = true
	return nil
}

// SetInitialGuess installs a full policy guess: feedforward, feedback, and
// reference are all honored.
func (bk *Backend) SetInitialGuess(p *dynamo.Policy) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	if p == nil {
		return fmt.Errorf("%w: nil policy", ErrGuessShape)
	}
	if p.Steps() != bk.steps || len(p.Feedforward[0]) != bk.dyn.ControlDim() {
		return fmt.Errorf("%w: %d steps of dim %d, want %d of %d",
			ErrGuessShape, p.Steps(), len(p.Feedforward[0]), bk.steps, bk.dyn.ControlDim())
	}
	bk.policy = p.Clone()
	bk.stale = true
	return nil
}

// rollout simulates the given affine policy from x0, recording integrator
// substeps and accumulating cost.
func (bk *Backend) rollout(pol *dynamo.Policy) (*dynamo.Trajectory, [][]dynamo.State, [][]dynamo.Control, float64, error) {
	dt := bk.settings.Dt
	tr := dynamo.NewTrajectory(bk.steps, bk.dyn.StateDim(), bk.dyn.ControlDim(), dt)
	xSub := make([][]dynamo.State, bk.steps)
	uSub := make([][]dynamo.Control, bk.steps)

	x := bk.x0.Clone()
	j := 0.0
	tr.States[0] = x.Clone()

	for k := 0; k < bk.steps; k++ {
		t := float64(k) * dt
		u := pol.Control(x, k)
		j += dt * bk.costFn.Stage(x, u, t)

		next, xs, us := bk.stepper.SubStep(bk.dyn, x, u, t, dt, bk.settings.Substeps)
		if !next.IsValid() {
			return nil, nil, nil, 0, fmt.Errorf("%w at step %d", ErrDiverged, k)
		}

		tr.Controls[k] = u
		tr.States[k+1] = next.Clone()
		tr.Times[k+1] = t + dt
		xSub[k] = xs
		uSub[k] = us
		x = next
	}

	j += bk.costFn.Terminal(x)
	return tr, xSub, uSub, j, nil
}

func (bk *Backend) ReferenceTrajectory() (*dynamo.Trajectory, error) {
	if !bk.configured {
		return nil, ErrNotConfigured
	}
	if bk.stale {
		tr, xs, us, j, err := bk.rollout(bk.policy)
		if err != nil {
			return nil, err
		}
		bk.traj = tr
		bk.xSub = xs
		bk.uSub = us
		bk.curCost = j
		bk.stale = false
		bk.a, bk.b = nil, nil
	}
	return bk.traj, nil
}

func (bk *Backend) SubstepReference() ([][]dynamo.State, [][]dynamo.Control) {
	return bk.xSub, bk.uSub
}

func (bk *Backend) SetLinearization(A, B []*mat.Dense) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	if len(A) != bk.steps || len(B) != bk.steps {
		return fmt.Errorf("%w: got %d/%d steps, want %d", dynamo.ErrDimensionMismatch, len(A), len(B), bk.steps)
	}
	bk.a, bk.b = A, B
	return nil
}

// Iterate runs one backward Riccati pass over the installed linearization
// and a backtracking line search on the resulting update. done is true when
// the cost improvement falls below the configured tolerance or no step
// improves the trajectory.
func (bk *Backend) Iterate() (bool, error) {
	if !bk.configured {
		return false, ErrNotConfigured
	}
	if bk.a == nil || bk.b == nil {
		return false, ErrNoLinearization
	}
	if bk.traj == nil {
		return false, ErrNoLinearization
	}

	kff, gains, err := bk.backwardPass()
	if err != nil {
		return false, err
	}

	newTraj, xs, us, newCost, ok := bk.lineSearch(kff, gains)
	if !ok {
		// no step length improves the trajectory; raise regularization and
		// report converged once the schedule is exhausted
		bk.reg *= 10
		if bk.reg > regMax {
			return true, nil
		}
		return false, nil
	}

	improvement := bk.curCost - newCost

	bk.policy = &dynamo.Policy{
		Feedforward: newTraj.Controls,
		Gains:       gains,
		Reference:   newTraj.States[:len(newTraj.States)-1],
		Dt:          bk.settings.Dt,
	}
	bk.traj = newTraj
	bk.xSub = xs
	bk.uSub = us
	bk.curCost = newCost
	bk.history = append(bk.history, newCost)
	bk.a, bk.b = nil, nil
	if bk.reg > regMin {
		bk.reg = math.Max(regMin, bk.reg/10)
	}

	return improvement < bk.settings.Tolerance, nil
}

// backwardPass computes feedforward updates and feedback gains from the
// value-function recursion, escalating regularization until every control
// Hessian factorizes.
func (bk *Backend) backwardPass() ([]*mat.VecDense, []*mat.Dense, error) {
	n := bk.dyn.StateDim()
	m := bk.dyn.ControlDim()
	dt := bk.settings.Dt
	N := bk.steps

	for reg := bk.reg; reg <= regMax; reg *= 10 {
		vx, vxx := bk.costFn.QuadratizeTerminal(bk.traj.States[N])

		kff := make([]*mat.VecDense, N)
		gains := make([]*mat.Dense, N)
		failed := false

		for k := N - 1; k >= 0; k-- {
			lx, lu, lxx, luu, lux := bk.costFn.Quadratize(bk.traj.States[k], bk.traj.Controls[k], bk.traj.Times[k])
			A := bk.a[k]
			B := bk.b[k]

			// Qx = dt*lx + A' vx ; Qu = dt*lu + B' vx
			qx := mat.NewVecDense(n, nil)
			qx.MulVec(A.T(), vx)
			qx.AddScaledVec(qx, dt, lx)

			qu := mat.NewVecDense(m, nil)
			qu.MulVec(B.T(), vx)
			qu.AddScaledVec(qu, dt, lu)

			// Qxx = dt*lxx + A' vxx A
			var vxxA, qxx mat.Dense
			vxxA.Mul(vxx, A)
			qxx.Mul(A.T(), &vxxA)
			var sl mat.Dense
			sl.Scale(dt, lxx)
			qxx.Add(&qxx, &sl)

			// Quu = dt*luu + B' vxx B + reg*I
			var vxxB, quu mat.Dense
			vxxB.Mul(vxx, B)
			quu.Mul(B.T(), &vxxB)
			sl.Reset()
			sl.Scale(dt, luu)
			quu.Add(&quu, &sl)
			for i := 0; i < m; i++ {
				quu.Set(i, i, quu.At(i, i)+reg)
			}

			// Qux = dt*lux + B' vxx A
			var qux mat.Dense
			qux.Mul(B.T(), &vxxA)
			sl.Reset()
			sl.Scale(dt, lux)
			qux.Add(&qux, &sl)

			sym := mat.NewSymDense(m, nil)
			for i := 0; i < m; i++ {
				for j := i; j < m; j++ {
					sym.SetSym(i, j, 0.5*(quu.At(i, j)+quu.At(j, i)))
				}
			}
			var chol mat.Cholesky
			if !chol.Factorize(sym) {
				failed = true
				break
			}

			kf := mat.NewVecDense(m, nil)
			if err := chol.SolveVecTo(kf, qu); err != nil {
				failed = true
				break
			}
			kf.ScaleVec(-1, kf)

			gain := mat.NewDense(m, n, nil)
			if err := chol.SolveTo(gain, &qux); err != nil {
				failed = true
				break
			}
			gain.Scale(-1, gain)

			kff[k] = kf
			gains[k] = gain

			// Vx = Qx + K'(Quu kf + Qu) + Qux' kf
			var quuKf, inner mat.VecDense
			quuKf.MulVec(&quu, kf)
			inner.AddVec(&quuKf, qu)
			var kTerm, quxTerm mat.VecDense
			kTerm.MulVec(gain.T(), &inner)
			quxTerm.MulVec(qux.T(), kf)
			nextVx := mat.NewVecDense(n, nil)
			nextVx.AddVec(qx, &kTerm)
			nextVx.AddVec(nextVx, &quxTerm)

			// Vxx = Qxx + K'Quu K + K'Qux + Qux'K, symmetrized
			var quuK, kQuuK, kQux mat.Dense
			quuK.Mul(&quu, gain)
			kQuuK.Mul(gain.T(), &quuK)
			kQux.Mul(gain.T(), &qux)
			nextVxx := mat.NewDense(n, n, nil)
			nextVxx.Add(&qxx, &kQuuK)
			nextVxx.Add(nextVxx, &kQux)
			var t mat.Dense
			t.CloneFrom(kQux.T())
			nextVxx.Add(nextVxx, &t)
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					avg := 0.5 * (nextVxx.At(i, j) + nextVxx.At(j, i))
					nextVxx.Set(i, j, avg)
					nextVxx.Set(j, i, avg)
				}
			}

			vx = nextVx
			vxx = nextVxx
		}

		if !failed {
			bk.reg = reg
			return kff, gains, nil
		}
	}

	return nil, nil, ErrNonPositiveDefinite
}

// lineSearch backtracks on the feedforward update until a rollout improves
// on the current cost.
func (bk *Backend) lineSearch(kff []*mat.VecDense, gains []*mat.Dense) (*dynamo.Trajectory, [][]dynamo.State, [][]dynamo.Control, float64, bool) {
	for alpha := 1.0; alpha >= alphaMin; alpha /= 2 {
		cand := &dynamo.Policy{
			Feedforward: make([]dynamo.Control, bk.steps),
			Gains:       gains,
			Reference:   bk.traj.States[:bk.steps],
			Dt:          bk.settings.Dt,
		}
		for k := 0; k < bk.steps; k++ {
			u := bk.traj.Controls[k].Clone()
			for i := range u {
				u[i] += alpha * kff[k].AtVec(i)
			}
			cand.Feedforward[k] = u
		}

		tr, xs, us, j, err := bk.rollout(cand)
		if err != nil {
			continue
		}
		if j < bk.curCost {
			return tr, xs, us, j, true
		}
	}
	return nil, nil, nil, 0, false
}

func (bk *Backend) ChangeTimeHorizon(tf float64) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	if tf <= 0 {
		return fmt.Errorf("ilqr: horizon must be positive, got %g", tf)
	}
	steps := int(math.Round(tf / bk.settings.Dt))
	if steps < 1 {
		return fmt.Errorf("ilqr: horizon %g shorter than one step of %g", tf, bk.settings.Dt)
	}
	bk.horizon = tf
	bk.resizePolicy(steps)
	bk.steps = steps
	bk.stale = true
	bk.a, bk.b = nil, nil
	return nil
}

// resizePolicy truncates or zero-extends the current policy to a new
// horizon, keeping the optimized prefix.
func (bk *Backend) resizePolicy(steps int) {
	old := bk.policy
	p := dynamo.NewOpenLoop(steps, bk.dyn.StateDim(), bk.dyn.ControlDim(), bk.settings.Dt)
	if old != nil {
		if old.Gains != nil {
			p.Gains = make([]*mat.Dense, steps)
		}
		for k := 0; k < steps && k < old.Steps(); k++ {
			p.Feedforward[k] = old.Feedforward[k].Clone()
			p.Reference[k] = old.Reference[k].Clone()
			if old.Gains != nil && k < len(old.Gains) && old.Gains[k] != nil {
				p.Gains[k] = mat.DenseCopyOf(old.Gains[k])
			}
		}
	}
	bk.policy = p
}

func (bk *Backend) ChangeInitialState(x0 dynamo.State) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	if len(x0) != bk.dyn.StateDim() {
		return fmt.Errorf("%w: x0 has %d entries for %d states", dynamo.ErrDimensionMismatch, len(x0), bk.dyn.StateDim())
	}
	bk.x0 = x0.Clone()
	bk.stale = true
	return nil
}

func (bk *Backend) ChangeCostFunction(c cost.Function) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	bk.costFn = c
	bk.stale = true
	return nil
}

func (bk *Backend) ChangeNonlinearSystem(dyn dynamo.System) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	bk.dyn = dyn
	bk.stale = true
	return nil
}

func (bk *Backend) ChangeLinearSystem(lin dynamo.Linearizer) error {
	if !bk.configured {
		return ErrNotConfigured
	}
	bk.lin = lin
	return nil
}

func (bk *Backend) Solution() *dynamo.Policy {
	return bk.policy
}

func (bk *Backend) StateTrajectory() []dynamo.State {
	if bk.traj == nil {
		return nil
	}
	return bk.traj.States
}

func (bk *Backend) ControlTrajectory() []dynamo.Control {
	if bk.traj == nil {
		return nil
	}
	return bk.traj.Controls
}

func (bk *Backend) TimeArray() []float64 {
	if bk.traj == nil {
		return nil
	}
	return bk.traj.Times
}

func (bk *Backend) Cost() float64 {
	return bk.curCost
}

func (bk *Backend) TimeHorizon() float64 {
	return bk.horizon
}

// CostHistory returns the accepted cost after each improving pass.
func (bk *Backend) CostHistory() []float64 {
	return bk.history
}
