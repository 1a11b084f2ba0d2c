// Package dynamo provides the core primitives for nonlinear trajectory
// optimization.
//
// The package defines the fundamental interfaces and types shared by the
// linearization and solver layers:
//
//   - [State], [Control]: vectors describing the system at one instant
//   - [System]: interface for nonlinear dynamics (dX/dt = f(X, u, t))
//   - [Linearizer]: supplier of continuous-time Jacobians along a trajectory
//   - [DiscreteLinearizer]: per-step discrete-time (A, B) supplier
//   - [Stepper]: numerical integrator with substep recording
//   - [Trajectory]: index-aligned state/control/time sequences
//   - [Policy]: feedforward plus feedback control law
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent mutation. One
// solver instance owns one trajectory and one policy at a time.
package dynamo
