// Package physics provides dynamical system models for trajectory
// optimization.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution, and supplies
// continuous-time Jacobians through [dynamo.Linearizer]:
//
//   - [Pendulum]: damped torque-actuated pendulum (analytic Jacobians)
//   - [CartPole]: cart-pole balancing (finite-difference Jacobians)
//   - [SpringMass]: damped spring-mass with force input (analytic Jacobians)
//   - [Linear]: generic LTI system dx/dt = A x + B u (exact Jacobians)
//
// Some models also implement [dynamo.Configurable] for runtime parameter
// adjustment and [dynamo.Hamiltonian] for energy calculation.
package physics
