// Package ilqr is the reference numerical backend for the iteration
// control: an iterative linear-quadratic regulator. Each pass runs a
// backward Riccati recursion over the discrete linearization supplied by the
// solver, then a backtracking line search on the resulting control update.
//
// The backend owns the reference trajectory, the policy, and the
// convergence tolerance; it never linearizes anything itself.
package ilqr
