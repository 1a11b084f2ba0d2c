// Package solver drives a nonlinear optimal-control problem to convergence
// by alternating a linearization refresh (prepare) with a numerical pass of
// an injected backend (finish). The backend owns the value recursion and the
// convergence tolerance; this package owns the iteration state machine, the
// per-step linearization via the sensitivity layer, and mid-solve problem
// mutation.
package solver
