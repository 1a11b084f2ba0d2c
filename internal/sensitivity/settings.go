package sensitivity

import "fmt"

// Scheme selects how a continuous-time linearization is converted into a
// discrete-time one-step transition.
type Scheme int

const (
	ForwardEuler Scheme = iota
	BackwardEuler
	SymplecticEuler
	Tustin
	MatrixExponential
)

func (s Scheme) String() string {
	switch s {
	case ForwardEuler:
		return "forward_euler"
	case BackwardEuler:
		return "backward_euler"
	case SymplecticEuler:
		return "symplectic_euler"
	case Tustin:
		return "tustin"
	case MatrixExponential:
		return "matrix_exponential"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// ParseScheme maps a config/CLI name to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "forward_euler", "euler":
		return ForwardEuler, nil
	case "backward_euler":
		return BackwardEuler, nil
	case "symplectic_euler", "symplectic":
		return SymplecticEuler, nil
	case "tustin", "bilinear":
		return Tustin, nil
	case "matrix_exponential", "exp":
		return MatrixExponential, nil
	default:
		return 0, fmt.Errorf("sensitivity: unknown scheme %q", name)
	}
}

// Settings configures the discretization of one Approximation. Immutable per
// iteration; changed only through the explicit setters on Approximation.
type Settings struct {
	Dt     float64
	Scheme Scheme
}

func (s Settings) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt = %g", ErrInvalidTimestep, s.Dt)
	}
	if s.Scheme < ForwardEuler || s.Scheme > MatrixExponential {
		return fmt.Errorf("sensitivity: unknown scheme %d", int(s.Scheme))
	}
	return nil
}
