package physics

import (
	"fmt"

	"github.com/san-kum/trajopt/internal/dynamo"
)

// Model bundles a system with its Jacobian provider for the CLI.
type Model struct {
	System     dynamo.System
	Linearizer dynamo.Linearizer
}

// ByName constructs a named model. Every returned linearizer is the model
// itself except where a model only offers finite differences.
func ByName(name string) (Model, error) {
	switch name {
	case "pendulum":
		p := NewPendulum()
		return Model{System: p, Linearizer: p}, nil
	case "cartpole":
		c := NewCartPole()
		return Model{System: c, Linearizer: c}, nil
	case "spring_mass":
		s := NewSpringMass()
		return Model{System: s, Linearizer: s}, nil
	case "double_integrator":
		l := NewDoubleIntegrator()
		return Model{System: l, Linearizer: l}, nil
	default:
		return Model{}, fmt.Errorf("physics: unknown model %q", name)
	}
}

// Names lists the models ByName accepts.
func Names() []string {
	return []string{"pendulum", "cartpole", "spring_mass", "double_integrator"}
}
