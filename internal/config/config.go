package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajopt/internal/sensitivity"
)

const (
	DefaultDt            = 0.01
	DefaultHorizon       = 3.0
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-6
	DefaultTheta         = 0.5
)

type Config struct {
	Model         string          `yaml:"model"`
	Integrator    string          `yaml:"integrator"`
	Scheme        string          `yaml:"scheme"`
	Dt            float64         `yaml:"dt"`
	Horizon       float64         `yaml:"horizon"`
	Substeps      int             `yaml:"substeps"`
	MaxIterations int             `yaml:"max_iterations"`
	Tolerance     float64         `yaml:"tolerance"`
	InitState     InitStateConfig `yaml:"init_state"`
	Goal          []float64       `yaml:"goal"`
	Weights       WeightConfig    `yaml:"weights"`
}

type InitStateConfig struct {
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
	Pos   float64 `yaml:"pos"`
	Vel   float64 `yaml:"vel"`
}

// WeightConfig holds the diagonal cost weights. Empty slices fall back to
// identity weights sized to the model.
type WeightConfig struct {
	State    []float64 `yaml:"q"`
	Control  []float64 `yaml:"r"`
	Terminal []float64 `yaml:"qf"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:         "pendulum",
		Integrator:    "rk4",
		Scheme:        "forward_euler",
		Dt:            DefaultDt,
		Horizon:       DefaultHorizon,
		Substeps:      1,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		InitState:     InitStateConfig{Theta: DefaultTheta},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("config: horizon must be positive, got %g", c.Horizon)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("config: tolerance must be positive, got %g", c.Tolerance)
	}
	if _, err := sensitivity.ParseScheme(c.Scheme); err != nil {
		return err
	}
	return nil
}

func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case "cartpole":
		return []float64{c.InitState.Pos, c.InitState.Vel, c.InitState.Theta, c.InitState.Omega}
	case "spring_mass", "double_integrator":
		return []float64{c.InitState.Pos, c.InitState.Vel}
	default:
		return []float64{c.InitState.Theta, c.InitState.Omega}
	}
}

// GetGoal returns the configured goal state, or the origin when unset.
func (c *Config) GetGoal(stateDim int) []float64 {
	if len(c.Goal) == stateDim {
		return c.Goal
	}
	return make([]float64, stateDim)
}

// GetWeights returns diagonal state, control and terminal weights, filling in
// identity defaults where the config is silent.
func (c *Config) GetWeights(stateDim, controlDim int) (q, r, qf []float64) {
	q = c.Weights.State
	if len(q) != stateDim {
		q = ones(stateDim)
	}
	r = c.Weights.Control
	if len(r) != controlDim {
		r = ones(controlDim)
	}
	qf = c.Weights.Terminal
	if len(qf) != stateDim {
		qf = make([]float64, stateDim)
		for i := range qf {
			qf[i] = 10
		}
	}
	return q, r, qf
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
