package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"swingdown": {
			Model: "pendulum", Integrator: "rk4", Scheme: "tustin",
			Dt: 0.02, Horizon: 3.0, Substeps: 1, MaxIterations: 80, Tolerance: 1e-7,
			InitState: InitStateConfig{Theta: 0.6, Omega: 0.0},
			Weights:   WeightConfig{State: []float64{10, 1}, Control: []float64{0.1}, Terminal: []float64{100, 10}},
		},
		"swingup": {
			Model: "pendulum", Integrator: "rk4", Scheme: "matrix_exponential",
			Dt: 0.01, Horizon: 4.0, Substeps: 2, MaxIterations: 200, Tolerance: 1e-6,
			InitState: InitStateConfig{Theta: 3.1, Omega: 0.0},
			Weights:   WeightConfig{State: []float64{20, 2}, Control: []float64{0.05}, Terminal: []float64{500, 50}},
		},
	},
	"cartpole": {
		"balance": {
			Model: "cartpole", Integrator: "rk4", Scheme: "forward_euler",
			Dt: 0.01, Horizon: 2.0, Substeps: 1, MaxIterations: 100, Tolerance: 1e-6,
			InitState: InitStateConfig{Pos: 0.0, Vel: 0.0, Theta: 0.15, Omega: 0.0},
			Weights:   WeightConfig{State: []float64{1, 0.1, 10, 1}, Control: []float64{0.01}, Terminal: []float64{10, 1, 100, 10}},
		},
		"recover": {
			Model: "cartpole", Integrator: "rk4", Scheme: "tustin",
			Dt: 0.01, Horizon: 3.0, Substeps: 2, MaxIterations: 150, Tolerance: 1e-6,
			InitState: InitStateConfig{Pos: 0.0, Vel: 0.0, Theta: 0.5, Omega: 0.0},
			Weights:   WeightConfig{State: []float64{1, 0.1, 10, 1}, Control: []float64{0.01}, Terminal: []float64{10, 1, 200, 20}},
		},
	},
	"spring_mass": {
		"settle": {
			Model: "spring_mass", Integrator: "rk4", Scheme: "symplectic_euler",
			Dt: 0.01, Horizon: 5.0, Substeps: 1, MaxIterations: 60, Tolerance: 1e-7,
			InitState: InitStateConfig{Pos: 2.0, Vel: 0.0},
			Weights:   WeightConfig{State: []float64{1, 0.5}, Control: []float64{0.1}, Terminal: []float64{50, 25}},
		},
	},
	"double_integrator": {
		"reach": {
			Model: "double_integrator", Integrator: "rk4", Scheme: "matrix_exponential",
			Dt: 0.02, Horizon: 2.0, Substeps: 1, MaxIterations: 50, Tolerance: 1e-8,
			InitState: InitStateConfig{Pos: 0.0, Vel: 0.0},
			Goal:      []float64{1, 0},
			Weights:   WeightConfig{State: []float64{1, 0.1}, Control: []float64{0.01}, Terminal: []float64{100, 10}},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
