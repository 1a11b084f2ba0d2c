package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "pendulum" {
		t.Errorf("expected model pendulum, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Horizon <= 0 {
		t.Error("horizon should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero dt should be rejected")
	}

	cfg = DefaultConfig()
	cfg.Scheme = "trapezoid"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown scheme should be rejected")
	}

	cfg = DefaultConfig()
	cfg.MaxIterations = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero iteration budget should be rejected")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "swingdown")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Theta != 0.6 {
		t.Errorf("expected theta 0.6, got %f", cfg.InitState.Theta)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset must validate: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("pendulum", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "swingdown")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s: %v", model, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pendulum")
	if len(presets) == 0 {
		t.Error("expected presets for pendulum")
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestGetInitState(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"pendulum", 2},
		{"cartpole", 4},
		{"spring_mass", 2},
		{"double_integrator", 2},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Model = tt.model
		state := cfg.GetInitState()
		if len(state) != tt.expected {
			t.Errorf("model %s: expected %d states, got %d", tt.model, tt.expected, len(state))
		}
	}
}

func TestGetWeightsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	q, r, qf := cfg.GetWeights(2, 1)
	if len(q) != 2 || len(r) != 1 || len(qf) != 2 {
		t.Fatalf("weight lengths = %d/%d/%d", len(q), len(r), len(qf))
	}
	if q[0] != 1 || r[0] != 1 {
		t.Error("unset weights should default to identity")
	}
	if qf[0] != 10 {
		t.Errorf("terminal default = %g, want 10", qf[0])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	cfg := GetPreset("cartpole", "recover")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "cartpole" || got.Scheme != "tustin" || got.Substeps != 2 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Weights.State[2] != 10 {
		t.Errorf("weights not preserved: %v", got.Weights.State)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "definitely-not-here.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
