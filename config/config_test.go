// ABOUTME: Tests for run configuration loading
// ABOUTME: Validates defaults, overrides, and rejection of out-of-range settings

package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.GPUCapacity != 1.0 {
		t.Errorf("Expected default GPUCapacity 1.0, got %g", cfg.GPUCapacity)
	}
	if cfg.MaxInferenceFraction != 0.25 {
		t.Errorf("Expected default MaxInferenceFraction 0.25, got %g", cfg.MaxInferenceFraction)
	}
	if cfg.Policy != PolicyThief {
		t.Errorf("Expected default policy thief, got %s", cfg.Policy)
	}
	if cfg.CurveShape != CurveSqrt {
		t.Errorf("Expected default curve shape sqrt, got %s", cfg.CurveShape)
	}
	if cfg.NumPeriods != 10 {
		t.Errorf("Expected default NumPeriods 10, got %d", cfg.NumPeriods)
	}
	if len(cfg.Cameras) == 0 {
		t.Error("Expected default camera list to be non-empty")
	}
	if len(cfg.CandidateConfigs) == 0 {
		t.Error("Expected default candidate config list to be non-empty")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("GPU_CAPACITY", "4.0")
	os.Setenv("MAX_INFERENCE_FRACTION", "0.5")
	os.Setenv("POLICY", "fair")
	os.Setenv("CAMERAS", "seattle, portland ,eugene")
	os.Setenv("QUANTUM_FRACTION", "0.05")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.GPUCapacity != 4.0 {
		t.Errorf("Expected GPUCapacity 4.0, got %g", cfg.GPUCapacity)
	}
	if cfg.MaxInferenceFraction != 0.5 {
		t.Errorf("Expected MaxInferenceFraction 0.5, got %g", cfg.MaxInferenceFraction)
	}
	if cfg.Policy != PolicyFair {
		t.Errorf("Expected policy fair, got %s", cfg.Policy)
	}
	if cfg.QuantumFraction != 0.05 {
		t.Errorf("Expected QuantumFraction 0.05, got %g", cfg.QuantumFraction)
	}

	// List parsing trims whitespace and drops empties
	if len(cfg.Cameras) != 3 {
		t.Fatalf("Expected 3 cameras, got %d", len(cfg.Cameras))
	}
	if cfg.Cameras[1] != "portland" {
		t.Errorf("Expected second camera portland, got %s", cfg.Cameras[1])
	}
}

func TestLoadConfig_RejectsInvalidPolicy(t *testing.T) {
	os.Clearenv()
	os.Setenv("POLICY", "round-robin")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown policy, got nil")
	}
}

func TestLoadConfig_RejectsInvalidCurveShape(t *testing.T) {
	os.Clearenv()
	os.Setenv("CURVE_SHAPE", "cubic")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown curve shape, got nil")
	}
}

func TestLoadConfig_RejectsOutOfRangeFractions(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"negative capacity", "GPU_CAPACITY", "-1"},
		{"inference fraction above 1", "MAX_INFERENCE_FRACTION", "1.5"},
		{"zero trial fraction", "TRIAL_FRACTION", "0"},
		{"trial fraction above capacity", "TRIAL_FRACTION", "2.0"},
		{"zero quantum", "QUANTUM_FRACTION", "0"},
		{"inference weight above 1", "FAIR_INFERENCE_WEIGHT", "1.1"},
		{"zero epsilon", "EPSILON", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Errorf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
		})
	}
}

func TestLoadConfig_RejectsInvertedTaskBounds(t *testing.T) {
	os.Clearenv()
	os.Setenv("START_TASK", "5")
	os.Setenv("TERMINATION_TASK", "2")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for TERMINATION_TASK before START_TASK, got nil")
	}
}
